// Package worker runs the single stream consumer loop: fetch a message,
// handle it, commit its offset.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/topcoder-platform/playoff-processor/internal/domain/intake"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
	"github.com/topcoder-platform/playoff-processor/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultRetryPause = time.Second
	commitTimeout     = 10 * time.Second
)

// ErrSourceClosed is returned by a Source that will deliver no more messages.
var ErrSourceClosed = errors.New("message source closed")

// Message is what workers read off the stream.
type Message = intake.Message

// Source delivers stream messages and records their consumption.
type Source interface {
	// Fetch blocks until the next message is available.
	Fetch(ctx context.Context) (Message, error)
	// Commit marks msg as consumed.
	Commit(ctx context.Context, msg Message) error
	Close() error
}

// Handler processes one message. It must not fail: whatever the outcome,
// the worker commits the message afterwards.
type Handler interface {
	Handle(ctx context.Context, msg Message) intake.Outcome
}

// Worker consumes one message at a time, in delivery order.
type Worker struct {
	source     Source
	handler    Handler
	name       string
	retryPause time.Duration

	healthy atomic.Bool

	// Shutdown control
	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(source Source, handler Handler, opts ...Option) *Worker {
	w := &Worker{
		source:     source,
		handler:    handler,
		name:       "worker",
		retryPause: defaultRetryPause,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Healthy reports whether the consumer is running and its last fetch did
// not fail. An idle consumer blocked on an empty stream is healthy.
func (w *Worker) Healthy() bool {
	return w.healthy.Load()
}

func (w *Worker) setHealthy(up bool) {
	w.healthy.Store(up)
	metrics.UpdateConsumerUp(up)
}

// Run consumes messages until ctx is canceled, Shutdown is called or the
// source is closed. A message already fetched is always handled and
// committed before Run returns: canceling ctx stops fetching but not the
// handler, whose outbound calls carry their own timeouts.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.done)
	defer w.setHealthy(false)

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.shutdown:
			cancel()
		case <-fetchCtx.Done():
		}
	}()

	w.logger.Info(ctx, "worker started")
	w.setHealthy(true)
	for {
		msg, err := w.fetch(fetchCtx)
		if err != nil {
			if fetchCtx.Err() != nil || errors.Is(err, ErrSourceClosed) {
				w.logger.Info(ctx, "worker stopped")
				return nil
			}
			w.setHealthy(false)
			metrics.RecordFetchError()
			metrics.RecordErrorByComponent("worker", "fetch_error")
			w.logger.Error(ctx, "fetch failed", logger.Error(err))

			select {
			case <-fetchCtx.Done():
				w.logger.Info(ctx, "worker stopped")
				return nil
			case <-time.After(w.retryPause):
			}
			continue
		}
		w.setHealthy(true)

		out := w.handler.Handle(context.WithoutCancel(ctx), msg)
		w.commit(ctx, msg, out)
	}
}

// fetch reads the next message. After a failed fetch the worker turns
// healthy again once a new fetch has been pending for retryPause without
// failing, so a recovered consumer on a quiet stream is not reported down.
func (w *Worker) fetch(ctx context.Context) (Message, error) {
	if w.healthy.Load() {
		return w.source.Fetch(ctx)
	}

	var mu sync.Mutex
	returned := false
	t := time.AfterFunc(w.retryPause, func() {
		mu.Lock()
		defer mu.Unlock()
		if !returned {
			w.setHealthy(true)
		}
	})
	msg, err := w.source.Fetch(ctx)

	mu.Lock()
	returned = true
	t.Stop()
	mu.Unlock()
	return msg, err
}

// commit advances the offset whatever the outcome was.
func (w *Worker) commit(ctx context.Context, msg Message, out intake.Outcome) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()

	if err := w.source.Commit(ctx, msg); err != nil {
		metrics.RecordCommitError()
		metrics.RecordErrorByComponent("worker", "commit_error")
		w.logger.Error(ctx, "commit failed",
			logger.Int("partition", msg.Partition),
			logger.Int64("offset", msg.Offset),
			logger.String("outcome", out.Status.String()),
			logger.Error(err),
		)
		return
	}
	metrics.RecordOffsetCommit()
	w.logger.Debug(ctx, "committed offset",
		logger.Int("partition", msg.Partition),
		logger.Int64("offset", msg.Offset),
		logger.String("outcome", out.Status.String()),
	)
}

// Shutdown stops fetching and waits for the message in flight.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
