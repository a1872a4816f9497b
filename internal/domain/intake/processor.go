// Package intake turns stream messages into provisioning work: it parses and
// filters completion events and dispatches matching ones.
package intake

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
	"github.com/topcoder-platform/playoff-processor/pkg/metrics"
	"github.com/topcoder-platform/playoff-processor/pkg/tracing"
)

// Message is one raw stream record with its coordinates.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Value     []byte
}

// WinnerResolver finds the winning submission of a challenge.
type WinnerResolver interface {
	Resolve(ctx context.Context, challengeID int64) (model.Submission, error)
}

// Provisioner ensures a member is a playoff player and records the win.
type Provisioner interface {
	EnsurePlayerAndRecordWin(ctx context.Context, memberID string) error
}

// Processor handles completion messages one at a time.
type Processor struct {
	filter      Filter
	resolver    WinnerResolver
	provisioner Provisioner
	logger      logger.Logger
}

// Option applies a configuration option to the Processor.
type Option func(*Processor)

// WithLogger sets a custom logger for the processor.
func WithLogger(l logger.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcessor creates a Processor.
func NewProcessor(filter Filter, resolver WinnerResolver, provisioner Provisioner, opts ...Option) *Processor {
	p := &Processor{
		filter:      filter,
		resolver:    resolver,
		provisioner: provisioner,
		logger:      logger.Get().Named("intake"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle parses, filters and dispatches msg. It never fails: every error is
// logged and reported in the Outcome, and the caller commits the offset
// whatever the outcome is.
func (p *Processor) Handle(ctx context.Context, msg Message) Outcome {
	start := time.Now()
	metrics.RecordEventReceived()
	defer func() {
		metrics.RecordProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	log := p.logger.With(
		logger.String("attempt", uuid.NewString()),
		logger.String("topic", msg.Topic),
		logger.Int("partition", msg.Partition),
		logger.Int64("offset", msg.Offset),
	)
	log.Info(ctx, "handle stream message", logger.String("message", string(msg.Value)))

	ev, err := Parse(msg.Value)
	if err != nil {
		log.Error(ctx, "invalid message JSON", logger.Error(err))
		metrics.RecordEventSkipped("parse_error")
		return Outcome{Status: StatusSkipped, Err: err}
	}
	challengeID := ev.Payload.ProjectID

	if err := Matches(ev, msg.Topic, p.filter); err != nil {
		log.Error(ctx, "message ignored", logger.Int64("challengeId", challengeID), logger.Error(err))
		metrics.RecordEventSkipped("filter_mismatch")
		return Outcome{Status: StatusSkipped, ChallengeID: challengeID, Err: err}
	}

	out := p.dispatch(ctx, log, challengeID)
	metrics.RecordEventProcessed(out.Status.String())
	if out.Err != nil {
		log.Error(ctx, "failed to process challenge completion",
			logger.Int64("challengeId", challengeID),
			logger.String("memberId", out.MemberID),
			logger.Error(out.Err),
		)
	}
	return out
}

func (p *Processor) dispatch(ctx context.Context, log logger.Logger, challengeID int64) (out Outcome) {
	ctx, span := tracing.Start(ctx, "intake.dispatch", attribute.Int64("challenge.id", challengeID))
	defer func() { tracing.End(span, out.Err) }()

	out = Outcome{Status: StatusFailed, ChallengeID: challengeID}
	log.Info(ctx, "challenge completed", logger.Int64("challengeId", challengeID))

	sub, err := p.resolver.Resolve(ctx, challengeID)
	if err != nil {
		metrics.RecordErrorByComponent("winner", errorType(err))
		out.Err = err
		return out
	}
	out.MemberID = sub.MemberID
	log.Info(ctx, "resolved challenge winner",
		logger.Int64("challengeId", challengeID),
		logger.String("memberId", sub.MemberID),
		logger.String("submissionId", sub.ID),
	)

	if err := p.provisioner.EnsurePlayerAndRecordWin(ctx, sub.MemberID); err != nil {
		metrics.RecordErrorByComponent("provision", errorType(err))
		out.Err = err
		return out
	}

	log.Info(ctx, "recorded F2F win",
		logger.Int64("challengeId", challengeID),
		logger.String("memberId", sub.MemberID),
	)
	out.Status = StatusSuccess
	return out
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
