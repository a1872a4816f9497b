// Package service wires the stream consumer to the winner provisioning
// pipeline.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/topcoder-platform/playoff-processor/internal/adapters/mq/kafka"
	"github.com/topcoder-platform/playoff-processor/internal/adapters/mq/worker"
	"github.com/topcoder-platform/playoff-processor/internal/adapters/rest"
	"github.com/topcoder-platform/playoff-processor/internal/config"
	"github.com/topcoder-platform/playoff-processor/internal/domain/intake"
	"github.com/topcoder-platform/playoff-processor/internal/domain/provision"
	"github.com/topcoder-platform/playoff-processor/internal/domain/winner"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

// ErrNotStarted is returned by Run before Start.
var ErrNotStarted = errors.New("service not started")

// Service owns the processing pipeline and its consumer.
type Service struct {
	mu sync.Mutex

	cfg *config.Config

	// Collaborators, built from cfg unless injected
	source        worker.Source
	httpClient    *http.Client
	m2mTokens     rest.TokenSource
	playoffTokens rest.TokenSource

	processor *intake.Processor
	worker    *worker.Worker

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSource replaces the Kafka consumer.
func WithSource(src worker.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithHTTPClient sets the client used for every outbound API call.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithM2MTokens replaces the platform token provider.
func WithM2MTokens(ts rest.TokenSource) Option {
	return func(s *Service) {
		if ts != nil {
			s.m2mTokens = ts
		}
	}
}

// WithPlayoffTokens replaces the gamification token provider.
func WithPlayoffTokens(ts rest.TokenSource) Option {
	return func(s *Service) {
		if ts != nil {
			s.playoffTokens = ts
		}
	}
}

// New constructs a Service for cfg.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		httpClient: &http.Client{},
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the pipeline and connects the consumer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting playoff processor...",
		logger.String("topic", s.cfg.KafkaTopic),
		logger.String("groupId", s.cfg.KafkaGroupID),
	)

	if s.m2mTokens == nil {
		s.m2mTokens = M2MTokens(s.cfg, s.httpClient)
	}
	if s.playoffTokens == nil {
		s.playoffTokens = PlayoffTokens(s.cfg, s.httpClient)
	}
	platformClient := PlatformClient(s.cfg, s.m2mTokens, s.httpClient)
	playoffClient := PlayoffClient(s.cfg, s.playoffTokens, s.httpClient)

	resolver := winner.NewResolver(platformClient,
		winner.WithReviewTypeName(s.cfg.IterativeReviewName),
		winner.WithWinScore(s.cfg.WinScore),
		winner.WithPageSize(s.cfg.PageSize),
	)
	connect := func(ctx context.Context) (provision.Players, error) {
		session, err := playoffClient.Session(ctx)
		if err != nil {
			return nil, err
		}
		return session, nil
	}
	orchestrator := provision.New(connect, platformClient,
		provision.WithIDPrefix(s.cfg.PlayoffIDPrefix),
		provision.WithActionID(s.cfg.PlayoffActionID),
	)
	s.processor = intake.NewProcessor(intake.Filter{
		PhaseTypeName: s.cfg.PhaseTypeName,
		State:         s.cfg.State,
		ProjectStatus: s.cfg.ProjectStatus,
	}, resolver, orchestrator)

	if s.source == nil {
		src, err := kafka.NewSource(kafka.Config{
			Brokers:    s.cfg.KafkaBrokers(),
			GroupID:    s.cfg.KafkaGroupID,
			Topic:      s.cfg.KafkaTopic,
			ClientCert: s.cfg.KafkaClientCert,
			ClientKey:  s.cfg.KafkaClientCertKey,
		}, s.logger.Named("kafka"))
		if err != nil {
			return fmt.Errorf("create kafka consumer: %w", err)
		}
		s.source = src
	}
	s.worker = worker.NewWorker(s.source, s.processor, worker.WithName("consumer"))

	s.started = true
	s.logger.Info(ctx, "playoff processor started")
	return nil
}

// Run consumes messages until ctx is canceled or Stop is called.
func (s *Service) Run(ctx context.Context) error {
	s.mu.Lock()
	w := s.worker
	s.mu.Unlock()

	if w == nil {
		return ErrNotStarted
	}
	return w.Run(ctx)
}

// Healthy reports consumer liveness.
func (s *Service) Healthy() bool {
	s.mu.Lock()
	w := s.worker
	s.mu.Unlock()

	return w != nil && w.Healthy()
}

// Stop waits for the message in flight and closes the consumer.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping playoff processor...")

	var errs []error
	if err := s.worker.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.source.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close consumer: %w", err))
	}

	s.started = false
	s.logger.Info(ctx, "playoff processor stopped")
	return errors.Join(errs...)
}
