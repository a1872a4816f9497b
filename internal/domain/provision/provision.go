// Package provision makes sure a challenge winner exists as a playoff player
// and records the win.
package provision

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
	"github.com/topcoder-platform/playoff-processor/pkg/metrics"
	"github.com/topcoder-platform/playoff-processor/pkg/tracing"
)

// Defaults used when no option overrides them.
const (
	defaultIDPrefix = "tc_"
	defaultActionID = "f2_f_hero"
	winPlayCount    = 1
)

// Players is the gamification API as seen with one access token.
type Players interface {
	PlayerExists(ctx context.Context, playoffID string) (bool, error)
	CreatePlayer(ctx context.Context, playoffID, alias string) error
	PlayAction(ctx context.Context, playoffID, actionID string, count int) error
}

// Connect acquires a gamification access token and returns the API bound to it.
type Connect func(ctx context.Context) (Players, error)

// HandleLookup resolves a member's display handle.
type HandleLookup interface {
	GetHandle(ctx context.Context, memberID string) (string, error)
}

// Orchestrator provisions winners in the gamification system.
type Orchestrator struct {
	connect  Connect
	handles  HandleLookup
	prefix   string
	actionID string
	logger   logger.Logger
}

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithIDPrefix sets the playoff id prefix.
func WithIDPrefix(prefix string) Option {
	return func(o *Orchestrator) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithActionID sets the action played for a win.
func WithActionID(id string) Option {
	return func(o *Orchestrator) {
		if id != "" {
			o.actionID = id
		}
	}
}

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an Orchestrator.
func New(connect Connect, handles HandleLookup, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		connect:  connect,
		handles:  handles,
		prefix:   defaultIDPrefix,
		actionID: defaultActionID,
		logger:   logger.Get().Named("provision"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// EnsurePlayerAndRecordWin creates the member's player when it does not exist
// yet and then plays the win action for it.
//
// Creation is guarded by the existence check, so redelivered events never
// create a player twice. The action itself is not deduplicated: reprocessing
// an event that already succeeded records a second win.
func (o *Orchestrator) EnsurePlayerAndRecordWin(ctx context.Context, memberID string) (err error) {
	playoffID := model.PlayoffID(o.prefix, memberID)
	ctx, span := tracing.Start(ctx, "provision.EnsurePlayerAndRecordWin", attribute.String("playoff.id", playoffID))
	defer func() { tracing.End(span, err) }()

	players, err := o.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect to playoff: %w", err)
	}

	exists, err := players.PlayerExists(ctx, playoffID)
	if err != nil {
		return fmt.Errorf("check player %s: %w", playoffID, err)
	}
	o.logger.Info(ctx, "checked playoff player",
		logger.String("memberId", memberID),
		logger.String("playoffId", playoffID),
		logger.Bool("exists", exists),
	)

	if exists {
		metrics.RecordPlayerExisting()
	} else {
		handle, err := o.handles.GetHandle(ctx, memberID)
		if err != nil {
			return fmt.Errorf("get handle of member %s: %w", memberID, err)
		}
		if err := players.CreatePlayer(ctx, playoffID, handle); err != nil {
			return fmt.Errorf("create player %s: %w", playoffID, err)
		}
		metrics.RecordPlayerCreated()
		o.logger.Info(ctx, "created playoff player",
			logger.String("playoffId", playoffID),
			logger.String("alias", handle),
		)
	}

	if err := players.PlayAction(ctx, playoffID, o.actionID, winPlayCount); err != nil {
		return fmt.Errorf("play action %s for %s: %w", o.actionID, playoffID, err)
	}
	metrics.RecordActionPlayed()
	o.logger.Info(ctx, "played win action",
		logger.String("playoffId", playoffID),
		logger.String("actionId", o.actionID),
	)
	return nil
}
