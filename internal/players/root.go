// Package players implements the playoff-players operator CLI.
package players

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/topcoder-platform/playoff-processor/internal/config"
	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

// PlayerAPI is the part of the gamification API the CLI uses.
type PlayerAPI interface {
	GetPlayer(ctx context.Context, playoffID string) (model.PlayoffPlayer, error)
	DeletePlayer(ctx context.Context, playoffID string) error
	ListPlayers(ctx context.Context, limit int) ([]model.PlayoffPlayer, error)
}

// Publisher writes raw messages to the event stream.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

// Deps are the collaborators built by the binary.
type Deps struct {
	Config *config.Config
	// Connect opens a gamification API session.
	Connect func(ctx context.Context) (PlayerAPI, error)
	// NewPublisher opens a stream publisher.
	NewPublisher func() (Publisher, error)
	Logger       logger.Logger
}

// NewRootCommand creates the root command of the CLI.
func NewRootCommand(deps Deps) *cobra.Command {
	if deps.Logger == nil {
		deps.Logger = logger.Get().Named("players")
	}

	cmd := &cobra.Command{
		Use:   "playoff-players",
		Short: "Inspect and maintain playoff players",
		Long: `Operator tooling for the gamification players created by the processor.

Every command authenticates with the configured playoff client credentials.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newListCommand(deps))
	cmd.AddCommand(newViewCommand(deps))
	cmd.AddCommand(newRemoveCommand(deps))
	cmd.AddCommand(newSendEventCommand(deps))

	return cmd
}

// printJSON writes v indented by four spaces.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func rawPlayer(p model.PlayoffPlayer) any {
	if p.Raw != nil {
		return p.Raw
	}
	return p
}
