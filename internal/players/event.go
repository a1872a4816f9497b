package players

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/topcoder-platform/playoff-processor/internal/config"
	"github.com/topcoder-platform/playoff-processor/internal/domain/model"
	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

const (
	defaultOriginator = "playoff-players"
	defaultOperator   = "playoff-players"
)

// CompletionEvent builds an event the processor will accept for challengeID.
func CompletionEvent(cfg *config.Config, challengeID, phaseID int64, originator, operator string, now time.Time) model.ChallengeCompletionEvent {
	return model.ChallengeCompletionEvent{
		Topic:      cfg.KafkaTopic,
		Originator: originator,
		Timestamp:  now.UTC(),
		MimeType:   "application/json",
		Payload: model.Payload{
			Date:          now.UTC(),
			ProjectID:     challengeID,
			PhaseID:       phaseID,
			PhaseTypeName: cfg.PhaseTypeName,
			State:         cfg.State,
			Operator:      operator,
			ProjectStatus: cfg.ProjectStatus,
		},
	}
}

func newSendEventCommand(deps Deps) *cobra.Command {
	var (
		phaseID    int64
		originator string
		operator   string
	)

	cmd := &cobra.Command{
		Use:   "send-event <challenge-id>",
		Short: "Publish a challenge completion event",
		Long: `Publish a completion event for a challenge to the configured topic, using
the configured phase type, state and project status, so the processor
resolves and credits its winner.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			challengeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || challengeID < 1 {
				return fmt.Errorf("%w: challenge id %q", ErrInvalidArgument, args[0])
			}
			if phaseID < 1 {
				return fmt.Errorf("%w: phase id %d", ErrInvalidArgument, phaseID)
			}

			ev := CompletionEvent(deps.Config, challengeID, phaseID, originator, operator, time.Now())
			raw, err := json.Marshal(ev)
			if err != nil {
				return fmt.Errorf("encode event: %w", err)
			}

			pub, err := deps.NewPublisher()
			if err != nil {
				return err
			}
			defer func() { _ = pub.Close() }()

			ctx := cmd.Context()
			key := uuid.NewString()
			if err := pub.Publish(ctx, []byte(key), raw); err != nil {
				return err
			}
			deps.Logger.Info(ctx, "published completion event",
				logger.Int64("challengeId", challengeID),
				logger.String("topic", ev.Topic),
				logger.String("key", key),
			)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return err
		},
	}

	cmd.Flags().Int64Var(&phaseID, "phase-id", 1, "phase id carried in the payload")
	cmd.Flags().StringVar(&originator, "originator", defaultOriginator, "event originator")
	cmd.Flags().StringVar(&operator, "operator", defaultOperator, "payload operator")

	return cmd
}
