package players

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/topcoder-platform/playoff-processor/pkg/logger"
)

const defaultListLimit = 10

func newListCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list [limit]",
		Short: "List players (default limit 10)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := defaultListLimit
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("%w: limit %q", ErrInvalidArgument, args[0])
				}
				limit = n
			}

			ctx := cmd.Context()
			api, err := deps.Connect(ctx)
			if err != nil {
				return err
			}
			players, err := api.ListPlayers(ctx, limit)
			if err != nil {
				return err
			}

			out := make([]any, 0, len(players))
			for _, p := range players {
				out = append(out, rawPlayer(p))
			}
			deps.Logger.Info(ctx, "listed players", logger.Int("limit", limit), logger.Int("count", len(out)))
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newViewCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "view <player-id>",
		Short: "Show the details of a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			api, err := deps.Connect(ctx)
			if err != nil {
				return err
			}
			p, err := api.GetPlayer(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rawPlayer(p))
		},
	}
}

func newRemoveCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <player-id>",
		Short: "Delete a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			api, err := deps.Connect(ctx)
			if err != nil {
				return err
			}
			if err := api.DeletePlayer(ctx, args[0]); err != nil {
				return err
			}
			deps.Logger.Info(ctx, "removed player", logger.String("playerId", args[0]))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return err
		},
	}
}
