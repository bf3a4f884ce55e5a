package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/flightguard/pkg/core/services"
)

// AssignCmd creates the assign command
func AssignCmd(app *AppContext) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "assign <dataset_id> <work_date>",
		Short: "Run auto-assignment for a dataset and work date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.RunAutoAssignment(app.Ctx, app.Store, app.Auth, app.Publisher, app.Logger,
				args[0], args[1], actor)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Assignment run complete!\n\n")
			fmt.Printf("Run ID:   %s\n", result.RunID)
			fmt.Printf("Seed:     %s\n", result.Seed)
			fmt.Printf("Updated:  %d flights\n\n", result.UpdatedFlightCount)

			for _, s := range result.Summary {
				fmt.Printf("  %-6s %3d flights, target %6.2f%% → %d/%d assigned\n",
					s.Category, s.Total, s.TargetPercent, s.AssignedCount, s.RequiredCount)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "acting identity (email)")
	cmd.MarkFlagRequired("actor")
	return cmd
}
