package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/flightguard/pkg/core/services"
)

// TargetsCmd creates the targets command
func TargetsCmd(app *AppContext) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "targets <dataset_id> <category=percent>...",
		Short: "Set per-category minimum-service percentages",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasetID := args[0]

			var inputs []services.TargetInput
			for _, arg := range args[1:] {
				category, value, found := strings.Cut(arg, "=")
				if !found {
					return fmt.Errorf("expected category=percent, got %q", arg)
				}
				percent, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return fmt.Errorf("percent for %s must be a number: %w", category, err)
				}
				inputs = append(inputs, services.TargetInput{Category: category, TargetPercent: percent})
			}

			targets, err := services.SaveTargets(app.Ctx, app.Store, app.Auth, app.Publisher, app.Logger,
				datasetID, inputs, actor)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Targets saved!\n\n")
			for _, t := range targets {
				fmt.Printf("  %-6s %6.2f%%\n", t.Category, t.TargetPercent)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "acting identity (email)")
	cmd.MarkFlagRequired("actor")
	return cmd
}
