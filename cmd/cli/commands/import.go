package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/flightguard/pkg/core/services"
	"github.com/jakechorley/flightguard/pkg/ingest"
)

// ImportCmd creates the import command
func ImportCmd(app *AppContext) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "import <dataset_id> <manifest.csv>",
		Short: "Import a CSV flight manifest into a dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			datasetID, path := args[0], args[1]

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open manifest: %w", err)
			}
			defer file.Close()

			records, err := ingest.ParseManifest(file)
			if err != nil {
				return err
			}

			result, err := services.ImportManifest(app.Ctx, app.Store, app.Auth, app.Publisher, app.Logger,
				datasetID, records, actor)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Manifest imported!\n\n")
			fmt.Printf("Parsed:   %d\n", result.ParsedCount)
			fmt.Printf("Inserted: %d\n", result.InsertedCount)
			fmt.Printf("Skipped:  %d\n\n", result.SkippedCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "acting identity (email)")
	cmd.MarkFlagRequired("actor")
	return cmd
}
