package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/flightguard/pkg/postgres"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, ok := app.Store.(*postgres.DB)
			if !ok {
				return fmt.Errorf("migrate requires a configured database_url")
			}

			if err := db.RunMigrations(app.Ctx); err != nil {
				return err
			}

			fmt.Println("✓ Migrations applied")
			return nil
		},
	}
}
