package cli

import (
	"github.com/food-delivery-platform/backend/internal/app"
	"github.com/food-delivery-platform/backend/internal/config"
	"github.com/food-delivery-platform/backend/internal/database"
	"github.com/spf13/cobra"
)

// newMigrateCmd talks to Postgres directly and skips the backend wiring of
// the other commands.
func newMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := app.NewLogger(cfg.Log)

			db, err := database.Connect(cfg.Database, log)
			if err != nil {
				return err
			}
			defer db.Close()

			return database.Migrate(db, down, log)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll every migration back")
	return cmd
}
