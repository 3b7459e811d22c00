package cli

import (
	"fmt"
	"log/slog"

	"course-quiz-engine/internal/config"
	"course-quiz-engine/internal/infra/postgres"
	"course-quiz-engine/internal/infra/sqlite"
	"github.com/spf13/cobra"
)

// newMigrateCmd applies database migrations for the configured storage.
func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			switch cfg.Storage.Driver {
			case config.DriverPostgres:
				applied, err := postgres.Migrate(cmd.Context(), cfg.Storage.Postgres.URL)
				if err != nil {
					return err
				}
				slog.Info("migrations applied", "count", len(applied), "migrations", applied)
				fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", len(applied))
			default:
				// the SQLite store creates its schema when opened
				store, err := sqlite.New(cmd.Context(), cfg.Storage.SQLite.Path)
				if err != nil {
					return err
				}
				defer store.Close()
				slog.Info("sqlite schema ready", "path", cfg.Storage.SQLite.Path)
				fmt.Fprintln(cmd.OutOrStdout(), "SQLite schema ready")
			}
			return nil
		},
	}
}
