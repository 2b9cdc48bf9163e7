package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cmd2 "github.com/tinyio/shortener/cmd"
	"github.com/tinyio/shortener/internal/database"
	"github.com/tinyio/shortener/internal/logger"
)

// MigrateCmd creates or updates the urls table.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates or updates the database schema.",
	Long: `Connects to the configured database (SQLite or PostgreSQL, chosen by
the connection string) and runs GORM's automatic migration for the urls table.
The server and the other commands migrate on start as well.`,
	Run: func(cmd *cobra.Command, args []string) {
		db, err := cmd2.OpenDatabase()
		if err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		if err := database.Close(db); err != nil {
			logger.Warn().Err(err).Msg("error closing database")
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Database migrations completed successfully.")
	},
}

func init() {
	cmd2.RootCmd.AddCommand(MigrateCmd)
}
