package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cmd2 "github.com/tinyio/shortener/cmd"
	"github.com/tinyio/shortener/internal/database"
	"github.com/tinyio/shortener/internal/logger"
)

// PurgeCmd deletes expired mappings.
var PurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Deletes expired short URLs.",
	Long: `Expired short URLs already stop resolving without this command; purge only
reclaims their rows. Run it by hand or from cron.`,
	Run: func(cmd *cobra.Command, args []string) {
		db, err := cmd2.OpenDatabase()
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to database")
		}
		defer func() {
			if err := database.Close(db); err != nil {
				logger.Warn().Err(err).Msg("error closing database")
			}
		}()

		deleted, err := cmd2.NewService(db).PurgeExpired(cmd.Context())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to purge expired urls")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired short URLs.\n", deleted)
	},
}

func init() {
	cmd2.RootCmd.AddCommand(PurgeCmd)
}
