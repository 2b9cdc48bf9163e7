package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cmd2 "github.com/tinyio/shortener/cmd"
	"github.com/tinyio/shortener/internal/database"
	apperrors "github.com/tinyio/shortener/internal/errors"
	"github.com/tinyio/shortener/internal/logger"
)

var statsSlugFlag string

// StatsCmd prints the click count of a slug.
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Shows the click count for a slug.",
	Long: `Prints the long URL, expiry and total clicks of a slug without counting
a click itself. Expired slugs are reported too.

Example:
  tinyio stats --slug="aB3xY9"`,
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

		svc := cmd2.NewService(db)
		mapping, err := svc.Stats(cmd.Context(), statsSlugFlag)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				logger.Fatal().Str("slug", statsSlugFlag).Msg("slug not found")
			}
			logger.Fatal().Err(err).Msg("failed to read stats")
		}

		expires := "never"
		if mapping.ExpiresAt != nil {
			expires = mapping.ExpiresAt.Format(time.RFC3339)
			if svc.IsExpired(mapping) {
				expires += " (expired)"
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Slug: %s\n", mapping.Slug)
		fmt.Fprintf(out, "Long URL: %s\n", mapping.LongURL)
		fmt.Fprintf(out, "Expires: %s\n", expires)
		fmt.Fprintf(out, "Clicks: %d\n", mapping.ClickCount)
	},
}

func init() {
	StatsCmd.Flags().StringVarP(&statsSlugFlag, "slug", "s", "", "the slug to report on")
	_ = StatsCmd.MarkFlagRequired("slug")

	cmd2.RootCmd.AddCommand(StatsCmd)
}
