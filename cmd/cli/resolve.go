package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cmd2 "github.com/tinyio/shortener/cmd"
	"github.com/tinyio/shortener/internal/database"
	"github.com/tinyio/shortener/internal/logger"
)

var resolveSlugFlag string

// ResolveCmd prints the long URL behind a slug. Like a redirect, it counts a click.
var ResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Prints the long URL a slug points to.",
	Long: `Resolves a slug the same way GET /{slug} does, including counting the
click, and prints the long URL. Unknown and expired slugs exit non-zero.

Example:
  tinyio resolve --slug="aB3xY9"`,
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

		longURL, ok, err := cmd2.NewService(db).Resolve(cmd.Context(), resolveSlugFlag)
		if err != nil {
			logger.Fatal().Err(err).Str("slug", resolveSlugFlag).Msg("failed to resolve slug")
		}
		if !ok {
			logger.Fatal().Str("slug", resolveSlugFlag).Msg("slug not found or expired")
		}

		fmt.Fprintln(cmd.OutOrStdout(), longURL)
	},
}

func init() {
	ResolveCmd.Flags().StringVarP(&resolveSlugFlag, "slug", "s", "", "the slug to resolve")
	_ = ResolveCmd.MarkFlagRequired("slug")

	cmd2.RootCmd.AddCommand(ResolveCmd)
}
