package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	cmd2 "github.com/tinyio/shortener/cmd"
	"github.com/tinyio/shortener/internal/database"
	apperrors "github.com/tinyio/shortener/internal/errors"
	"github.com/tinyio/shortener/internal/logger"
	"github.com/tinyio/shortener/internal/services"
)

var (
	longURLFlag       string
	expiresInDaysFlag int
)

// ShortenCmd shortens a URL from the command line.
var ShortenCmd = &cobra.Command{
	Use:   "shorten",
	Short: "Creates a short URL for a long URL.",
	Long: `Shortens the given long URL and prints the short URL. Shortening the
same long URL again prints the same short URL.

Example:
  tinyio shorten --url="https://www.google.com/search?q=go+lang" --expires-in-days=7`,
	Run: func(cmd *cobra.Command, args []string) {
		u, err := url.ParseRequestURI(longURLFlag)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			logger.Fatal().Str("url", longURLFlag).Msg("invalid url: an absolute http or https url is required")
		}
		if err := validateExpiresInDays(expiresInDaysFlag); err != nil {
			logger.Fatal().Err(err).Msg("invalid expires-in-days")
		}

		db, err := cmd2.OpenDatabase()
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to database")
		}
		defer func() {
			if err := database.Close(db); err != nil {
				logger.Warn().Err(err).Msg("error closing database")
			}
		}()

		var expiresAt *time.Time
		if cmd.Flags().Changed("expires-in-days") {
			t := time.Now().UTC().AddDate(0, 0, expiresInDaysFlag)
			expiresAt = &t
		}

		shortURL, err := cmd2.NewService(db).Shorten(cmd.Context(), longURLFlag, expiresAt)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to shorten url")
		}

		fmt.Fprintln(cmd.OutOrStdout(), shortURL)
	},
}

// validateExpiresInDays applies the same 0..MaxExpiresInDays range as POST /shorten.
func validateExpiresInDays(days int) error {
	if days < 0 || days > services.MaxExpiresInDays {
		return &apperrors.ValidationError{
			Field:  "expires-in-days",
			Reason: fmt.Sprintf("must be between 0 and %d", services.MaxExpiresInDays),
		}
	}
	return nil
}

func init() {
	ShortenCmd.Flags().StringVarP(&longURLFlag, "url", "u", "", "the long URL to shorten")
	ShortenCmd.Flags().IntVarP(&expiresInDaysFlag, "expires-in-days", "e", 0, "days until the short URL stops resolving (no expiry when omitted)")
	_ = ShortenCmd.MarkFlagRequired("url")

	cmd2.RootCmd.AddCommand(ShortenCmd)
}
