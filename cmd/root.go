package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tinyio/shortener/internal/config"
	"github.com/tinyio/shortener/internal/database"
	"github.com/tinyio/shortener/internal/logger"
	"github.com/tinyio/shortener/internal/repository"
	"github.com/tinyio/shortener/internal/services"
)

// Cfg is loaded once by RootCmd before any subcommand runs.
var Cfg *config.Config

// RootCmd is the tinyio command. Subcommands register themselves from their
// package init().
var RootCmd = &cobra.Command{
	Use:   "tinyio",
	Short: "tinyio shortens URLs and redirects short slugs to them.",
	Long: `tinyio is a URL shortener: POST a long URL to get a short one back,
GET the short one to be redirected. The same operations are available
from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		Cfg = cfg
		logger.Init(cfg.App.Env)
		return nil
	},
}

// Execute runs RootCmd and exits non-zero on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// OpenDatabase connects to the configured database and migrates it.
// The caller closes it with database.Close.
func OpenDatabase() (*gorm.DB, error) {
	if Cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return database.Open(Cfg.Database, Cfg.App.Env == "development")
}

// NewService builds the shortening service over db from Cfg.
func NewService(db *gorm.DB) *services.URLService {
	return services.NewURLService(
		repository.NewURLRepository(db),
		services.WithBaseURL(Cfg.Server.BaseURL),
		services.WithSlugLength(Cfg.Shortener.SlugLength),
		services.WithMaxAttempts(Cfg.Shortener.MaxAttempts),
	)
}
