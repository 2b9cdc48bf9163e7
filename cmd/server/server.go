package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	cmd2 "github.com/tinyio/shortener/cmd"
	"github.com/tinyio/shortener/internal/api"
	"github.com/tinyio/shortener/internal/database"
	"github.com/tinyio/shortener/internal/logger"
	"github.com/tinyio/shortener/internal/middleware"
)

const shutdownTimeout = 10 * time.Second

// RunServerCmd starts the HTTP API.
var RunServerCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API.",
	Long: `Starts the gin server exposing POST /shorten and GET /{slug}.
The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := cmd2.Cfg

		db, err := cmd2.OpenDatabase()
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Close(db); err != nil {
				logger.Warn().Err(err).Msg("error closing database")
			}
		}()

		svc := cmd2.NewService(db)

		if cfg.App.Env != "development" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.New()
		router.Use(middleware.RequestID(), middleware.LoggingMiddleware(), middleware.Recovery())
		api.SetupRoutes(router, svc, time.Now)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info().Int("port", cfg.Server.Port).Str("base_url", cfg.Server.BaseURL).Msg("server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.Info().Msg("server stopped")
		return nil
	},
}

func init() {
	cmd2.RootCmd.AddCommand(RunServerCmd)
}
