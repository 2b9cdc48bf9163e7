package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/tinyio/shortener/internal/errors"
	"github.com/tinyio/shortener/internal/logger"
	"github.com/tinyio/shortener/internal/models"
)

// Shortener is what the HTTP layer needs from the shortening service.
type Shortener interface {
	Shorten(ctx context.Context, longURL string, expiresAt *time.Time) (string, error)
	Resolve(ctx context.Context, slug string) (string, bool, error)
	Stats(ctx context.Context, slug string) (*models.URLMapping, error)
	IsExpired(mapping *models.URLMapping) bool
}

// SetupRoutes registers every route on router. now stamps the creation time
// that expires_in_days counts from.
func SetupRoutes(router *gin.Engine, shortener Shortener, now func() time.Time) {
	router.GET("/health", HealthCheckHandler)

	router.POST("/shorten", ShortenHandler(shortener, now))

	api := router.Group("/api/v1")
	{
		api.GET("/links/:slug/stats", StatsHandler(shortener))
	}

	// slugs live at the root, so this must stay the catch-all
	router.GET("/:slug", RedirectHandler(shortener))
}

// HealthCheckHandler answers /health.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ShortenRequest is the body of POST /shorten.
type ShortenRequest struct {
	URL           string `json:"url" binding:"required,url"`
	ExpiresInDays *int   `json:"expires_in_days" binding:"omitempty,min=0,max=36500"` // capped at services.MaxExpiresInDays
}

// ShortenResponse is the body returned by POST /shorten.
type ShortenResponse struct {
	ShortURL string `json:"short_url"`
}

// StatsResponse is the body returned by the stats endpoint.
type StatsResponse struct {
	Slug       string     `json:"slug"`
	LongURL    string     `json:"long_url"`
	ClickCount int64      `json:"click_count"`
	ExpiresAt  *time.Time `json:"expires_at"`
	Expired    bool       `json:"expired"`
}

// validateLongURL accepts absolute http(s) URLs with a host.
func validateLongURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &apperrors.ValidationError{Field: "url", Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &apperrors.ValidationError{Field: "url", Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &apperrors.ValidationError{Field: "url", Reason: "host is required"}
	}
	return nil
}

// logFailure starts the error log line for a failure that becomes a 500.
// Storage faults carry the failing op; anything else is tagged unexpected.
func logFailure(err error) *zerolog.Event {
	if !apperrors.IsPersistence(err) {
		return logger.Error().Err(err).Bool("unexpected", true)
	}
	var perr *apperrors.PersistenceError
	errors.As(err, &perr)
	return logger.Error().Err(err).Str("op", perr.Op)
}

// ShortenHandler handles POST /shorten.
func ShortenHandler(shortener Shortener, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ShortenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request: " + err.Error()})
			return
		}
		if err := validateLongURL(req.URL); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		var expiresAt *time.Time
		if req.ExpiresInDays != nil {
			t := now().UTC().AddDate(0, 0, *req.ExpiresInDays)
			expiresAt = &t
		}

		shortURL, err := shortener.Shorten(c.Request.Context(), req.URL, expiresAt)
		if err != nil {
			var verr *apperrors.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, gin.H{"detail": verr.Error()})
				return
			}
			logFailure(err).Str("url", req.URL).Msg("error shortening url")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
			return
		}

		logger.Info().Str("short_url", shortURL).Msg("shortened url")
		c.JSON(http.StatusOK, ShortenResponse{ShortURL: shortURL})
	}
}

// RedirectHandler handles GET /:slug with a 307 to the long URL.
func RedirectHandler(shortener Shortener) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		longURL, ok, err := shortener.Resolve(c.Request.Context(), slug)
		if err != nil {
			logFailure(err).Str("slug", slug).Msg("error resolving slug")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
			return
		}
		if !ok {
			logger.Warn().Str("slug", slug).Msg("slug not found or expired")
			c.JSON(http.StatusNotFound, gin.H{"detail": "URL not found or expired"})
			return
		}

		logger.Info().Str("slug", slug).Str("long_url", longURL).Msg("redirecting")
		c.Redirect(http.StatusTemporaryRedirect, longURL)
	}
}

// StatsHandler handles GET /api/v1/links/:slug/stats. Reading stats never
// counts as a click.
func StatsHandler(shortener Shortener) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		mapping, err := shortener.Stats(c.Request.Context(), slug)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"detail": "URL not found"})
				return
			}
			logFailure(err).Str("slug", slug).Msg("error retrieving stats")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal Server Error"})
			return
		}

		c.JSON(http.StatusOK, StatsResponse{
			Slug:       mapping.Slug,
			LongURL:    mapping.LongURL,
			ClickCount: mapping.ClickCount,
			ExpiresAt:  mapping.ExpiresAt,
			Expired:    shortener.IsExpired(mapping),
		})
	}
}
