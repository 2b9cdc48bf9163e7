package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	apperrors "github.com/tinyio/shortener/internal/errors"
	"github.com/tinyio/shortener/internal/logger"
	"github.com/tinyio/shortener/internal/models"
	"github.com/tinyio/shortener/internal/repository"
)

// charset is the slug alphabet: 62 ASCII letters and digits.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	DefaultBaseURL     = "https://tiny.io"
	DefaultSlugLength  = 6
	DefaultMaxAttempts = 5

	// MaxExpiresInDays bounds the expires_in_days a caller may ask for
	// (about a century). It keeps every expiry well inside the year range
	// the storage drivers can read back.
	MaxExpiresInDays = 36500
)

// maxExpiryYear is the last year any supported driver round-trips.
const maxExpiryYear = 9999

// reservedSlugs are root paths owned by other routes. A slug equal to one of
// them would be stored but never reach the redirect handler.
var reservedSlugs = map[string]struct{}{
	"health":  {},
	"shorten": {},
	"api":     {},
}

// IsReservedSlug reports whether slug collides with a fixed route.
func IsReservedSlug(slug string) bool {
	_, ok := reservedSlugs[slug]
	return ok
}

// SlugGenerator produces candidate slugs. The default draws from charset with
// crypto/rand; tests inject deterministic sequences.
type SlugGenerator func() (string, error)

// Option customises a URLService.
type Option func(*URLService)

// WithBaseURL sets the prefix of every short URL.
func WithBaseURL(baseURL string) Option {
	return func(s *URLService) { s.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithSlugLength sets the length of generated slugs. Deployments keep the
// default of 6 unless they knowingly trade brevity for a larger slug space.
func WithSlugLength(n int) Option {
	return func(s *URLService) { s.slugLength = n }
}

// WithMaxAttempts bounds how many fresh slugs Shorten tries on collision.
func WithMaxAttempts(n int) Option {
	return func(s *URLService) { s.maxAttempts = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *URLService) { s.now = now }
}

// WithSlugGenerator replaces the random slug source.
func WithSlugGenerator(gen SlugGenerator) Option {
	return func(s *URLService) { s.generate = gen }
}

// URLService holds the shortening logic: slug generation, dedup, expiry
// enforcement and short URL formatting. Persistence goes through urlRepo.
type URLService struct {
	urlRepo     repository.URLRepository
	baseURL     string
	slugLength  int
	maxAttempts int
	now         func() time.Time
	generate    SlugGenerator
}

// NewURLService returns a service backed by urlRepo.
func NewURLService(urlRepo repository.URLRepository, opts ...Option) *URLService {
	s := &URLService{
		urlRepo:     urlRepo,
		baseURL:     DefaultBaseURL,
		slugLength:  DefaultSlugLength,
		maxAttempts: DefaultMaxAttempts,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Bound late so WithSlugLength is honoured by the default generator.
	if s.generate == nil {
		s.generate = s.GenerateSlug
	}
	return s
}

// GenerateSlug draws a slug of the configured length uniformly from charset
// using crypto/rand.
func (s *URLService) GenerateSlug() (string, error) {
	result := make([]byte, s.slugLength)
	charsetLen := big.NewInt(int64(len(charset)))

	// rand.Int is uniform over [0, 62), so every symbol is equally likely.
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", fmt.Errorf("error generating random number: %w", err)
		}
		result[i] = charset[n.Int64()]
	}

	return string(result), nil
}

// ShortURL formats the public short URL for slug.
func (s *URLService) ShortURL(slug string) string {
	return s.baseURL + "/" + slug
}

// Shorten returns the short URL for longURL, creating a mapping if none exists.
//
// An existing mapping for the same long URL is reused as is, even when it has
// already expired: the returned short URL will then not resolve. A fresh slug
// that collides with a stored one, or with a reserved route, is replaced, up
// to maxAttempts times. An expiry past year 9999 is rejected with a
// *apperrors.ValidationError before anything is written.
func (s *URLService) Shorten(ctx context.Context, longURL string, expiresAt *time.Time) (string, error) {
	if expiresAt != nil && expiresAt.UTC().Year() > maxExpiryYear {
		return "", &apperrors.ValidationError{
			Field:  "expires_at",
			Reason: fmt.Sprintf("must not be later than year %d", maxExpiryYear),
		}
	}

	// Dedup: the first mapping stored for this long URL wins, expired or not.
	existing, err := s.urlRepo.GetByURL(ctx, longURL)
	if err != nil {
		logger.Error().Err(err).Str("long_url", longURL).Msg("error looking up existing mapping")
		return "", err
	}
	if existing != nil {
		logger.Debug().Str("slug", existing.Slug).Msg("reusing existing slug")
		return s.ShortURL(existing.Slug), nil
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		slug, err := s.generate()
		if err != nil {
			return "", fmt.Errorf("error generating slug: %w", err)
		}

		// A reserved slug costs an attempt just like a stored collision.
		if IsReservedSlug(slug) {
			logger.Warn().Str("slug", slug).Int("attempt", attempt).Msg("generated reserved slug, retrying")
			continue
		}

		// No pre-check: the primary key is the only uniqueness guard, so a
		// concurrent insert of the same slug surfaces here as a conflict.
		err = s.urlRepo.Insert(ctx, slug, longURL, expiresAt)
		if err == nil {
			logger.Info().Str("slug", slug).Str("long_url", longURL).Msg("shortened url")
			return s.ShortURL(slug), nil
		}

		if errors.Is(err, apperrors.ErrSlugConflict) {
			logger.Warn().Str("slug", slug).Int("attempt", attempt).Int("max_attempts", s.maxAttempts).
				Msg("slug collision, retrying")
			continue
		}

		// Any other storage fault goes back to the caller untouched.
		logger.Error().Err(err).Str("slug", slug).Msg("error inserting url into database")
		return "", err
	}

	return "", &apperrors.ErrSlugGenerationFailed{Attempts: s.maxAttempts}
}

// Resolve returns the long URL behind slug. The boolean is false when the slug
// was never issued or has expired; neither case is an error. Every lookup of a
// stored slug counts a click, including lookups that end up rejected as expired.
func (s *URLService) Resolve(ctx context.Context, slug string) (string, bool, error) {
	// GetBySlug has already counted the click by the time it returns.
	mapping, err := s.urlRepo.GetBySlug(ctx, slug)
	if err != nil {
		logger.Error().Err(err).Str("slug", slug).Msg("error fetching url from database")
		return "", false, err
	}
	if mapping == nil {
		return "", false, nil
	}
	// Expiry is enforced lazily: the row stays, the lookup just misses.
	if mapping.IsExpired(s.now()) {
		logger.Warn().Str("slug", slug).Time("expires_at", *mapping.ExpiresAt).Msg("url expired")
		return "", false, nil
	}
	return mapping.LongURL, true, nil
}

// Stats returns the mapping for slug without counting a click. Expired
// mappings are returned too; apperrors.ErrNotFound means the slug is unknown.
func (s *URLService) Stats(ctx context.Context, slug string) (*models.URLMapping, error) {
	mapping, err := s.urlRepo.GetStats(ctx, slug)
	if err != nil {
		logger.Error().Err(err).Str("slug", slug).Msg("error fetching stats")
		return nil, err
	}
	if mapping == nil {
		return nil, apperrors.ErrNotFound
	}
	return mapping, nil
}

// IsExpired reports whether mapping has expired according to the service clock.
func (s *URLService) IsExpired(mapping *models.URLMapping) bool {
	return mapping.IsExpired(s.now())
}

// PurgeExpired deletes mappings that have expired by now. Resolve never needs
// it; it only reclaims storage.
func (s *URLService) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := s.urlRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		logger.Error().Err(err).Msg("error purging expired urls")
		return 0, err
	}
	logger.Info().Int64("deleted", deleted).Msg("purged expired urls")
	return deleted, nil
}
