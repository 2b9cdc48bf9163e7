package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/tinyio/shortener/internal/errors"
	"github.com/tinyio/shortener/internal/models"
)

// URLRepository is the storage contract for slug mappings.
// Lookups return (nil, nil) when no row matches; every storage fault is
// returned as an *apperrors.PersistenceError.
type URLRepository interface {
	Insert(ctx context.Context, slug, longURL string, expiresAt *time.Time) error
	GetBySlug(ctx context.Context, slug string) (*models.URLMapping, error)
	GetByURL(ctx context.Context, longURL string) (*models.URLMapping, error)
	GetStats(ctx context.Context, slug string) (*models.URLMapping, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// GormURLRepository implements URLRepository on top of GORM.
type GormURLRepository struct {
	db *gorm.DB
}

// NewURLRepository returns a repository bound to db. The caller owns db.
func NewURLRepository(db *gorm.DB) *GormURLRepository {
	return &GormURLRepository{db: db}
}

// Insert writes a new mapping with a zero click count. A slug that already
// exists yields a PersistenceError wrapping apperrors.ErrSlugConflict.
func (r *GormURLRepository) Insert(ctx context.Context, slug, longURL string, expiresAt *time.Time) error {
	mapping := &models.URLMapping{
		Slug:    slug,
		LongURL: longURL,
	}
	// Expiries are stored in UTC so string-compared timestamps (SQLite)
	// order the same way as the instants they represent.
	if expiresAt != nil {
		utc := expiresAt.UTC()
		mapping.ExpiresAt = &utc
	}

	// click_count starts at its column default of 0.
	if err := r.db.WithContext(ctx).Create(mapping).Error; err != nil {
		// The primary key is the only slug uniqueness check there is.
		if isUniqueViolation(err) {
			return apperrors.NewPersistenceError("insert", apperrors.ErrSlugConflict)
		}
		return apperrors.NewPersistenceError("insert", err)
	}
	return nil
}

// GetBySlug fetches the mapping for slug and bumps its click count in the
// same transaction. The increment is a single UPDATE ... SET click_count =
// click_count + 1 so concurrent resolvers never lose a click. The returned
// mapping carries the incremented count.
func (r *GormURLRepository) GetBySlug(ctx context.Context, slug string) (*models.URLMapping, error) {
	var mapping models.URLMapping

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Read first: an unknown slug rolls back with ErrRecordNotFound.
		if err := tx.Where("slug = ?", slug).Take(&mapping).Error; err != nil {
			return err
		}
		// Increment in SQL, never from the value just read.
		return tx.Model(&models.URLMapping{}).
			Where("slug = ?", slug).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("get_by_slug", err)
	}

	// Reflect the committed increment in the returned copy.
	mapping.ClickCount++
	return &mapping, nil
}

// GetByURL returns the oldest mapping for longURL. It has no side effect.
func (r *GormURLRepository) GetByURL(ctx context.Context, longURL string) (*models.URLMapping, error) {
	var mapping models.URLMapping
	// Normally at most one row matches; ordering makes "first wins" explicit.
	err := r.db.WithContext(ctx).
		Where("long_url = ?", longURL).
		Order("created_at ASC").
		Take(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("get_by_url", err)
	}
	return &mapping, nil
}

// GetStats reads the mapping for slug without counting a click.
func (r *GormURLRepository) GetStats(ctx context.Context, slug string) (*models.URLMapping, error) {
	var mapping models.URLMapping
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Take(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("get_stats", err)
	}
	return &mapping, nil
}

// DeleteExpired removes every mapping whose expiry is strictly before the
// given instant and returns how many rows went away.
func (r *GormURLRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	// Rows without an expiry never match; equal to before is not yet expired.
	result := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", before.UTC()).
		Delete(&models.URLMapping{})
	if result.Error != nil {
		return 0, apperrors.NewPersistenceError("delete_expired", result.Error)
	}
	return result.RowsAffected, nil
}

// isUniqueViolation recognises primary-key collisions. TranslateError covers
// drivers that implement it; the message check covers the rest.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
