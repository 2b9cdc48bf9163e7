package models

import "time"

// URLMapping is the single persisted entity: a slug pointing at a long URL.
// The table name stays "urls" so existing databases keep working.
type URLMapping struct {
	Slug       string     `gorm:"primaryKey;size:16"` // Slug is the short identifier and the primary key
	LongURL    string     `gorm:"not null;index"`     // LongURL is looked up for dedup, hence indexed (not unique)
	ExpiresAt  *time.Time `gorm:"index"`              // ExpiresAt is optional; nil means the mapping never expires
	ClickCount int64      `gorm:"not null;default:0"` // ClickCount only ever grows
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
}

// TableName pins the table name used by every storage backend.
func (URLMapping) TableName() string {
	return "urls"
}

// IsExpired reports whether the mapping has expired at the given instant.
// A mapping whose expiry equals now is still valid.
func (m *URLMapping) IsExpired(now time.Time) bool {
	if m.ExpiresAt == nil {
		return false
	}
	return m.ExpiresAt.Before(now)
}
