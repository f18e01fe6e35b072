package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aipulse/aipulse/pkg/errlvl"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedSource is a configured origin to poll. Origin and Category are derived
// from the composite key exactly once, at registration; the dashed key
// encoding only exists for the HTTP API and seed data.
type FeedSource struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;not null;" json:"id"`
	Key       string    `gorm:"size:100;uniqueIndex;not null;" json:"key"` // Composite key, e.g. "TC-AI"
	URL       string    `gorm:"size:512;uniqueIndex;not null;" json:"url"` // Feed or page URL
	Origin    string    `gorm:"size:100;not null;" json:"origin"`          // Short origin code, e.g. "TC"
	Category  string    `gorm:"size:100;" json:"category"`                 // Key suffix; empty when the key has none
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
}

// ParseKey splits the composite "ORIGIN-Category" key used at the API
// boundary. The category is empty when the key carries no suffix.
func ParseKey(key string) (origin, category string) {
	origin, category, found := strings.Cut(key, "-")
	if !found {
		return key, ""
	}
	return origin, category
}

func (s *FeedSource) Validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return newError(errlvl.INFO, errKeyEmpty, nil)
	}

	if len(s.Key) > 100 {
		return newError(errlvl.INFO, errKeyTooLong, nil)
	}

	if strings.TrimSpace(s.URL) == "" {
		return newError(errlvl.INFO, errFeedURLEmpty, nil)
	}

	if len(s.URL) > 512 {
		return newError(errlvl.INFO, errFeedURLTooLong, nil)
	}

	return nil
}

func (s *FeedSource) BeforeCreate(*gorm.DB) error {
	s.ID = uuid.New()

	if s.Origin == "" {
		s.Origin, s.Category = ParseKey(s.Key)
	}

	if err := s.Validate(); err != nil {
		return newError(errlvl.INFO, errSourceValidation, err)
	}

	return nil
}

type SourcesDB struct {
	Conn *gorm.DB
}

func NewSourcesDB(db *gorm.DB) *SourcesDB {
	return &SourcesDB{Conn: db}
}

// Create registers a new feed source. A key or URL collision is reported
// as ErrDuplicate.
func (db *SourcesDB) Create(ctx context.Context, s *FeedSource) error {
	res := db.Conn.WithContext(ctx).Create(s)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return newError(errlvl.DEBUG, ErrDuplicate, res.Error)
		}
		return newError(errlvl.ERROR, errSourceCreation, res.Error)
	}

	return nil
}

// FindAll returns every registered source ordered by key.
func (db *SourcesDB) FindAll(ctx context.Context) ([]*FeedSource, error) {
	var sources []*FeedSource
	res := db.Conn.WithContext(ctx).Order("key").Find(&sources)
	if res.Error != nil {
		return nil, newError(errlvl.ERROR, errSourceLookup, res.Error)
	}

	return sources, nil
}

// FindByIDs returns the sources matching the given IDs. Unknown IDs are
// silently absent from the result.
func (db *SourcesDB) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*FeedSource, error) {
	var sources []*FeedSource
	res := db.Conn.WithContext(ctx).Where("id IN ?", ids).Order("key").Find(&sources)
	if res.Error != nil {
		return nil, newError(errlvl.ERROR, errSourceLookup, res.Error)
	}

	return sources, nil
}

// Count returns the number of registered sources.
func (db *SourcesDB) Count(ctx context.Context) (int64, error) {
	var count int64
	res := db.Conn.WithContext(ctx).Model(&FeedSource{}).Count(&count)
	if res.Error != nil {
		return 0, newError(errlvl.ERROR, errSourceLookup, res.Error)
	}

	return count, nil
}

// Delete removes the source with the given ID.
func (db *SourcesDB) Delete(ctx context.Context, id uuid.UUID) error {
	res := db.Conn.WithContext(ctx).Delete(&FeedSource{}, "id = ?", id)
	if res.Error != nil {
		return newError(errlvl.ERROR, errSourceDeletion, res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(errlvl.INFO, ErrNotFound, nil)
	}

	return nil
}
