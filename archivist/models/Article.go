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

// Article is one ingested news item. Articles are created by the ingestion
// pipeline only and never mutated afterwards.
type Article struct {
	ID             uuid.UUID `gorm:"primaryKey;type:uuid;not null;" json:"id"`
	Title          string    `gorm:"size:512;uniqueIndex;not null;" json:"title"`            // Title of the article, unique across the store
	Content        string    `gorm:"type:text;not null;" json:"content"`                     // Rewritten (or original) body text, never empty
	OriginalURL    *string   `gorm:"size:512;uniqueIndex;" json:"original_url"`              // Link to the origin page, unique when present
	Category       string    `gorm:"size:100;not null;" json:"category"`                     // Category derived from the source key suffix
	PublishedAt    time.Time `gorm:"not null;index;" json:"published_at"`                    // Publication date in UTC
	Source         string    `gorm:"size:100;not null;" json:"source"`                       // Human-readable origin name (e.g. "TechCrunch")
	RelatedCompany string    `gorm:"size:100;" json:"related_company"`                       // At most one known company mentioned in the text
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
}

func (a *Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return newError(errlvl.INFO, errTitleEmpty, nil)
	}

	if len(a.Title) > 512 {
		return newError(errlvl.INFO, errTitleTooLong, nil)
	}

	if strings.TrimSpace(a.Content) == "" {
		return newError(errlvl.INFO, errContentEmpty, nil)
	}

	if a.OriginalURL != nil && len(*a.OriginalURL) > 512 {
		return newError(errlvl.INFO, errURLTooLong, nil)
	}

	if a.PublishedAt.IsZero() {
		return newError(errlvl.INFO, errPublishedEmpty, nil)
	}

	if a.Source == "" {
		return newError(errlvl.INFO, errSourceEmpty, nil)
	}

	return nil
}

func (a *Article) BeforeCreate(*gorm.DB) error {
	a.ID = uuid.New()
	a.Content = strings.TrimSpace(a.Content)
	a.PublishedAt = a.PublishedAt.UTC()

	if err := a.Validate(); err != nil {
		return newError(errlvl.INFO, errArticleValidation, err)
	}

	return nil
}

// ArticleFilter narrows down ArticlesDB.FindAll results. Zero values mean
// "no constraint".
type ArticleFilter struct {
	Company   string     // exact match on RelatedCompany
	Source    string     // exact match on Source
	From      *time.Time // PublishedAt >= From
	To        *time.Time // PublishedAt <= To
	TodayOnly bool       // PublishedAt within the current UTC day
}

type ArticlesDB struct {
	Conn *gorm.DB
}

func NewArticlesDB(db *gorm.DB) *ArticlesDB {
	return &ArticlesDB{Conn: db}
}

// Create persists the article. A uniqueness violation on title or URL is
// reported as ErrDuplicate.
func (db *ArticlesDB) Create(ctx context.Context, a *Article) error {
	res := db.Conn.WithContext(ctx).Create(a)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return newError(errlvl.DEBUG, ErrDuplicate, res.Error)
		}
		return newError(errlvl.ERROR, errArticleCreation, res.Error)
	}

	return nil
}

// ExistsByURL reports whether an article with the given origin URL is stored.
func (db *ArticlesDB) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var count int64
	res := db.Conn.WithContext(ctx).Model(&Article{}).Where("original_url = ?", url).Count(&count)
	if res.Error != nil {
		return false, newError(errlvl.ERROR, errArticleLookup, res.Error)
	}

	return count > 0, nil
}

// ExistsByTitle reports whether an article with the given title is stored.
func (db *ArticlesDB) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	res := db.Conn.WithContext(ctx).Model(&Article{}).Where("title = ?", title).Count(&count)
	if res.Error != nil {
		return false, newError(errlvl.ERROR, errArticleLookup, res.Error)
	}

	return count > 0, nil
}

// FindAll returns articles matching the filter, newest first.
func (db *ArticlesDB) FindAll(ctx context.Context, f ArticleFilter) ([]*Article, error) {
	q := db.Conn.WithContext(ctx).Order("published_at desc")

	if f.Company != "" {
		q = q.Where("related_company = ?", f.Company)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.From != nil {
		q = q.Where("published_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("published_at <= ?", f.To.UTC())
	}
	if f.TodayOnly {
		now := time.Now().UTC()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		q = q.Where("published_at >= ?", dayStart)
	}

	var articles []*Article
	if res := q.Find(&articles); res.Error != nil {
		return nil, newError(errlvl.ERROR, errArticleLookup, res.Error)
	}

	return articles, nil
}

// Delete removes the article with the given ID.
func (db *ArticlesDB) Delete(ctx context.Context, id uuid.UUID) error {
	res := db.Conn.WithContext(ctx).Delete(&Article{}, "id = ?", id)
	if res.Error != nil {
		return newError(errlvl.ERROR, errArticleDeletion, res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(errlvl.INFO, ErrNotFound, nil)
	}

	return nil
}
