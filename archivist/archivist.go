// Package archivist is responsible for storing and retrieving articles and
// feed sources from the database.
package archivist

import (
	"context"
	"errors"

	"github.com/aipulse/aipulse/archivist/models"
	"gorm.io/gorm"
)

// Entities is a struct that contains all the entities that Archivist is responsible for.
type Entities struct {
	Articles *models.ArticlesDB
	Sources  *models.SourcesDB
}

// Archivist owns the database connection and the entity repositories.
type Archivist struct {
	db       *gorm.DB
	Entities *Entities
}

// SeedSource is a key/URL pair registered on first start. The composite key
// format matches what the HTTP API accepts.
type SeedSource struct {
	Key string
	URL string
}

// NewArchivist creates a new Archivist with provided DSN to connect to database.
//
// DSN is a string in the format of: "user=gorm password=gorm dbname=gorm port=9920 sslmode=disable"
func NewArchivist(dsn string) (*Archivist, error) {
	conn, err := connectToPG(dsn)
	if err != nil {
		return nil, err
	}

	// Migrate the schema automatically for now.
	// TODO: Add migration tool later.
	err = conn.AutoMigrate(&models.Article{}, &models.FeedSource{})
	if err != nil {
		return nil, err
	}

	return &Archivist{
		db: conn,
		Entities: &Entities{
			Articles: models.NewArticlesDB(conn),
			Sources:  models.NewSourcesDB(conn),
		},
	}, nil
}

// SeedSources registers the default source set if the table is empty.
// A non-empty table is left untouched so manual edits survive restarts.
func (a *Archivist) SeedSources(ctx context.Context, seeds []SeedSource) error {
	count, err := a.Entities.Sources.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, seed := range seeds {
		src := &models.FeedSource{Key: seed.Key, URL: seed.URL}
		if err := a.Entities.Sources.Create(ctx, src); err != nil {
			// A concurrent replica may have seeded first.
			if errors.Is(err, models.ErrDuplicate) {
				continue
			}
			return err
		}
	}

	return nil
}
