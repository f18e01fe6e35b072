package archivist

import (
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func connectToPG(dsn string) (*gorm.DB, error) {
	bf := backoff.NewExponentialBackOff()
	bf.InitialInterval = 10 * time.Second
	bf.MaxInterval = 25 * time.Second
	bf.MaxElapsedTime = 90 * time.Second

	db, err := backoff.RetryWithData[*gorm.DB](func() (*gorm.DB, error) {
		conn, err := gorm.Open(postgres.New(postgres.Config{
			DSN: dsn,
		}), &gorm.Config{
			// Translate driver errors into gorm sentinels so that the models
			// can distinguish uniqueness violations from other write failures.
			TranslateError: true,
		})
		if err != nil {
			log.Println("Postgres not yet ready...")
			return nil, err
		}
		log.Println("Connected to Postgres!")
		return conn, nil
	}, bf)
	if err != nil {
		return nil, err
	}

	return db, nil
}
