package journalist

import (
	"errors"
	"fmt"
)

// ErrEmptyFeed is returned when a feed parses cleanly but carries no entries.
// Like a malformed feed, it routes the source to the fallback scraper.
var ErrEmptyFeed = errors.New("feed contains no entries")

// ProviderErr is the error type for feed acquisition failures. It covers both
// transport errors and malformed documents; the caller treats them alike.
type ProviderErr struct {
	URL string
	Err error
}

func (e *ProviderErr) Error() string {
	return fmt.Sprintf("feed %s: %v", e.URL, e.Err)
}

func (e *ProviderErr) Unwrap() error {
	return e.Err
}
