// Package journalist fetches and normalizes feed entries from remote sources.
package journalist

import (
	"context"

	"github.com/mmcdole/gofeed"
)

// FeedFetcher is the interface for the feed acquisition step.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]*Entry, error)
}

// RssFetcher fetches RSS/Atom/JSON feeds over HTTP via gofeed.
type RssFetcher struct {
	parser *gofeed.Parser
}

// NewRssFetcher creates a fetcher that identifies itself with the given
// User-Agent string. Some feed hosts reject the default Go client identity.
func NewRssFetcher(userAgent string) *RssFetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent

	return &RssFetcher{parser: parser}
}

// Fetch retrieves and parses the feed at url. Transport failures and
// malformed documents are reported as *ProviderErr; a well-formed feed with
// zero entries is reported as ErrEmptyFeed. Both conditions are actionable
// in the same way: fall back to scraping the page.
func (r *RssFetcher) Fetch(ctx context.Context, url string) ([]*Entry, error) {
	feed, err := r.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, &ProviderErr{URL: url, Err: err}
	}

	if len(feed.Items) == 0 {
		return nil, &ProviderErr{URL: url, Err: ErrEmptyFeed}
	}

	entries := make([]*Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, newEntryFromItem(item))
	}

	return entries, nil
}
