package journalist

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

// EntryDates carries every date representation a feed entry may expose.
// Feeds are wildly inconsistent here: some provide parsed calendar
// components, some only free text, some nothing at all. NormalizeDate
// resolves the variant in strict precedence order.
type EntryDates struct {
	PublishedParsed *time.Time // structured "published" date
	UpdatedParsed   *time.Time // structured "updated" date
	Published       string     // free-text "published" date
	Updated         string     // free-text "updated" date
	Created         string     // free-text "created" date (rare, usually Dublin Core)
}

// Entry is a single feed item reduced to the fields the pipeline consumes.
type Entry struct {
	Title   string
	Link    string
	Summary string // summary/description field, possibly HTML-bearing
	Dates   EntryDates
}

var htmlStripper = bluemonday.StrictPolicy()

// newEntryFromItem converts a gofeed item into an Entry.
func newEntryFromItem(item *gofeed.Item) *Entry {
	e := &Entry{
		Title:   strings.TrimSpace(item.Title),
		Link:    strings.TrimSpace(item.Link),
		Summary: item.Description,
		Dates: EntryDates{
			PublishedParsed: item.PublishedParsed,
			UpdatedParsed:   item.UpdatedParsed,
			Published:       item.Published,
			Updated:         item.Updated,
		},
	}

	if e.Summary == "" {
		e.Summary = item.Content
	}
	if created, ok := item.Custom["created"]; ok {
		e.Dates.Created = created
	}

	return e
}

// PlainText returns the entry summary with markup stripped and HTML
// entities decoded.
func (e *Entry) PlainText() string {
	stripped := htmlStripper.Sanitize(e.Summary)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
