package journalist

import (
	"errors"
	"strings"
	"time"
)

// textDateLayouts is the ladder of layouts tried by ParseTextDate, roughly
// ordered by how often feeds use them. Layouts without a zone designator
// parse as UTC.
var textDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var errUnparsableDate = errors.New("unparsable date string")

// ParseTextDate parses a free-text feed date into UTC. Strings without a
// timezone marker are assumed to already be UTC.
func ParseTextDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errUnparsableDate
	}

	for _, layout := range textDateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, errUnparsableDate
}

// NormalizeDate resolves the entry date variant into a single UTC timestamp.
// Precedence: structured published, structured updated, then the free-text
// published/updated/created fields, then the current time. It never fails.
// Sub-second precision of structured dates is dropped.
func NormalizeDate(d EntryDates) time.Time {
	for _, structured := range []*time.Time{d.PublishedParsed, d.UpdatedParsed} {
		if structured != nil {
			return structured.UTC().Truncate(time.Second)
		}
	}

	for _, text := range []string{d.Published, d.Updated, d.Created} {
		if parsed, err := ParseTextDate(text); err == nil {
			return parsed
		}
	}

	return time.Now().UTC()
}
