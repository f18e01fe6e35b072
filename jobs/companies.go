package jobs

import "strings"

// knownCompanies is the fixed, ordered list of entities the tagger can
// attach to an article. First match in list order wins.
var knownCompanies = []string{
	"Google",
	"OpenAI",
	"Meta",
	"Anthropic",
	"XAI",
	"Microsoft",
	"Apple",
	"Amazon",
	"NVIDIA",
	"Tesla",
}

// relatedCompany returns the first known company mentioned in text as a
// whole word, or "" when none matches. Both sides are padded with spaces so
// that "snapple" never matches "Apple".
func relatedCompany(text string) string {
	haystack := " " + strings.ToLower(text) + " "
	for _, company := range knownCompanies {
		if strings.Contains(haystack, " "+strings.ToLower(company)+" ") {
			return company
		}
	}
	return ""
}
