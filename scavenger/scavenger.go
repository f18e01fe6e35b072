// Package scavenger scrapes raw web pages when a source's feed is broken or
// empty, delegating structured article extraction to the composer.
package scavenger

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aipulse/aipulse/composer"
)

const (
	// The extraction prompt has an input budget; anything beyond this is cut.
	maxPageChars = 15000

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Scavenger fetches a page with a browser-like identity, strips it to plain
// text and asks the composer to enumerate the articles it contains.
type Scavenger struct {
	composer   *composer.Composer
	httpClient *http.Client
	userAgent  string
}

func NewScavenger(c *composer.Composer, httpClient *http.Client) *Scavenger {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Scavenger{
		composer:   c,
		httpClient: httpClient,
		userAgent:  defaultUserAgent,
	}
}

// FindArticles fetches pageURL and returns the candidate articles extracted
// from it. Any failure aborts this source only; the caller moves on.
func (s *Scavenger) FindArticles(ctx context.Context, pageURL string) ([]*composer.ExtractedArticle, error) {
	pageText, err := s.fetchPageText(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return s.composer.ExtractArticles(ctx, pageText, pageURL)
}

func (s *Scavenger) fetchPageText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("page %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()

	return boundPageText(doc.Text()), nil
}

// boundPageText collapses runs of whitespace into single separators and cuts
// the result to the extraction prompt's input budget.
func boundPageText(raw string) string {
	lines := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' })

	var sb strings.Builder
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}

	text := sb.String()
	if runes := []rune(text); len(runes) > maxPageChars {
		return string(runes[:maxPageChars])
	}

	return text
}
