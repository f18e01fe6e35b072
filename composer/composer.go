// Package composer talks to a remote generative endpoint to classify single
// articles for AI relevance and to extract article lists from raw web pages.
package composer

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/aipulse/aipulse/pkg/errlvl"
)

const (
	// Remote generation is slow; a single attempt with a generous budget.
	classifyTimeout = 90 * time.Second
	extractTimeout  = 180 * time.Second
)

// Composer wraps a GenAiClient with the prompt catalog and response parsing.
// A nil client puts the Composer in bypass mode: every article is treated as
// relevant and content passes through unchanged.
type Composer struct {
	client  GenAiClient
	prompts *PromptConfig
	logger  *slog.Logger
}

func NewComposer(client GenAiClient) *Composer {
	return &Composer{
		client:  client,
		prompts: DefaultPromptConfig(),
		logger:  slog.Default(),
	}
}

// ExtractedArticle is one candidate article found on a scraped page.
type ExtractedArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Summary     string `json:"summary"`
	PublishedAt string `json:"published_at"` // ISO 8601 or empty
}

type classifyResponse struct {
	IsAiRelated      bool   `json:"is_ai_related"`
	RewrittenContent string `json:"rewritten_content"`
}

type extractResponse struct {
	Articles []*ExtractedArticle `json:"articles"`
}

// Classify asks the model whether the article is AI-related and, if so, for a
// rewritten summary. It never fails: on any error (network, non-JSON payload,
// missing credential handled as bypass) it falls back to (true, content), so
// a classifier outage populates unfiltered articles instead of dropping them.
func (c *Composer) Classify(ctx context.Context, title, content string) (bool, string) {
	if c.client == nil {
		return true, content
	}

	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	raw, err := c.client.GenerateText(ctx, c.prompts.ClassifyPrompt(title, content))
	if err != nil {
		c.logger.Warn("[composer][Classify] falling back to original content", "error", err)
		return true, content
	}

	var parsed classifyResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		c.logger.Warn("[composer][Classify] non-JSON model response, falling back", "error", err)
		return true, content
	}

	if !parsed.IsAiRelated {
		return false, ""
	}

	return true, parsed.RewrittenContent
}

// ExtractArticles asks the model to enumerate the articles found in the raw
// text of a page. Relevance filtering is implicit in the prompt; there is no
// secondary classification pass for extracted candidates.
func (c *Composer) ExtractArticles(ctx context.Context, pageText, baseURL string) ([]*ExtractedArticle, error) {
	if c.client == nil {
		return nil, errNoClient
	}

	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	raw, err := c.client.GenerateText(ctx, c.prompts.ExtractPrompt(baseURL, pageText))
	if err != nil {
		return nil, newError(errlvl.WARN, errGeneration, err)
	}

	var parsed extractResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, newError(errlvl.WARN, errBadJSON, err)
	}

	// Drop candidates the model returned half-filled.
	articles := make([]*ExtractedArticle, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.URL) == "" {
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}
