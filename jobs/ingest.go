// Package jobs runs the ingestion pipeline: fetch configured feeds, filter
// entries for relevance, deduplicate and persist them, falling back to the
// web scraper for sources whose feed is broken or empty.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aipulse/aipulse/archivist/models"
	"github.com/aipulse/aipulse/composer"
	"github.com/aipulse/aipulse/internal/utils"
	"github.com/aipulse/aipulse/journalist"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// sourceLabels maps short origin codes to human-readable source names.
// Origins without a mapping use the code itself.
var sourceLabels = map[string]string{
	"TC":     "TechCrunch",
	"Wired":  "Wired",
	"AIbase": "AIbase",
}

// articleStore is the slice of the archivist the orchestrator writes to.
type articleStore interface {
	Create(ctx context.Context, a *models.Article) error
	ExistsByURL(ctx context.Context, url string) (bool, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
}

// sourceStore is the slice of the archivist the orchestrator reads from.
type sourceStore interface {
	FindAll(ctx context.Context) ([]*models.FeedSource, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.FeedSource, error)
}

// pageScraper is the fallback path for sources without a usable feed.
type pageScraper interface {
	FindArticles(ctx context.Context, pageURL string) ([]*composer.ExtractedArticle, error)
}

// relevanceClassifier decides whether an article is worth keeping and
// rewrites its content. Implemented by composer.Composer.
type relevanceClassifier interface {
	Classify(ctx context.Context, title, content string) (bool, string)
}

// ingestOptions holds the tunable knobs of a run.
type ingestOptions struct {
	pace      time.Duration // fixed delay before each classifier call
	staleness time.Duration // entries older than this are discarded silently
}

// IngestJob is the ingestion orchestrator. One IngestJob serves the whole
// process; the RunCoordinator guarantees at most one active run.
type IngestJob struct {
	articles    articleStore
	sources     sourceStore
	fetcher     journalist.FeedFetcher
	scraper     pageScraper
	classifier  relevanceClassifier
	coordinator *RunCoordinator
	logger      *slog.Logger
	options     *ingestOptions
}

func NewIngestJob(
	articles articleStore,
	sources sourceStore,
	fetcher journalist.FeedFetcher,
	scraper pageScraper,
	classifier relevanceClassifier,
	coordinator *RunCoordinator,
) *IngestJob {
	return &IngestJob{
		articles:    articles,
		sources:     sources,
		fetcher:     fetcher,
		scraper:     scraper,
		classifier:  classifier,
		coordinator: coordinator,
		logger:      slog.Default(),
		options: &ingestOptions{
			pace:      5 * time.Second,
			staleness: 72 * time.Hour,
		},
	}
}

// Pace sets the fixed delay inserted before each classifier call.
func (job *IngestJob) Pace(d time.Duration) *IngestJob {
	job.options.pace = d
	return job
}

// StalenessWindow sets the age beyond which entries are discarded.
func (job *IngestJob) StalenessWindow(d time.Duration) *IngestJob {
	job.options.staleness = d
	return job
}

// Coordinator exposes the run coordinator for status pollers.
func (job *IngestJob) Coordinator() *RunCoordinator {
	return job.coordinator
}

// TryRun starts an ingestion run on its own goroutine, scoped to the given
// source IDs (nil means every registered source). It returns immediately:
// nil when the run started, ErrRunInProgress when another run holds the
// guard. There is no queueing and no mid-run cancellation.
func (job *IngestJob) TryRun(sourceIDs []uuid.UUID) error {
	if !job.coordinator.TryStart() {
		return ErrRunInProgress
	}

	go job.runAsync(sourceIDs)
	return nil
}

// runAsync drives one run to completion and releases the guard on every
// exit path, panics included.
func (job *IngestJob) runAsync(sourceIDs []uuid.UUID) {
	ctx := context.Background()
	hub := sentry.CurrentHub().Clone()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("ingestion run panicked: %v", r)
			job.logger.Error("[ingest][run]", "error", err)
			utils.CaptureSentryException("IngestJob", hub, err)
			job.coordinator.MarkError()
		}
		hub.Flush(2 * time.Second)
	}()

	if err := job.ingest(ctx, sourceIDs); err != nil {
		job.logger.Error("[ingest][run]", "error", err)
		utils.CaptureSentryException("IngestJob", hub, err)
		job.coordinator.MarkError()
		return
	}

	job.coordinator.MarkCompleted()
}

// ingest processes the selected sources strictly sequentially. Failures are
// contained at the narrowest scope: a bad entry skips the entry, a bad
// source skips the source; only source-list retrieval failures (nothing to
// iterate) escalate to a run-level error.
func (job *IngestJob) ingest(ctx context.Context, sourceIDs []uuid.UUID) error {
	var (
		sources []*models.FeedSource
		err     error
	)
	if len(sourceIDs) > 0 {
		sources, err = job.sources.FindByIDs(ctx, sourceIDs)
	} else {
		sources, err = job.sources.FindAll(ctx)
	}
	if err != nil {
		return err
	}

	job.logger.Info("[ingest] run started", "sources", len(sources))

	for _, src := range sources {
		job.processSource(ctx, src)
	}

	job.logger.Info("[ingest] run finished")
	return nil
}

func (job *IngestJob) processSource(ctx context.Context, src *models.FeedSource) {
	entries, err := job.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		// Malformed, empty and unreachable feeds all take the same road:
		// scrape the page instead of aborting the source.
		job.logger.Info("[ingest] feed unusable, falling back to scraper",
			"source", src.Key, "error", err)
		job.scrapeSource(ctx, src)
		return
	}

	job.logger.Info("[ingest] feed parsed", "source", src.Key, "entries", len(entries))

	for _, entry := range entries {
		job.processEntry(ctx, src, entry)
	}
}

// processEntry runs one feed entry through the pipeline: staleness check,
// dedup, classification, tagging, persist. Every failure here skips the
// entry only.
func (job *IngestJob) processEntry(ctx context.Context, src *models.FeedSource, entry *journalist.Entry) {
	published := journalist.NormalizeDate(entry.Dates)
	if time.Since(published) >= job.options.staleness {
		// Stale entries are discarded silently; not an error.
		return
	}

	dup, err := job.isDuplicate(ctx, entry.Link, entry.Title)
	if err != nil {
		job.logger.Warn("[ingest][dedup]", "source", src.Key, "error", err)
		return
	}
	if dup {
		job.logger.Debug("[ingest] duplicate entry skipped", "title", entry.Title)
		return
	}

	body := entry.PlainText()

	// Fixed pacing between classifier calls; the remote endpoint rate-limits.
	time.Sleep(job.options.pace)

	relevant, content := job.classifier.Classify(ctx, entry.Title, body)
	if !relevant || strings.TrimSpace(content) == "" {
		job.logger.Debug("[ingest] entry not relevant", "title", entry.Title)
		return
	}

	article := &models.Article{
		Title:          entry.Title,
		Content:        content,
		Category:       categoryOrDefault(src.Category, "General"),
		PublishedAt:    published,
		Source:         sourceLabel(src),
		RelatedCompany: relatedCompany(entry.Title + " " + body),
	}
	if entry.Link != "" {
		article.OriginalURL = lo.ToPtr(entry.Link)
	}

	job.saveArticle(ctx, article)
}

// scrapeSource is the fallback path. Extracted candidates go through the
// same dedup and persistence as feed entries; relevance is implicit in the
// extraction prompt. An error aborts this source only, and candidates saved
// before the error stay persisted.
func (job *IngestJob) scrapeSource(ctx context.Context, src *models.FeedSource) {
	found, err := job.scraper.FindArticles(ctx, src.URL)
	if err != nil {
		job.logger.Warn("[ingest][scrape]", "source", src.Key, "error", err)
		return
	}

	job.logger.Info("[ingest] scraper extracted candidates", "source", src.Key, "count", len(found))

	for _, candidate := range found {
		published, err := journalist.ParseTextDate(candidate.PublishedAt)
		if err != nil {
			published = time.Now().UTC()
		}

		dup, err := job.isDuplicate(ctx, candidate.URL, candidate.Title)
		if err != nil {
			job.logger.Warn("[ingest][dedup]", "source", src.Key, "error", err)
			continue
		}
		if dup {
			job.logger.Debug("[ingest] duplicate candidate skipped", "title", candidate.Title)
			continue
		}

		article := &models.Article{
			Title:          candidate.Title,
			Content:        candidate.Summary,
			OriginalURL:    lo.ToPtr(candidate.URL),
			Category:       categoryOrDefault(src.Category, "Web"),
			PublishedAt:    published,
			Source:         sourceLabel(src),
			RelatedCompany: relatedCompany(candidate.Title + " " + candidate.Summary),
		}

		job.saveArticle(ctx, article)
	}
}

// isDuplicate checks the store for an existing article with the same origin
// URL (preferred) or the same title.
func (job *IngestJob) isDuplicate(ctx context.Context, url, title string) (bool, error) {
	if url != "" {
		exists, err := job.articles.ExistsByURL(ctx, url)
		if err != nil || exists {
			return exists, err
		}
	}

	return job.articles.ExistsByTitle(ctx, title)
}

// saveArticle commits one article. A uniqueness violation is an expected
// skip (a racing writer or a pre-check miss); any other store error is
// logged and the entry skipped, the run continues.
func (job *IngestJob) saveArticle(ctx context.Context, article *models.Article) {
	err := job.articles.Create(ctx, article)
	switch {
	case err == nil:
		job.logger.Info("[ingest] article saved", "title", article.Title)
	case errors.Is(err, models.ErrDuplicate):
		job.logger.Debug("[ingest] duplicate article skipped", "title", article.Title)
	default:
		job.logger.Warn("[ingest][save]", "title", article.Title, "error", err)
	}
}

func categoryOrDefault(category, fallback string) string {
	if category == "" {
		return fallback
	}
	return category
}

func sourceLabel(src *models.FeedSource) string {
	if label, ok := sourceLabels[src.Origin]; ok {
		return label
	}
	return src.Origin
}
