package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aipulse/aipulse/archivist/models"
	"github.com/aipulse/aipulse/composer"
	"github.com/aipulse/aipulse/journalist"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

type fakeArticleStore struct {
	mu       sync.Mutex
	saved    []*models.Article
	createErr error
}

func (s *fakeArticleStore) Create(_ context.Context, a *models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.saved {
		if existing.Title == a.Title ||
			(existing.OriginalURL != nil && a.OriginalURL != nil && *existing.OriginalURL == *a.OriginalURL) {
			return models.ErrDuplicate
		}
	}
	s.saved = append(s.saved, a)
	return nil
}

func (s *fakeArticleStore) ExistsByURL(_ context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.saved {
		if a.OriginalURL != nil && *a.OriginalURL == url {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeArticleStore) ExistsByTitle(_ context.Context, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.saved {
		if a.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeArticleStore) articles() []*models.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Article(nil), s.saved...)
}

type fakeSourceStore struct {
	sources []*models.FeedSource
	err     error
}

func (s *fakeSourceStore) FindAll(context.Context) ([]*models.FeedSource, error) {
	return s.sources, s.err
}

func (s *fakeSourceStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*models.FeedSource, error) {
	if s.err != nil {
		return nil, s.err
	}
	return lo.Filter(s.sources, func(src *models.FeedSource, _ int) bool {
		return lo.Contains(ids, src.ID)
	}), nil
}

type fakeFetcher struct {
	entries map[string][]*journalist.Entry // keyed by URL
	err     error
	block   chan struct{} // when set, Fetch waits until the channel closes
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]*journalist.Entry, error) {
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[url], nil
}

type fakeScraper struct {
	mu       sync.Mutex
	calls    []string
	articles []*composer.ExtractedArticle
	err      error
}

func (s *fakeScraper) FindArticles(_ context.Context, pageURL string) ([]*composer.ExtractedArticle, error) {
	s.mu.Lock()
	s.calls = append(s.calls, pageURL)
	s.mu.Unlock()
	return s.articles, s.err
}

type fakeClassifier struct {
	relevant bool
	rewrite  string // when empty, passes the content through
}

func (c *fakeClassifier) Classify(_ context.Context, _, content string) (bool, string) {
	if !c.relevant {
		return false, ""
	}
	if c.rewrite != "" {
		return true, c.rewrite
	}
	return true, content
}

func testSource(key, url string) *models.FeedSource {
	origin, category := models.ParseKey(key)
	return &models.FeedSource{ID: uuid.New(), Key: key, URL: url, Origin: origin, Category: category}
}

func freshEntry(title, link string) *journalist.Entry {
	published := time.Now().UTC().Add(-time.Hour)
	return &journalist.Entry{
		Title:   title,
		Link:    link,
		Summary: "<p>Some AI summary</p>",
		Dates:   journalist.EntryDates{PublishedParsed: &published},
	}
}

func newTestJob(articles *fakeArticleStore, sources *fakeSourceStore, fetcher *fakeFetcher, scraper *fakeScraper, classifier *fakeClassifier) *IngestJob {
	return NewIngestJob(articles, sources, fetcher, scraper, classifier, NewRunCoordinator()).Pace(0)
}

func TestIngestJob_persistsRelevantEntries(t *testing.T) {
	src := testSource("TC-AI", "https://feeds.example.com/tc")
	articles := &fakeArticleStore{}
	job := newTestJob(
		articles,
		&fakeSourceStore{sources: []*models.FeedSource{src}},
		&fakeFetcher{entries: map[string][]*journalist.Entry{
			src.URL: {freshEntry("OpenAI news", "https://example.com/1"), freshEntry("Google news", "https://example.com/2")},
		}},
		&fakeScraper{},
		&fakeClassifier{relevant: true, rewrite: "rewritten"},
	)

	if err := job.ingest(context.Background(), nil); err != nil {
		t.Fatalf("ingest() error = %v", err)
	}

	saved := articles.articles()
	if len(saved) != 2 {
		t.Fatalf("ingest() saved %d articles, want 2", len(saved))
	}
	a := saved[0]
	if a.Content != "rewritten" || a.Category != "AI" || a.Source != "TechCrunch" {
		t.Errorf("ingest() article = %+v", a)
	}
	if a.RelatedCompany != "OpenAI" {
		t.Errorf("ingest() related company = %q, want OpenAI", a.RelatedCompany)
	}
}

func TestIngestJob_staleEntriesAreDiscarded(t *testing.T) {
	src := testSource("TC-AI", "https://feeds.example.com/tc")
	old := time.Now().UTC().Add(-10 * 24 * time.Hour)
	entry := &journalist.Entry{
		Title: "Ancient news",
		Link:  "https://example.com/old",
		Dates: journalist.EntryDates{PublishedParsed: &old},
	}

	articles := &fakeArticleStore{}
	job := newTestJob(
		articles,
		&fakeSourceStore{sources: []*models.FeedSource{src}},
		&fakeFetcher{entries: map[string][]*journalist.Entry{src.URL: {entry}}},
		&fakeScraper{},
		&fakeClassifier{relevant: true},
	)

	if err := job.ingest(context.Background(), nil); err != nil {
		t.Fatalf("ingest() error = %v", err)
	}
	if len(articles.articles()) != 0 {
		t.Error("ingest() persisted a stale entry")
	}
}

func TestIngestJob_idempotentAcrossRuns(t *testing.T) {
	src := testSource("TC-AI", "https://feeds.example.com/tc")
	articles := &fakeArticleStore{}
	job := newTestJob(
		articles,
		&fakeSourceStore{sources: []*models.FeedSource{src}},
		&fakeFetcher{entries: map[string][]*journalist.Entry{
			src.URL: {freshEntry("Same story", "https://example.com/same")},
		}},
		&fakeScraper{},
		&fakeClassifier{relevant: true},
	)

	for i := 0; i < 2; i++ {
		if err := job.ingest(context.Background(), nil); err != nil {
			t.Fatalf("ingest() run %d error = %v", i, err)
		}
	}

	if got := len(articles.articles()); got != 1 {
		t.Errorf("ingest() persisted %d articles across two runs, want 1", got)
	}
}

func TestIngestJob_skipsIrrelevantEntries(t *testing.T) {
	src := testSource("TC-AI", "https://feeds.example.com/tc")
	articles := &fakeArticleStore{}
	job := newTestJob(
		articles,
		&fakeSourceStore{sources: []*models.FeedSource{src}},
		&fakeFetcher{entries: map[string][]*journalist.Entry{
			src.URL: {freshEntry("Cooking tips", "https://example.com/food")},
		}},
		&fakeScraper{},
		&fakeClassifier{relevant: false},
	)

	if err := job.ingest(context.Background(), nil); err != nil {
		t.Fatalf("ingest() error = %v", err)
	}
	if len(articles.articles()) != 0 {
		t.Error("ingest() persisted an irrelevant entry")
	}
}

func TestIngestJob_fallsBackToScraper(t *testing.T) {
	src := testSource("AIbase", "https://www.example.com/news")
	articles := &fakeArticleStore{}
	scraper := &fakeScraper{articles: []*composer.ExtractedArticle{
		{Title: "Scraped story", URL: "https://www.example.com/story", Summary: "An AI thing happened", PublishedAt: "2024-03-15T00:00:00Z"},
	}}
	job := newTestJob(
		articles,
		&fakeSourceStore{sources: []*models.FeedSource{src}},
		&fakeFetcher{err: errors.New("malformed document")},
		scraper,
		&fakeClassifier{relevant: true},
	)

	if err := job.ingest(context.Background(), nil); err != nil {
		t.Fatalf("ingest() error = %v", err)
	}

	if len(scraper.calls) != 1 || scraper.calls[0] != src.URL {
		t.Fatalf("scraper calls = %v, want [%s]", scraper.calls, src.URL)
	}

	saved := articles.articles()
	if len(saved) != 1 {
		t.Fatalf("ingest() saved %d articles, want 1", len(saved))
	}
	if saved[0].Category != "Web" {
		t.Errorf("scraped article category = %q, want Web (no key suffix)", saved[0].Category)
	}
	if saved[0].Source != "AIbase" {
		t.Errorf("scraped article source = %q, want AIbase", saved[0].Source)
	}
}

func TestIngestJob_duplicateInsertIsNotAnError(t *testing.T) {
	src := testSource("TC-AI", "https://feeds.example.com/tc")
	articles := &fakeArticleStore{createErr: models.ErrDuplicate}
	job := newTestJob(
		articles,
		&fakeSourceStore{sources: []*models.FeedSource{src}},
		&fakeFetcher{entries: map[string][]*journalist.Entry{
			src.URL: {freshEntry("Raced story", "https://example.com/raced")},
		}},
		&fakeScraper{},
		&fakeClassifier{relevant: true},
	)

	if err := job.ingest(context.Background(), nil); err != nil {
		t.Errorf("ingest() error = %v, want nil (duplicate is an expected skip)", err)
	}
}

func TestIngestJob_TryRun_rejectsConcurrentRuns(t *testing.T) {
	src := testSource("TC-AI", "https://feeds.example.com/tc")
	release := make(chan struct{})
	fetcher := &fakeFetcher{
		entries: map[string][]*journalist.Entry{src.URL: nil},
		err:     errors.New("empty feed"),
		block:   release,
	}
	job := newTestJob(
		&fakeArticleStore{},
		&fakeSourceStore{sources: []*models.FeedSource{src}},
		fetcher,
		&fakeScraper{err: errors.New("page unreachable")},
		&fakeClassifier{relevant: true},
	)

	if err := job.TryRun(nil); err != nil {
		t.Fatalf("TryRun() first call error = %v", err)
	}
	if err := job.TryRun(nil); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("TryRun() second call error = %v, want ErrRunInProgress", err)
	}

	close(release)
	assert.Eventually(t, func() bool {
		return job.Coordinator().PeekAndReset() == StateCompleted
	}, 2*time.Second, 10*time.Millisecond, "run should complete after the fetcher unblocks")
}

func TestIngestJob_runLevelFailureMarksError(t *testing.T) {
	job := newTestJob(
		&fakeArticleStore{},
		&fakeSourceStore{err: errors.New("db gone")},
		&fakeFetcher{},
		&fakeScraper{},
		&fakeClassifier{relevant: true},
	)

	if err := job.TryRun(nil); err != nil {
		t.Fatalf("TryRun() error = %v", err)
	}

	assert.Eventually(t, func() bool {
		return job.Coordinator().PeekAndReset() == StateError
	}, 2*time.Second, 10*time.Millisecond, "run should end in the error state")
}

func TestIngestJob_scopedRunOnlyTouchesSelectedSources(t *testing.T) {
	selected := testSource("TC-AI", "https://feeds.example.com/tc")
	other := testSource("Theverge", "https://feeds.example.com/verge")
	articles := &fakeArticleStore{}
	job := newTestJob(
		articles,
		&fakeSourceStore{sources: []*models.FeedSource{selected, other}},
		&fakeFetcher{entries: map[string][]*journalist.Entry{
			selected.URL: {freshEntry("Selected story", "https://example.com/sel")},
			other.URL:    {freshEntry("Other story", "https://example.com/other")},
		}},
		&fakeScraper{},
		&fakeClassifier{relevant: true},
	)

	if err := job.ingest(context.Background(), []uuid.UUID{selected.ID}); err != nil {
		t.Fatalf("ingest() error = %v", err)
	}

	saved := articles.articles()
	if len(saved) != 1 || saved[0].Title != "Selected story" {
		t.Errorf("ingest() saved = %+v, want only the selected source's story", saved)
	}
}
