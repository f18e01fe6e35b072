// Package server exposes the HTTP interface: article queries, feed source
// administration and ingestion run control.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aipulse/aipulse/archivist/models"
	"github.com/aipulse/aipulse/jobs"
)

// ArticleStore is the slice of the archivist the API reads and prunes.
type ArticleStore interface {
	FindAll(ctx context.Context, f models.ArticleFilter) ([]*models.Article, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SourceStore manages the configured feed sources.
type SourceStore interface {
	FindAll(ctx context.Context) ([]*models.FeedSource, error)
	Create(ctx context.Context, s *models.FeedSource) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// IngestTrigger starts an ingestion run. Implemented by jobs.IngestJob.
type IngestTrigger interface {
	TryRun(sourceIDs []uuid.UUID) error
}

// StatusReader reports the state of the latest run. Terminal states reset
// to idle once read.
type StatusReader interface {
	PeekAndReset() jobs.RunState
}

// Server wires HTTP handlers to the stores and the ingestion job.
type Server struct {
	router   chi.Router
	articles ArticleStore
	sources  SourceStore
	ingest   IngestTrigger
	status   StatusReader
	logger   *slog.Logger
}

func NewServer(articles ArticleStore, sources SourceStore, ingest IngestTrigger, status StatusReader) *Server {
	s := &Server{
		articles: articles,
		sources:  sources,
		ingest:   ingest,
		status:   status,
		logger:   slog.Default(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", s.listArticles)
			r.Delete("/{id}", s.deleteArticle)
		})
		r.Route("/sources", func(r chi.Router) {
			r.Get("/", s.listSources)
			r.Post("/", s.createSource)
			r.Delete("/{id}", s.deleteSource)
		})
		r.Route("/fetch-news", func(r chi.Router) {
			r.Post("/", s.startIngestion)
			r.Get("/status", s.ingestionStatus)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	filter, err := parseArticleFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	articles, err := s.articles.FindAll(r.Context(), filter)
	if err != nil {
		s.logger.Error("[server] article lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch articles")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"articles": articles, "count": len(articles)})
}

func (s *Server) deleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	switch err := s.articles.Delete(r.Context(), id); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "article not found")
	default:
		s.logger.Error("[server] article deletion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete article")
	}
}

func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.sources.FindAll(r.Context())
	if err != nil {
		s.logger.Error("[server] source lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch sources")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sources": sources, "count": len(sources)})
}

type createSourceRequest struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (s *Server) createSource(w http.ResponseWriter, r *http.Request) {
	var req createSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Key) == "" || strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "key and url are required")
		return
	}

	origin, category := models.ParseKey(req.Key)
	src := &models.FeedSource{
		Key:      req.Key,
		URL:      req.URL,
		Origin:   origin,
		Category: category,
	}

	switch err := s.sources.Create(r.Context(), src); {
	case err == nil:
		writeJSON(w, http.StatusCreated, src)
	case errors.Is(err, models.ErrDuplicate):
		writeError(w, http.StatusConflict, "a source with this key or url already exists")
	default:
		s.logger.Error("[server] source creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create source")
	}
}

func (s *Server) deleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid source id")
		return
	}

	switch err := s.sources.Delete(r.Context(), id); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "source not found")
	default:
		s.logger.Error("[server] source deletion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete source")
	}
}

type startIngestionRequest struct {
	SourceIDs []string `json:"source_ids"`
}

func (s *Server) startIngestion(w http.ResponseWriter, r *http.Request) {
	var req startIngestionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	ids := make([]uuid.UUID, 0, len(req.SourceIDs))
	for _, raw := range req.SourceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid source id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	switch err := s.ingest.TryRun(ids); {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": jobs.StateRunning.String()})
	case errors.Is(err, jobs.ErrRunInProgress):
		writeError(w, http.StatusTooManyRequests, err.Error())
	default:
		s.logger.Error("[server] ingestion start failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start ingestion")
	}
}

func (s *Server) ingestionStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": s.status.PeekAndReset().String()})
}

// parseArticleFilter maps query parameters onto the store filter. Dates are
// RFC 3339 or plain "2006-01-02".
func parseArticleFilter(r *http.Request) (models.ArticleFilter, error) {
	q := r.URL.Query()
	filter := models.ArticleFilter{
		Company: q.Get("company"),
		Source:  q.Get("source"),
	}

	if raw := q.Get("from"); raw != "" {
		t, err := parseQueryDate(raw)
		if err != nil {
			return filter, errors.New("invalid 'from' date")
		}
		filter.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := parseQueryDate(raw)
		if err != nil {
			return filter, errors.New("invalid 'to' date")
		}
		filter.To = &t
	}
	if raw := q.Get("today"); raw == "true" || raw == "1" {
		filter.TodayOnly = true
	}

	return filter, nil
}

func parseQueryDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("[server] request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("[server] write JSON failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
