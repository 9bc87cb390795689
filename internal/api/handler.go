package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"resume-folio/internal/db"
	"resume-folio/internal/index"
	"resume-folio/internal/models"
)

const defaultMaxUploadBytes = 5 << 20

// Parser turns an uploaded document into a profile.
type Parser interface {
	Parse(ctx context.Context, doc models.RawDocument) (*models.ParseResult, error)
}

// PortfolioStore persists portfolios scoped to their owner.
type PortfolioStore interface {
	CreatePortfolio(ctx context.Context, p *db.Portfolio) error
	GetPortfolio(ctx context.Context, id, userID string) (*db.Portfolio, error)
	ListPortfolios(ctx context.Context, userID string) ([]db.Portfolio, error)
	UpdateResumeData(ctx context.Context, id, userID string, profile models.ParsedProfile) error
	DeletePortfolio(ctx context.Context, id, userID string) error
}

// ProfileIndex is the similarity index saved profiles are added to.
type ProfileIndex interface {
	Add(ctx context.Context, portfolioID, userID, name string, profile models.ParsedProfile) error
	Remove(ctx context.Context, portfolioID string) error
	Search(ctx context.Context, userID, query string, n int) ([]index.Hit, error)
}

// Deps wires the handler. Store and Index are optional: without a store every
// upload is a dry run, and without an index search is unavailable.
type Deps struct {
	Parser         Parser
	Store          PortfolioStore
	Index          ProfileIndex
	Logger         zerolog.Logger
	MaxUploadBytes int64
}

func NewHandler(deps Deps) http.Handler {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = defaultMaxUploadBytes
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(deps.Logger))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))

	r.Get("/health", handleHealth)
	r.Post("/resumes", handleUpload(deps))
	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", handleListPortfolios(deps))
		r.Get("/search", handleSearch(deps))
		r.Get("/{id}", handleGetPortfolio(deps))
		r.Put("/{id}/resume-data", handleUpdateResumeData(deps))
		r.Delete("/{id}", handleDeletePortfolio(deps))
	})
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
