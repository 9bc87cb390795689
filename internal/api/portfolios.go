package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"resume-folio/internal/db"
	"resume-folio/internal/helper"
	"resume-folio/internal/index"
	"resume-folio/internal/models"
	"resume-folio/internal/profile"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	maxProfileBodySize = 1 << 20
)

// ownedID reads the {id} path parameter and the user_id query parameter,
// writing a 400 when either is unusable.
func ownedID(w http.ResponseWriter, r *http.Request) (id, userID string, ok bool) {
	id = chi.URLParam(r, "id")
	if !helper.IsUUID(id) {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid portfolio id %q", id)
		return "", "", false
	}
	userID, ok = requireUser(w, r)
	return id, userID, ok
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "user_id is required")
		return "", false
	}
	return userID, true
}

func requireStore(w http.ResponseWriter, deps Deps) bool {
	if deps.Store == nil {
		httpError(w, http.StatusServiceUnavailable, "api_error", "portfolio storage is not configured")
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, db.ErrNotFound) {
		httpError(w, http.StatusNotFound, "not_found_error", "portfolio not found")
		return
	}
	hlog.FromRequest(r).Error().Err(err).Msg("portfolio store")
	httpError(w, http.StatusInternalServerError, "api_error", "storage error")
}

func handleListPortfolios(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStore(w, deps) {
			return
		}
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		portfolios, err := deps.Store.ListPortfolios(r.Context(), userID)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": portfolios})
	}
}

func handleGetPortfolio(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStore(w, deps) {
			return
		}
		id, userID, ok := ownedID(w, r)
		if !ok {
			return
		}
		p, err := deps.Store.GetPortfolio(r.Context(), id, userID)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// handleUpdateResumeData saves an edited profile, as the editor does.
func handleUpdateResumeData(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStore(w, deps) {
			return
		}
		id, userID, ok := ownedID(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxProfileBodySize)
		defer r.Body.Close()
		incoming := models.NewParsedProfile()
		if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		updated := profile.Normalize(incoming)

		if err := deps.Store.UpdateResumeData(r.Context(), id, userID, updated); err != nil {
			writeStoreError(w, r, err)
			return
		}
		if deps.Index != nil {
			if p, err := deps.Store.GetPortfolio(r.Context(), id, userID); err == nil {
				indexProfile(r.Context(), deps, p)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "resumeData": updated})
	}
}

func handleDeletePortfolio(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireStore(w, deps) {
			return
		}
		id, userID, ok := ownedID(w, r)
		if !ok {
			return
		}
		if err := deps.Store.DeletePortfolio(r.Context(), id, userID); err != nil {
			writeStoreError(w, r, err)
			return
		}
		if deps.Index != nil {
			if err := deps.Index.Remove(r.Context(), id); err != nil {
				hlog.FromRequest(r).Warn().Err(err).Str("portfolio_id", id).Msg("remove from index")
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSearch(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Index == nil {
			httpError(w, http.StatusServiceUnavailable, "api_error", "search index is not enabled")
			return
		}
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		limit := defaultSearchLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid limit %q", v)
				return
			}
			limit = min(n, maxSearchLimit)
		}

		hits, err := deps.Index.Search(r.Context(), userID, r.URL.Query().Get("q"), limit)
		if errors.Is(err, index.ErrEmptyQuery) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "q is required")
			return
		}
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("search profiles")
			httpError(w, http.StatusInternalServerError, "api_error", "search failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": hits})
	}
}
