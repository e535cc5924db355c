// Package server exposes the HTTP surface named in spec.md §8, grounded
// on the teacher's internal/handlers/api.go (plain map[string]any JSON
// bodies, method checks at the top of each handler) and internal/server's
// ServeMux + manual dispatch idiom.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atscrawl/internal/enrich"
	"github.com/ternarybob/atscrawl/internal/orchestrator"
	"github.com/ternarybob/atscrawl/internal/provider"
	"github.com/ternarybob/atscrawl/internal/storage/sqlite"
)

// Handlers holds every collaborator the HTTP surface calls into.
type Handlers struct {
	orch   *orchestrator.Orchestrator
	store  *sqlite.Store
	enrich *enrich.Engine
	logger arbor.ILogger
}

func NewHandlers(orch *orchestrator.Orchestrator, store *sqlite.Store, enrichEngine *enrich.Engine, logger arbor.ILogger) *Handlers {
	return &Handlers{orch: orch, store: store, enrich: enrichEngine, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func parseProvider(r *http.Request) ([]provider.Provider, bool) {
	q := r.URL.Query().Get("provider")
	if q == "" {
		return nil, true
	}
	p, ok := provider.FromString(q)
	if !ok || p == provider.Lever {
		return nil, false
	}
	return []provider.Provider{p}, true
}

func parseIntParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// CrawlHandler runs one discovery batch: GET /crawl?provider=&pages_per_run=
// A crawl_id parameter is not read; the batch always uses the newest
// archive collection (or the configured fallback).
func (h *Handlers) CrawlHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	providers, ok := parseProvider(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown provider")
		return
	}

	results, err := h.orch.RunBatch(r.Context(), orchestrator.Options{
		Providers:        providers,
		PagesPerProvider: parseIntParam(r, "pages_per_run", 0),
		SkipSync:         true,
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("crawl batch failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// SyncJobsHandler runs one sync batch: GET /sync-jobs?provider=&limit=
// A concurrency parameter is not read; every board in the batch is
// fetched concurrently.
func (h *Handlers) SyncJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	providers, ok := parseProvider(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown provider")
		return
	}

	results, err := h.orch.RunBatch(r.Context(), orchestrator.Options{
		Providers:     providers,
		BoardsPerRun:  parseIntParam(r, "limit", 0),
		SkipDiscovery: true,
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("sync batch failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// ProgressHandler handles GET /progress (optionally ?crawl_id=) and
// DELETE /progress?crawl_id=.
func (h *Handlers) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		crawlID := r.URL.Query().Get("crawl_id")
		if crawlID != "" {
			p, err := h.store.GetProgress(r.Context(), crawlID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			if p == nil {
				writeError(w, http.StatusNotFound, "no cursor for crawl_id")
				return
			}
			writeJSON(w, http.StatusOK, p)
			return
		}
		all, err := h.store.ListProgress(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cursors": all})
	case http.MethodDelete:
		crawlID := r.URL.Query().Get("crawl_id")
		if crawlID == "" {
			writeError(w, http.StatusBadRequest, "crawl_id is required")
			return
		}
		if err := h.store.DeleteProgress(r.Context(), crawlID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// BoardsHandler handles GET /boards?limit=
func (h *Handlers) BoardsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	boards, err := h.store.ListCompanies(r.Context(), parseIntParam(r, "limit", 100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"boards": boards})
}

// StatsHandler handles GET /stats.
func (h *Handlers) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// SearchHandler handles GET /search?q=&top_n= — BM25-style ranked search
// over job postings is out of scope (spec.md §1 Non-goals); this endpoint
// exists so the routing surface is complete, not to implement it.
func (h *Handlers) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusNotImplemented, map[string]string{
		"error":   "not implemented",
		"message": "ranked full-text search is out of scope; use /boards or query the database directly",
	})
}

// EnrichHandler handles GET /enrich?slug= — enriches one company.
func (h *Handlers) EnrichHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}

	info, found, err := h.store.CompanyBoardInfo(r.Context(), slug)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "unknown slug")
		return
	}

	saved, err := h.enrich.EnrichBoards(r.Context(), []enrich.Board{{Token: info.Token, URL: info.URL, Timestamp: info.Timestamp}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"enriched": saved})
}

// EnrichAllHandler handles GET /enrich-all?limit= — enriches the least
// recently enriched companies, oldest first.
func (h *Handlers) EnrichAllHandler(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	boards, err := h.store.CompaniesForEnrichment(r.Context(), parseIntParam(r, "limit", 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	input := make([]enrich.Board, len(boards))
	for i, b := range boards {
		input[i] = enrich.Board{Token: b.Token, URL: b.URL, Timestamp: b.Timestamp}
	}

	saved, err := h.enrich.EnrichBoards(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"enriched": saved, "candidates": len(boards)})
}
