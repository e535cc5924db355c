package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atscrawl/internal/archive"
	"github.com/ternarybob/atscrawl/internal/common"
	"github.com/ternarybob/atscrawl/internal/enrich"
	"github.com/ternarybob/atscrawl/internal/normalize"
	"github.com/ternarybob/atscrawl/internal/orchestrator"
	"github.com/ternarybob/atscrawl/internal/provider"
	"github.com/ternarybob/atscrawl/internal/storage/sqlite"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	dir := t.TempDir()
	store, err := sqlite.New(arbor.NewLogger(), &common.SQLiteConfig{
		Path: filepath.Join(dir, "test.db"), WALMode: false, CacheSizeMB: 8, BusyTimeoutMS: 2000, Environment: "development",
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	enrichEngine := enrich.NewEngine(store.DB(), arbor.NewLogger())
	archiveClient := archive.NewClient("http://127.0.0.1:0", arbor.NewLogger())
	cfg := &common.CrawlConfig{PagesPerProvider: 5, BoardsPerProvider: 15, PageErrorBudget: 3}
	orch := orchestrator.New(archiveClient, map[provider.Provider]orchestrator.Fetcher{},
		map[provider.Provider]normalize.Upserter{}, store, enrichEngine, cfg, "CC-MAIN-2026-04", arbor.NewLogger())

	return NewHandlers(orch, store, enrichEngine, arbor.NewLogger())
}

func TestStatsHandlerEmptyDatabase(t *testing.T) {
	h := newTestHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	h.StatsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats sqlite.Stats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	require.Equal(t, 0, stats.TotalCompanies)
	require.Equal(t, 0, stats.TotalJobs)
}

func TestSearchHandlerReturnsNotImplemented(t *testing.T) {
	h := newTestHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/search?q=engineer", nil)
	rec := httptest.NewRecorder()

	h.SearchHandler(rec, req)

	require.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestProgressHandlerDeleteRequiresCrawlID(t *testing.T) {
	h := newTestHandlers(t)
	req := httptest.NewRequest(http.MethodDelete, "/progress", nil)
	rec := httptest.NewRecorder()

	h.ProgressHandler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnrichHandlerUnknownSlugIs404(t *testing.T) {
	h := newTestHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/enrich?slug=does-not-exist", nil)
	rec := httptest.NewRecorder()

	h.EnrichHandler(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBoardsHandlerWiresUpStore(t *testing.T) {
	h := newTestHandlers(t)
	ctx := httptest.NewRequest(http.MethodGet, "/boards", nil).Context()
	_, err := h.store.UpsertBoards(ctx, []archive.DiscoveredBoard{
		{Token: "acme-co", URL: "https://jobs.ashbyhq.com/acme-co", Timestamp: "20260101000000", Provider: provider.Ashby},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/boards", nil)
	rec := httptest.NewRecorder()
	h.BoardsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]sqlite.CompanySummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body["boards"], 1)
	require.Equal(t, "acme-co", body["boards"][0].Key)
}
