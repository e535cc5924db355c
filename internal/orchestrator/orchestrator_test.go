package orchestrator

import (
	"context"
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
	"github.com/ternarybob/atscrawl/internal/provider"
	"github.com/ternarybob/atscrawl/internal/providerapi"
	"github.com/ternarybob/atscrawl/internal/storage/sqlite"
)

// stubFetcher satisfies Fetcher without touching the network.
type stubFetcher struct {
	resp providerapi.BoardResponse
	err  error
}

func (s stubFetcher) Fetch(ctx context.Context, token string) (providerapi.BoardResponse, error) {
	return s.resp, s.err
}

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dir := t.TempDir()
	cfg := &common.SQLiteConfig{
		Path:          filepath.Join(dir, "test.db"),
		WALMode:       false,
		CacheSizeMB:   8,
		BusyTimeoutMS: 2000,
		Environment:   "development",
	}
	store, err := sqlite.New(arbor.NewLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// fakeArchiveServer serves just enough of the collinfo/CDX-index surface
// for one Ashby page to resolve to a single discovered board.
func fakeArchiveServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/collinfo.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{{"id": "CC-MAIN-2026-04"}})
	})
	mux.HandleFunc("/CC-MAIN-2026-04-index", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("showNumPages") == "true" {
			json.NewEncoder(w).Encode(map[string]int{"pages": 1})
			return
		}
		line, _ := json.Marshal(map[string]string{
			"url":       "https://jobs.ashbyhq.com/acme-co/posting",
			"timestamp": "20260101000000",
			"status":    "200",
		})
		w.Write(line)
	})
	return httptest.NewServer(mux)
}

func TestRunOnceDiscoversOneProvider(t *testing.T) {
	store := setupStore(t)
	archiveServer := fakeArchiveServer(t)
	defer archiveServer.Close()

	archiveClient := archive.NewClient(archiveServer.URL, arbor.NewLogger())
	enrichEngine := enrich.NewEngine(store.DB(), arbor.NewLogger())

	fetchers := map[provider.Provider]Fetcher{
		provider.Ashby: stubFetcher{resp: providerapi.BoardResponse{Tag: provider.Ashby}},
	}
	upserters := map[provider.Provider]normalize.Upserter{
		provider.Ashby: normalize.NewAshbyUpserter(store.DB()),
	}

	cfg := &common.CrawlConfig{PagesPerProvider: 5, BoardsPerProvider: 15, PageErrorBudget: 3}
	orch := New(archiveClient, fetchers, upserters, store, enrichEngine, cfg, "CC-MAIN-2026-04", arbor.NewLogger())

	ctx := context.Background()
	require.NoError(t, orch.RunOnce(ctx))

	var count int
	row := store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM companies WHERE key = ?", "acme-co")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count, "expected the discovered board to be upserted into companies")

	progress, err := store.GetProgress(ctx, provider.Ashby.CrawlID("CC-MAIN-2026-04"))
	require.NoError(t, err)
	require.NotNil(t, progress)
	require.Equal(t, "done", progress.Status, "single-page provider should finish its cursor in one invocation")
}

func TestRunOnceSkipsDiscoveryWhenCursorDone(t *testing.T) {
	store := setupStore(t)
	archiveServer := fakeArchiveServer(t)
	defer archiveServer.Close()

	ctx := context.Background()
	crawlID := provider.Ashby.CrawlID("CC-MAIN-2026-04")
	require.NoError(t, store.SaveProgress(ctx, sqlite.Progress{
		CrawlID: crawlID, TotalPages: 1, CurrentPage: 1, Status: "done",
	}))

	archiveClient := archive.NewClient(archiveServer.URL, arbor.NewLogger())
	enrichEngine := enrich.NewEngine(store.DB(), arbor.NewLogger())
	cfg := &common.CrawlConfig{PagesPerProvider: 5, BoardsPerProvider: 15, PageErrorBudget: 3}

	orch := New(archiveClient, map[provider.Provider]Fetcher{}, map[provider.Provider]normalize.Upserter{},
		store, enrichEngine, cfg, "CC-MAIN-2026-04", arbor.NewLogger())

	require.NoError(t, orch.RunOnce(ctx))

	var count int
	row := store.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM companies")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 0, count, "a done cursor must not trigger new discovery writes")
}
