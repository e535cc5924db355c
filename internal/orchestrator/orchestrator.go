// Package orchestrator implements the Batch Orchestrator (C10), the core
// of the system: one RunOnce invocation drives cursor-bounded discovery and
// sync across every provider, grounded structurally on the teacher's
// internal/services/crawler/service.go dependency-injected Service shape
// (many injected collaborators, one RunOnce-shaped entry point).
package orchestrator

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atscrawl/internal/archive"
	"github.com/ternarybob/atscrawl/internal/common"
	"github.com/ternarybob/atscrawl/internal/concurrent"
	"github.com/ternarybob/atscrawl/internal/enrich"
	"github.com/ternarybob/atscrawl/internal/normalize"
	"github.com/ternarybob/atscrawl/internal/provider"
	"github.com/ternarybob/atscrawl/internal/providerapi"
	"github.com/ternarybob/atscrawl/internal/storage/sqlite"
)

// Fetcher is satisfied by every providerapi.*Client; the orchestrator only
// ever needs the one Fetch(ctx, token) method each exposes.
type Fetcher interface {
	Fetch(ctx context.Context, token string) (providerapi.BoardResponse, error)
}

// Orchestrator wires every component into the six-step batch algorithm.
type Orchestrator struct {
	archiveClient *archive.Client
	fetchers      map[provider.Provider]Fetcher
	upserters     map[provider.Provider]normalize.Upserter
	store         *sqlite.Store
	enrichEngine  *enrich.Engine
	cfg           *common.CrawlConfig
	fallbackColl  string
	logger        arbor.ILogger
}

// New builds an Orchestrator. fetchers/upserters are expected to carry
// entries for every provider in provider.All() plus Lever, since Lever is
// a BoardResponse/Upserter variant the Normaliser and Provider API Clients
// support even though it is not part of the three-variant Provider
// Registry that drives discovery (see internal/provider's doc comment).
func New(
	archiveClient *archive.Client,
	fetchers map[provider.Provider]Fetcher,
	upserters map[provider.Provider]normalize.Upserter,
	store *sqlite.Store,
	enrichEngine *enrich.Engine,
	cfg *common.CrawlConfig,
	fallbackCollection string,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		archiveClient: archiveClient,
		fetchers:      fetchers,
		upserters:     upserters,
		store:         store,
		enrichEngine:  enrichEngine,
		cfg:           cfg,
		fallbackColl:  fallbackCollection,
		logger:        logger,
	}
}

// providerState is the per-provider working set threaded through the six
// steps of one invocation.
type providerState struct {
	provider      provider.Provider
	crawlID       string
	progress      *sqlite.Progress
	runDiscovery  bool
	endPage       int
	discovered    []archive.DiscoveredBoard
	pageErrors    int
	highestFailed int
	syncTokens    []string
	syncResults   map[string]providerapi.BoardResponse
}

// Options scopes one RunBatch invocation, letting the HTTP surface's
// GET /crawl and GET /sync-jobs drive the same six-step algorithm while
// running only the discovery or only the sync half of it.
type Options struct {
	Providers        []provider.Provider // nil/empty means every registry provider
	PagesPerProvider int                 // 0 means use the configured default
	BoardsPerRun     int                 // 0 means use the configured default
	SkipDiscovery    bool
	SkipSync         bool
}

// ProviderResult summarises one provider's outcome for callers (notably
// the HTTP handlers) that need to report what a batch actually did.
type ProviderResult struct {
	Provider        string
	CursorStatus    string
	CurrentPage     int
	TotalPages      int
	BoardsFound     int
	BoardsDiscovered int
	JobsSynced      int
}

// RunOnce performs one bounded batch across every registry provider, both
// discovery and sync. It is the entry point the scheduler drives.
func (o *Orchestrator) RunOnce(ctx context.Context) error {
	_, err := o.RunBatch(ctx, Options{})
	return err
}

// RunBatch implements spec.md §4.10's six-step algorithm, scoped by opts.
func (o *Orchestrator) RunBatch(ctx context.Context, opts Options) ([]ProviderResult, error) {
	runID := uuid.NewString()
	log := o.logger.Info().Str("run_id", runID)
	log.Msg("starting batch")

	o.drainRetryQueue(ctx)

	providers := opts.Providers
	if len(providers) == 0 {
		providers = provider.All()
	}
	pagesPerProvider := opts.PagesPerProvider
	if pagesPerProvider <= 0 {
		pagesPerProvider = o.cfg.PagesPerProvider
	}
	boardsPerRun := opts.BoardsPerRun
	if boardsPerRun <= 0 {
		boardsPerRun = o.cfg.BoardsPerProvider
	}

	// Step 1 — parallel reads: newest collection, plus each provider's
	// unsynced-boards queue.
	states := make([]*providerState, len(providers))
	for i, p := range providers {
		states[i] = &providerState{provider: p}
	}

	var latestCollection string
	var wg sync.WaitGroup
	wg.Add(1 + len(providers))

	go func() {
		defer wg.Done()
		collections, err := o.archiveClient.ListCollections(ctx)
		if err != nil || len(collections) == 0 {
			o.logger.Warn().Err(err).Msg("falling back to configured collection")
			latestCollection = o.fallbackColl
			return
		}
		latestCollection = collections[0]
	}()

	for _, st := range states {
		st := st
		go func() {
			defer wg.Done()
			if opts.SkipSync {
				return
			}
			keys, err := o.store.UnsyncedCompanyKeys(ctx, st.provider, boardsPerRun)
			if err != nil {
				o.logger.Warn().Err(err).Str("provider", st.provider.String()).Msg("failed to read sync queue")
				return
			}
			st.syncTokens = keys
		}()
	}
	wg.Wait()

	// Step 2 — cursor resolution, per provider.
	for _, st := range states {
		if opts.SkipDiscovery {
			continue
		}
		st.crawlID = st.provider.CrawlID(latestCollection)
		progress, err := o.store.GetProgress(ctx, st.crawlID)
		if err != nil {
			o.logger.Warn().Err(err).Str("crawl_id", st.crawlID).Msg("failed to load cursor")
			continue
		}

		if progress == nil {
			total, err := o.archiveClient.GetNumPages(ctx, latestCollection, st.provider)
			if err != nil {
				o.logger.Warn().Err(err).Str("provider", st.provider.String()).Msg("failed to get page count")
				continue
			}
			progress = &sqlite.Progress{CrawlID: st.crawlID, TotalPages: total, CurrentPage: 0, Status: "pending"}
		}
		st.progress = progress

		if progress.Status == "done" {
			continue
		}

		end := progress.CurrentPage + pagesPerProvider
		if end > progress.TotalPages {
			end = progress.TotalPages
		}
		st.endPage = end
		st.runDiscovery = true

		if err := o.store.SaveProgress(ctx, sqlite.Progress{
			CrawlID: st.crawlID, TotalPages: progress.TotalPages, CurrentPage: progress.CurrentPage,
			Status: "running", BoardsFound: progress.BoardsFound,
		}); err != nil {
			o.logger.Warn().Err(err).Str("crawl_id", st.crawlID).Msg("failed to mark cursor running")
		}
	}

	// Step 3 — parallel HTTP fan-out: CDX pages and board-API fetches for
	// every provider run concurrently with each other.
	var fanOut sync.WaitGroup
	for _, st := range states {
		st := st
		fanOut.Add(1)
		go func() {
			defer fanOut.Done()
			o.fetchDiscoveryPages(ctx, latestCollection, st)
		}()
		fanOut.Add(1)
		go func() {
			defer fanOut.Done()
			o.fetchSyncBoards(ctx, st)
		}()
	}
	fanOut.Wait()

	// Step 4 — in-memory reduction already folded into fetchDiscoveryPages
	// (page results are collected in index order and reduced there).

	// Step 5 — parallel disjoint writes, one per provider, each provider's
	// two write streams (discovery commit, sync commit) also concurrent.
	var writes sync.WaitGroup
	for _, st := range states {
		st := st
		writes.Add(2)
		go func() {
			defer writes.Done()
			o.commitDiscovery(ctx, st)
		}()
		go func() {
			defer writes.Done()
			o.commitSync(ctx, st)
		}()
	}
	writes.Wait()

	// Step 6 — cursor advance.
	for _, st := range states {
		o.advanceCursor(ctx, st)
	}

	results := make([]ProviderResult, len(states))
	for i, st := range states {
		r := ProviderResult{Provider: st.provider.String(), JobsSynced: len(st.syncResults), BoardsDiscovered: len(st.discovered)}
		if st.progress != nil {
			r.CursorStatus = st.progress.Status
			r.CurrentPage = st.progress.CurrentPage
			r.TotalPages = st.progress.TotalPages
			r.BoardsFound = st.progress.BoardsFound
		}
		results[i] = r
	}

	log.Msg("batch complete")
	return results, nil
}

func (o *Orchestrator) fetchDiscoveryPages(ctx context.Context, collection string, st *providerState) {
	if !st.runDiscovery {
		return
	}

	pages := make([]int, 0, st.endPage-st.progress.CurrentPage)
	for page := st.progress.CurrentPage; page < st.endPage; page++ {
		pages = append(pages, page)
	}
	if len(pages) == 0 {
		return
	}

	tasks := make([]concurrent.Task[[]archive.DiscoveredBoard], len(pages))
	for i, page := range pages {
		page := page
		tasks[i] = func(ctx context.Context) ([]archive.DiscoveredBoard, error) {
			return o.archiveClient.FetchCdxPage(ctx, collection, page, st.provider)
		}
	}

	results := concurrent.RunAll(ctx, len(tasks), tasks)

	// Deterministic downstream behaviour: results are already in page
	// order courtesy of RunAll's index-preserving output.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	byToken := make(map[string]archive.DiscoveredBoard)
	for i, r := range results {
		if r.Err != nil {
			st.pageErrors++
			failedPage := pages[i]
			if failedPage > st.highestFailed {
				st.highestFailed = failedPage
			}
			continue
		}
		for _, b := range r.Value {
			existing, seen := byToken[b.Token]
			if !seen || b.Timestamp > existing.Timestamp {
				byToken[b.Token] = b
			}
		}
	}

	discovered := make([]archive.DiscoveredBoard, 0, len(byToken))
	for _, b := range byToken {
		discovered = append(discovered, b)
	}
	st.discovered = discovered
}

func (o *Orchestrator) fetchSyncBoards(ctx context.Context, st *providerState) {
	if len(st.syncTokens) == 0 {
		return
	}
	fetcher, ok := o.fetchers[st.provider]
	if !ok {
		return
	}

	tasks := make([]concurrent.Task[providerapi.BoardResponse], len(st.syncTokens))
	for i, token := range st.syncTokens {
		token := token
		tasks[i] = func(ctx context.Context) (providerapi.BoardResponse, error) {
			return fetcher.Fetch(ctx, token)
		}
	}
	results := concurrent.RunAll(ctx, len(tasks), tasks)

	st.syncResults = make(map[string]providerapi.BoardResponse, len(results))
	for i, r := range results {
		token := st.syncTokens[i]
		if r.Err != nil {
			o.logger.Warn().Err(r.Err).Str("provider", st.provider.String()).Str("token", token).
				Msg("board sync fetch failed")
			continue
		}
		st.syncResults[token] = r.Value
	}
}

func (o *Orchestrator) commitDiscovery(ctx context.Context, st *providerState) {
	if !st.runDiscovery {
		return
	}
	if st.pageErrors >= o.cfg.PageErrorBudget {
		// Error budget exceeded: abort this provider's discovery commit;
		// the cursor advance step (6) will mark status=error instead.
		return
	}
	if len(st.discovered) == 0 {
		return
	}

	saved, err := o.store.UpsertBoards(ctx, st.discovered)
	if err != nil {
		o.logger.Warn().Err(err).Str("provider", st.provider.String()).Msg("failed to upsert discovered boards")
		return
	}
	st.progress.BoardsFound += saved

	boards := make([]enrich.Board, 0, len(st.discovered))
	for _, b := range st.discovered {
		boards = append(boards, enrich.Board{Token: b.Token, URL: b.URL, Timestamp: b.Timestamp})
	}
	if _, err := o.enrichEngine.EnrichBoards(ctx, boards); err != nil {
		o.logger.Warn().Err(err).Str("provider", st.provider.String()).Msg("enrichment write failed")
	}
}

func (o *Orchestrator) commitSync(ctx context.Context, st *providerState) {
	if len(st.syncResults) == 0 {
		return
	}
	upserter, ok := o.upserters[st.provider]
	if !ok {
		return
	}

	for token, resp := range st.syncResults {
		if _, err := upserter.Upsert(ctx, resp, token); err != nil {
			o.logger.Warn().Err(err).Str("provider", st.provider.String()).Str("token", token).
				Msg("job upsert failed")
		}
	}
}

func (o *Orchestrator) advanceCursor(ctx context.Context, st *providerState) {
	if !st.runDiscovery || st.progress == nil {
		return
	}

	status := "running"
	current := st.progress.CurrentPage
	if st.pageErrors >= o.cfg.PageErrorBudget {
		status = "error"
		current = st.highestFailed
	} else {
		current = st.endPage
		if current >= st.progress.TotalPages {
			status = "done"
		}
	}

	if err := o.store.SaveProgress(ctx, sqlite.Progress{
		CrawlID: st.crawlID, TotalPages: st.progress.TotalPages, CurrentPage: current,
		Status: status, BoardsFound: st.progress.BoardsFound,
	}); err != nil {
		o.logger.Warn().Err(err).Str("crawl_id", st.crawlID).Msg("failed to advance cursor")
	}

	if status == "error" {
		if err := o.store.EnqueueRetry(ctx, sqlite.RetryMessage{
			Provider: st.provider.String(), CrawlID: st.crawlID, Reason: "page_error_budget_exceeded",
		}); err != nil {
			o.logger.Warn().Err(err).Str("crawl_id", st.crawlID).Msg("failed to enqueue discovery retry")
		}
	}

	st.progress.CurrentPage = current
	st.progress.Status = status
}

// drainRetryQueue logs and clears any retry messages left by a prior
// batch's page-error-budget abort. The cursor's own "error" status is what
// actually drives the next discovery attempt (step 2 only skips providers
// whose status is "done"); this queue exists so that fact is independently
// durable and visible to operators, not to re-derive step 2's decision.
func (o *Orchestrator) drainRetryQueue(ctx context.Context) {
	for {
		msg, del, err := o.store.ReceiveRetry(ctx)
		if err != nil {
			o.logger.Warn().Err(err).Msg("failed to read discovery retry queue")
			return
		}
		if msg == nil {
			return
		}
		o.logger.Warn().
			Str("provider", msg.Provider).
			Str("crawl_id", msg.CrawlID).
			Str("reason", msg.Reason).
			Msg("retrying provider discovery after prior page-error budget abort")
		if err := del(); err != nil {
			o.logger.Warn().Err(err).Str("crawl_id", msg.CrawlID).Msg("failed to clear discovery retry message")
			return
		}
	}
}
