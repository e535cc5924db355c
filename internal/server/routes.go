package server

import "net/http"

// setupRoutes wires every endpoint named in spec.md §8, grounded on the
// teacher's internal/server/routes.go ServeMux layout.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/crawl", s.handlers.CrawlHandler)
	mux.HandleFunc("/sync-jobs", s.handlers.SyncJobsHandler)
	mux.HandleFunc("/progress", s.handlers.ProgressHandler)
	mux.HandleFunc("/boards", s.handlers.BoardsHandler)
	mux.HandleFunc("/stats", s.handlers.StatsHandler)
	mux.HandleFunc("/search", s.handlers.SearchHandler)
	mux.HandleFunc("/enrich", s.handlers.EnrichHandler)
	mux.HandleFunc("/enrich-all", s.handlers.EnrichAllHandler)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}
