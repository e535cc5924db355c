// Package providerapi implements the per-provider job-board API fetchers
// (C3), one per ATS, grounded file-for-file on the matching
// original_source/{ashby,greenhouse,workable,lever}.rs fetch functions.
package providerapi

import "github.com/ternarybob/atscrawl/internal/provider"

// Posting is the common shape the orchestrator and Upserters consume,
// regardless of which provider produced it. Provider-specific fields
// that don't normalise cleanly stay in RawJSON for the Upserter to
// serialise verbatim into its provider-specific blob columns.
type Posting struct {
	ExternalID   string // resolved canonical URL, provider-specific preference order
	Title        string
	Description  string
	Location     string
	PostedAt     string
	IsRemote     *bool
	RawJSON      map[string]any
}

// BoardResponse is the tagged-union result of fetching one board's
// listing (spec.md §9 "Heterogeneous board shapes"). The orchestrator
// only ever sees CompanyName/Postings/Tag; Upserters dispatch on Tag.
type BoardResponse struct {
	Tag         provider.Provider
	CompanyName string
	Postings    []Posting
}
