// Package provider implements the closed, tagged union of ATS providers
// this system discovers and syncs (C1 of the ingestion pipeline).
package provider

import (
	"fmt"
	"strings"
)

// Provider tags one of the three compile-time ATS variants. It carries no
// lifecycle of its own — the set is fixed at compile time.
type Provider uint8

const (
	Ashby Provider = iota
	Greenhouse
	Workable
)

// Lever is supported as an additional BoardResponse/Upserter variant (see
// SPEC_FULL.md §1). It has a value of this type so shared code paths
// (fetcher/upserter maps, FromString) can address it, but it is kept apart
// from the three registry variants above and is not returned by All().
const Lever Provider = 255

// Host returns the canonical board host for the provider.
func (p Provider) Host() string {
	switch p {
	case Ashby:
		return "jobs.ashbyhq.com"
	case Greenhouse:
		return "job-boards.greenhouse.io"
	case Workable:
		return "apply.workable.com"
	case Lever:
		return "jobs.lever.co"
	default:
		return ""
	}
}

// CCURLPattern returns the wildcard expression used in Common Crawl CDX
// index queries for this provider's board host.
func (p Provider) CCURLPattern() string {
	switch p {
	case Ashby:
		return "jobs.ashbyhq.com%2F*"
	case Greenhouse:
		return "job-boards.greenhouse.io%2F*"
	case Workable:
		return "apply.workable.com%2F*"
	case Lever:
		return "jobs.lever.co%2F*"
	default:
		return ""
	}
}

// BoardURL builds the canonical public board URL from a token.
func (p Provider) BoardURL(token string) string {
	switch p {
	case Ashby:
		return fmt.Sprintf("https://jobs.ashbyhq.com/%s", token)
	case Greenhouse:
		return fmt.Sprintf("https://job-boards.greenhouse.io/%s", token)
	case Workable:
		return fmt.Sprintf("https://apply.workable.com/%s", token)
	case Lever:
		return fmt.Sprintf("https://jobs.lever.co/%s", token)
	default:
		return ""
	}
}

// String returns the canonical lowercase provider name.
func (p Provider) String() string {
	switch p {
	case Ashby:
		return "ashby"
	case Greenhouse:
		return "greenhouse"
	case Workable:
		return "workable"
	case Lever:
		return "lever"
	default:
		return "unknown"
	}
}

// FromString round-trips String, case-insensitive, accepting the short
// aliases carried over from the original implementation ("gh", "lv").
func FromString(s string) (Provider, bool) {
	switch strings.ToLower(s) {
	case "ashby":
		return Ashby, true
	case "greenhouse", "gh":
		return Greenhouse, true
	case "workable", "wk":
		return Workable, true
	case "lever", "lv":
		return Lever, true
	default:
		return 0, false
	}
}

// CrawlID builds the composite cursor key "{base}:{provider}" used to
// namespace progress per (collection, provider) pair.
func (p Provider) CrawlID(baseCrawlID string) string {
	return fmt.Sprintf("%s:%s", baseCrawlID, p.String())
}

// All lists the three compile-time Provider Registry variants (spec.md §3).
// Lever is intentionally excluded — it is a BoardResponse/Upserter
// variant, not a Provider Registry tag.
func All() []Provider {
	return []Provider{Ashby, Greenhouse, Workable}
}
