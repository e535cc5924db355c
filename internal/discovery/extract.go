// Package discovery extracts canonical board tokens from archived URLs
// (C5 of the ingestion pipeline). Pure, network-free, grounded on
// original_source/common_crawl.rs's extract_board_token.
package discovery

import (
	"strings"

	"github.com/ternarybob/atscrawl/internal/provider"
)

// reservedTokens can never be a real board token: they are path segments
// an ATS host serves for something other than a company board.
var reservedTokens = map[string]bool{
	"api":          true,
	"static":       true,
	"favicon.ico":  true,
	"robots.txt":   true,
	"sitemap.xml":  true,
	"jobs":         true,
}

// ExtractToken implements spec.md §4.5:
//  1. right-strip trailing '/'
//  2. find the provider's host prefix; fail if absent
//  3. take the segment immediately after, stripping '?'/'#' suffixes
//  4. reject empty or reserved tokens
//  5. return lowercased
func ExtractToken(rawURL string, p provider.Provider) (string, bool) {
	url := strings.TrimRight(rawURL, "/")
	host := p.Host()

	idx := strings.Index(url, host)
	if idx == -1 {
		return "", false
	}

	rest := url[idx+len(host):]
	rest = strings.TrimPrefix(rest, "/")

	if rest == "" {
		return "", false
	}

	// Take only the first remaining path segment.
	if slash := strings.IndexByte(rest, '/'); slash != -1 {
		rest = rest[:slash]
	}
	if q := strings.IndexByte(rest, '?'); q != -1 {
		rest = rest[:q]
	}
	if h := strings.IndexByte(rest, '#'); h != -1 {
		rest = rest[:h]
	}

	token := strings.ToLower(rest)
	if token == "" || reservedTokens[token] {
		return "", false
	}
	return token, true
}
