// Package archive implements the Common Crawl CDX index client (C2):
// collection listing, page counting, and paginated CDX record fetching,
// grounded on original_source/common_crawl.rs.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/atscrawl/internal/common"
	"github.com/ternarybob/atscrawl/internal/discovery"
	"github.com/ternarybob/atscrawl/internal/provider"
)

const pageSize = 100

// CdxRecord is one captured URL line from the archive index (spec.md §3).
// Ephemeral: exists only during one page fetch.
type CdxRecord struct {
	URL           string `json:"url"`
	Timestamp     string `json:"timestamp"`
	Status        string `json:"status,omitempty"`
	Mime          string `json:"mime,omitempty"`
	MimeDetected  string `json:"mime-detected,omitempty"`
	Filename      string `json:"filename,omitempty"`
	Offset        string `json:"offset,omitempty"`
	Length        string `json:"length,omitempty"`
}

// DiscoveredBoard is a board derived from a CdxRecord (spec.md §3).
type DiscoveredBoard struct {
	Token       string
	URL         string
	Timestamp   string
	CrawlID     string
	Provider    provider.Provider
	Status      string
	Mime        string
	WarcFile    string
	WarcOffset  int64
	WarcLength  int64
}

// Client fetches collection metadata and CDX pages from a Common Crawl
// style index endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     arbor.ILogger
}

// NewClient constructs an archive client, grounded on
// internal/httpclient/client.go's NewDefaultHTTPClient posture: a bare
// *http.Client with a sane timeout, no custom transport needed for a
// read-only JSON API.
func NewClient(baseURL string, logger arbor.ILogger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		logger:     logger,
	}
}

type collectionInfo struct {
	ID string `json:"id"`
}

// ListCollections returns collection IDs newest-first. Fails
// ArchiveUnavailable on non-2xx or malformed JSON.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/collinfo.json", c.baseURL)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, common.ErrArchiveUnavailable("collinfo fetch failed", err)
	}

	var infos []collectionInfo
	if err := json.Unmarshal(body, &infos); err != nil {
		return nil, common.ErrArchiveUnavailable("collinfo parse failed", err)
	}

	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	// collinfo.json is already newest-first; sort defensively descending
	// in case the upstream endpoint changes ordering.
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

type numPagesResponse struct {
	Pages int `json:"pages"`
}

// GetNumPages returns the CDX page count for (collection, provider).
func (c *Client) GetNumPages(ctx context.Context, collection string, p provider.Provider) (int, error) {
	url := fmt.Sprintf("%s/%s-index?url=%s&output=json&showNumPages=true",
		c.baseURL, collection, p.CCURLPattern())

	body, err := c.get(ctx, url)
	if err != nil {
		return 0, common.ErrArchiveUnavailable("page count fetch failed", err)
	}

	var resp numPagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, common.ErrArchiveUnavailable("page count parse failed", err)
	}
	return resp.Pages, nil
}

// FetchCdxPage fetches page `page` of CDX records for (collection, provider)
// and reduces them to deduplicated DiscoveredBoards, tie-broken by the
// lexicographically largest timestamp within this page (spec.md §4.2).
// Lines that fail to parse are skipped; the first three are logged.
func (c *Client) FetchCdxPage(ctx context.Context, collection string, page int, p provider.Provider) ([]DiscoveredBoard, error) {
	url := fmt.Sprintf("%s/%s-index?url=%s&output=json&filter=statuscode:200&pageSize=%d&page=%d",
		c.baseURL, collection, p.CCURLPattern(), pageSize, page)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, common.ErrPageFetch(page, err)
	}

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	byToken := make(map[string]DiscoveredBoard)
	parseErrors := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var rec CdxRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			parseErrors++
			if parseErrors <= 3 {
				c.logger.Warn().Err(err).Str("line", line).Msg("failed to parse CDX record")
			}
			continue
		}

		token, ok := discovery.ExtractToken(rec.URL, p)
		if !ok {
			continue
		}

		crawlID := p.CrawlID(collection)
		candidate := DiscoveredBoard{
			Token:     token,
			URL:       rec.URL,
			Timestamp: rec.Timestamp,
			CrawlID:   crawlID,
			Provider:  p,
			Status:    rec.Status,
			Mime:      rec.Mime,
		}

		existing, seen := byToken[token]
		if !seen || candidate.Timestamp > existing.Timestamp {
			byToken[token] = candidate
		}
	}

	boards := make([]DiscoveredBoard, 0, len(byToken))
	for _, b := range byToken {
		boards = append(boards, b)
	}
	return boards, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}
