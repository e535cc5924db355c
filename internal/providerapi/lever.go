package providerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ternarybob/atscrawl/internal/common"
	"github.com/ternarybob/atscrawl/internal/provider"
)

// leverCategories mirrors original_source/lever.rs's LeverCategories.
type leverCategories struct {
	Location     string   `json:"location,omitempty"`
	Commitment   string   `json:"commitment,omitempty"`
	Team         string   `json:"team,omitempty"`
	Department   string   `json:"department,omitempty"`
	AllLocations []string `json:"allLocations,omitempty"`
}

type leverList struct {
	Text    string `json:"text,omitempty"`
	Content string `json:"content,omitempty"`
}

// leverPosting mirrors original_source/lever.rs's LeverPosting. The Lever
// Postings API v0 responds with a bare JSON array, not a wrapper object —
// there is no board-level company name field, unlike the other three.
type leverPosting struct {
	ID                    string          `json:"id"`
	Text                  string          `json:"text"`
	Categories            leverCategories `json:"categories"`
	Country               string          `json:"country,omitempty"`
	Description           string          `json:"description,omitempty"`
	DescriptionBody       string          `json:"descriptionBody,omitempty"`
	DescriptionBodyPlain  string          `json:"descriptionBodyPlain,omitempty"`
	Opening               string          `json:"opening,omitempty"`
	OpeningPlain          string          `json:"openingPlain,omitempty"`
	Additional            string          `json:"additional,omitempty"`
	AdditionalPlain       string          `json:"additionalPlain,omitempty"`
	Lists                 []leverList     `json:"lists,omitempty"`
	HostedURL             string          `json:"hostedUrl,omitempty"`
	ApplyURL              string          `json:"applyUrl,omitempty"`
	WorkplaceType         string          `json:"workplaceType,omitempty"`
	CreatedAt             *float64        `json:"createdAt,omitempty"`
}

// LeverClient fetches a site's full posting list from the Lever Postings
// API v0, grounded on fetch_lever_board_jobs.
type LeverClient struct {
	http    *http.Client
	limiter *rate.Limiter
}

func NewLeverClient() *LeverClient {
	return &LeverClient{http: &http.Client{Timeout: 20 * time.Second}, limiter: newProviderLimiter()}
}

func (c *LeverClient) Fetch(ctx context.Context, site string) (BoardResponse, error) {
	url := fmt.Sprintf("https://api.lever.co/v0/postings/%s?mode=json", site)

	body, status, err := doGet(ctx, c.http, c.limiter, url)
	if err != nil {
		return BoardResponse{}, err
	}
	if status == http.StatusNotFound {
		return BoardResponse{Tag: provider.Lever}, nil
	}
	if status != http.StatusOK {
		return BoardResponse{}, common.ErrProviderUnavailable("lever", site, status)
	}

	var raw []leverPosting
	if err := json.Unmarshal(body, &raw); err != nil {
		return BoardResponse{}, common.ErrProviderSchema("lever", site, err.Error())
	}

	// Lever exposes no company name in the response; the Upserter derives
	// a display name from the site slug the same way the original does.
	postings := make([]Posting, 0, len(raw))
	for _, p := range raw {
		if p.HostedURL == "" {
			continue
		}

		var postedAt string
		if p.CreatedAt != nil {
			postedAt = time.UnixMilli(int64(*p.CreatedAt)).UTC().Format("2006-01-02T15:04:05Z")
		}

		postings = append(postings, Posting{
			ExternalID:  p.HostedURL,
			Title:       p.Text,
			Description: p.Description,
			Location:    p.Categories.Location,
			PostedAt:    postedAt,
			RawJSON: map[string]any{
				"categories":               p.Categories,
				"workplace_type":           p.WorkplaceType,
				"country":                  p.Country,
				"opening":                  p.Opening,
				"opening_plain":            p.OpeningPlain,
				"description_body":         p.DescriptionBody,
				"description_body_plain":   p.DescriptionBodyPlain,
				"additional":               p.Additional,
				"additional_plain":         p.AdditionalPlain,
				"lists":                    p.Lists,
				"apply_url":                p.ApplyURL,
			},
		})
	}

	return BoardResponse{
		Tag:      provider.Lever,
		Postings: postings,
	}, nil
}
