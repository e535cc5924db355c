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

// ashbyAddress mirrors original_source/ashby.rs's AshbyApiAddress. The
// postal address shape is provider-defined and opaque to us, so it's kept
// as a raw value and serialised verbatim into ashby_address.
type ashbyAddress struct {
	PostalAddress json.RawMessage `json:"postalAddress,omitempty"`
}

// ashbySecondaryLocation mirrors original_source/ashby.rs's
// AshbyApiSecondaryLocation.
type ashbySecondaryLocation struct {
	Location string        `json:"location,omitempty"`
	Address  *ashbyAddress `json:"address,omitempty"`
}

// ashbyJobPosting mirrors original_source/ashby.rs's AshbyJobPosting.
type ashbyJobPosting struct {
	ID                 string                   `json:"id"`
	Title              string                   `json:"title"`
	Department         string                   `json:"department"`
	Team               string                   `json:"team"`
	EmploymentType     string                   `json:"employmentType"`
	Location           string                   `json:"location"`
	IsRemote           bool                     `json:"isRemote"`
	IsListed           bool                     `json:"isListed"`
	PublishedAt        string                   `json:"publishedAt"`
	DescriptionHTML    string                   `json:"descriptionHtml"`
	JobURL             string                   `json:"jobUrl"`
	ApplyURL           string                   `json:"applyUrl"`
	SecondaryLocations []ashbySecondaryLocation `json:"secondaryLocations,omitempty"`
	Compensation       json.RawMessage          `json:"compensation,omitempty"`
	Address            json.RawMessage          `json:"address,omitempty"`
}

type ashbyJobBoardResponse struct {
	OrganizationName string            `json:"organizationName"`
	Jobs             []ashbyJobPosting `json:"jobs"`
}

// AshbyClient fetches a board's full listing from the Ashby public
// Job Board API, grounded on fetch_ashby_board_jobs.
type AshbyClient struct {
	http    *http.Client
	limiter *rate.Limiter
}

func NewAshbyClient() *AshbyClient {
	return &AshbyClient{http: &http.Client{Timeout: 20 * time.Second}, limiter: newProviderLimiter()}
}

// Fetch returns an empty BoardResponse (not an error) on HTTP 404 — the
// board is inactive/closed.
func (c *AshbyClient) Fetch(ctx context.Context, slug string) (BoardResponse, error) {
	url := fmt.Sprintf("https://api.ashbyhq.com/posting-api/job-board/%s?includeCompensation=true", slug)

	body, status, err := doGet(ctx, c.http, c.limiter, url)
	if err != nil {
		return BoardResponse{}, err
	}
	if status == http.StatusNotFound {
		return BoardResponse{Tag: provider.Ashby}, nil
	}
	if status != http.StatusOK {
		return BoardResponse{}, common.ErrProviderUnavailable("ashby", slug, status)
	}

	var raw ashbyJobBoardResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return BoardResponse{}, common.ErrProviderSchema("ashby", slug, err.Error())
	}

	postings := make([]Posting, 0, len(raw.Jobs))
	for _, j := range raw.Jobs {
		// Canonical URL preference order per spec.md §4.4: job_url then apply_url.
		externalID := j.JobURL
		if externalID == "" {
			externalID = j.ApplyURL
		}
		if externalID == "" {
			continue
		}

		isRemote := j.IsRemote
		postings = append(postings, Posting{
			ExternalID:  externalID,
			Title:       j.Title,
			Description: j.DescriptionHTML,
			Location:    j.Location,
			PostedAt:    j.PublishedAt,
			IsRemote:    &isRemote,
			RawJSON: map[string]any{
				"id":                  j.ID,
				"department":          j.Department,
				"team":                j.Team,
				"employment_type":     j.EmploymentType,
				"is_listed":           j.IsListed,
				"job_url":             j.JobURL,
				"apply_url":           j.ApplyURL,
				"secondary_locations": j.SecondaryLocations,
				"compensation":        json.RawMessage(j.Compensation),
				"address":             json.RawMessage(j.Address),
			},
		})
	}

	return BoardResponse{
		Tag:         provider.Ashby,
		CompanyName: raw.OrganizationName,
		Postings:    postings,
	}, nil
}
