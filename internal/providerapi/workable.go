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

// workableJob mirrors original_source/workable.rs's WorkableJob.
type workableJob struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	City          string `json:"city"`
	Country       string `json:"country"`
	Telecommuting bool   `json:"telecommuting"`
	CreatedAt     string `json:"created_at"`
	Department    string `json:"department"`
}

type workableWidgetResponse struct {
	Name string        `json:"name"`
	Jobs []workableJob `json:"jobs"`
}

// WorkableClient fetches a board's listing from the Workable public widget
// API, grounded on fetch_workable_board_jobs.
type WorkableClient struct {
	http    *http.Client
	limiter *rate.Limiter
}

func NewWorkableClient() *WorkableClient {
	return &WorkableClient{http: &http.Client{Timeout: 20 * time.Second}, limiter: newProviderLimiter()}
}

func (c *WorkableClient) Fetch(ctx context.Context, shortcode string) (BoardResponse, error) {
	url := fmt.Sprintf("https://apply.workable.com/api/v1/widget/accounts/%s", shortcode)

	body, status, err := doGet(ctx, c.http, c.limiter, url)
	if err != nil {
		return BoardResponse{}, err
	}
	if status == http.StatusNotFound {
		return BoardResponse{Tag: provider.Workable}, nil
	}
	if status != http.StatusOK {
		return BoardResponse{}, common.ErrProviderUnavailable("workable", shortcode, status)
	}

	var raw workableWidgetResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return BoardResponse{}, common.ErrProviderSchema("workable", shortcode, err.Error())
	}

	postings := make([]Posting, 0, len(raw.Jobs))
	for _, j := range raw.Jobs {
		if j.URL == "" {
			continue
		}

		// telecommuting -> binary workplace_type, per original_source/workable.rs.
		workplaceType := "on-site"
		if j.Telecommuting {
			workplaceType = "remote"
		}
		location := j.City
		if j.Country != "" {
			if location != "" {
				location += ", " + j.Country
			} else {
				location = j.Country
			}
		}
		isRemote := j.Telecommuting

		postings = append(postings, Posting{
			ExternalID:  j.URL,
			Title:       j.Title,
			Description: j.Description,
			Location:    location,
			PostedAt:    j.CreatedAt,
			IsRemote:    &isRemote,
			RawJSON: map[string]any{
				"categories":     j.Department,
				"workplace_type": workplaceType,
				"country":        j.Country,
			},
		})
	}

	return BoardResponse{
		Tag:         provider.Workable,
		CompanyName: raw.Name,
		Postings:    postings,
	}, nil
}
