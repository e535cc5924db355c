package providerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ternarybob/atscrawl/internal/common"
	"github.com/ternarybob/atscrawl/internal/provider"
)

// greenhouseJob mirrors original_source/greenhouse.rs's GreenhouseJob.
type greenhouseJob struct {
	ID             uint64          `json:"id"`
	InternalJobID  *uint64         `json:"internal_job_id"`
	Title          string          `json:"title"`
	AbsoluteURL    string          `json:"absolute_url"`
	UpdatedAt      string          `json:"updated_at"`
	RequisitionID  string          `json:"requisition_id"`
	Content        string          `json:"content"`
	Location       struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments    json.RawMessage `json:"departments"`
	Offices        json.RawMessage `json:"offices"`
	Metadata       json.RawMessage `json:"metadata"`
	DataCompliance json.RawMessage `json:"data_compliance"`
}

type greenhouseBoardResponse struct {
	Name string          `json:"name"`
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseClient fetches a board's full listing from the Greenhouse
// public Job Board API v1, grounded on fetch_greenhouse_board_jobs.
type GreenhouseClient struct {
	http    *http.Client
	limiter *rate.Limiter
}

func NewGreenhouseClient() *GreenhouseClient {
	return &GreenhouseClient{http: &http.Client{Timeout: 20 * time.Second}, limiter: newProviderLimiter()}
}

func (c *GreenhouseClient) Fetch(ctx context.Context, token string) (BoardResponse, error) {
	url := fmt.Sprintf("https://boards-api.greenhouse.io/v1/boards/%s/jobs?content=true", token)

	body, status, err := doGet(ctx, c.http, c.limiter, url)
	if err != nil {
		return BoardResponse{}, err
	}
	if status == http.StatusNotFound {
		return BoardResponse{Tag: provider.Greenhouse}, nil
	}
	if status != http.StatusOK {
		return BoardResponse{}, common.ErrProviderUnavailable("greenhouse", token, status)
	}

	var raw greenhouseBoardResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return BoardResponse{}, common.ErrProviderSchema("greenhouse", token, err.Error())
	}

	postings := make([]Posting, 0, len(raw.Jobs))
	for _, j := range raw.Jobs {
		if j.AbsoluteURL == "" {
			continue
		}
		// external_id = absolute_url stripped of query string, so the
		// same posting reached with different query parameters maps to
		// one jobs row.
		externalID := j.AbsoluteURL
		if idx := strings.IndexByte(externalID, '?'); idx != -1 {
			externalID = externalID[:idx]
		}

		postings = append(postings, Posting{
			ExternalID:  externalID,
			Title:       j.Title,
			Description: j.Content,
			Location:    j.Location.Name,
			PostedAt:    j.UpdatedAt,
			RawJSON: map[string]any{
				"absolute_url":     j.AbsoluteURL,
				"internal_job_id":  j.InternalJobID,
				"requisition_id":   j.RequisitionID,
				"departments":      json.RawMessage(nonNil(j.Departments)),
				"offices":          json.RawMessage(nonNil(j.Offices)),
				"metadata":         json.RawMessage(nonNil(j.Metadata)),
				"data_compliance":  json.RawMessage(nonNil(j.DataCompliance)),
			},
		})
	}

	return BoardResponse{
		Tag:         provider.Greenhouse,
		CompanyName: raw.Name,
		Postings:    postings,
	}, nil
}

func nonNil(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return json.RawMessage("null")
	}
	return raw
}
