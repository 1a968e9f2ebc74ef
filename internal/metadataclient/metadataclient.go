// Package metadataclient discovers projects and documents from the
// upstream metadata API (spec §4.1), paging through results the same
// way the teacher's BYOLLM HTTP client talks to an external API
// (TicoDavid-RAGbox.co/backend/internal/gcpclient/byollm.go): a
// per-request context, status-code-aware error classification, and
// manual JSON decoding rather than a generated client.
package metadataclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bcgov/epic-search-ingest/internal/model"
)

const requestTimeout = 30 * time.Second

// Client talks to the upstream project/document metadata API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	projectPage int
	docsPage    int
}

// New creates a Client. projectPage and docsPage are the page sizes
// used for /projects and /projects/{id}/documents respectively
// (spec §6 GET_PROJECT_PAGE / GET_DOCS_PAGE).
func New(baseURL string, projectPage, docsPage int) *Client {
	if projectPage <= 0 {
		projectPage = 1
	}
	if docsPage <= 0 {
		docsPage = 1000
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		projectPage: projectPage,
		docsPage:    docsPage,
	}
}

// pagedResponse mirrors the upstream API's literal page envelope (spec
// §6): next_page is the cursor for the following request, or null once
// the last page has been returned.
type pagedResponse[T any] struct {
	Items    []T  `json:"items"`
	NextPage *int `json:"next_page"`
}

// Projects returns every project known to the upstream API, following
// next_page pagination while it is non-null.
func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	var all []model.Project
	page := 1
	for {
		var resp pagedResponse[model.Project]
		if err := c.getJSON(ctx, fmt.Sprintf("%s/projects?page=%d&size=%d", c.baseURL, page, c.projectPage), &resp); err != nil {
			return nil, fmt.Errorf("metadataclient: list projects: %w", err)
		}
		all = append(all, resp.Items...)
		if resp.NextPage == nil {
			break
		}
		page = *resp.NextPage
	}
	return all, nil
}

// Documents returns every document belonging to projectID, following
// next_page pagination while it is non-null.
func (c *Client) Documents(ctx context.Context, projectID string) ([]model.Document, error) {
	var all []model.Document
	page := 1
	for {
		endpoint := fmt.Sprintf("%s/projects/%s/documents?page=%d&size=%d",
			c.baseURL, url.PathEscape(projectID), page, c.docsPage)
		var resp pagedResponse[model.Document]
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, fmt.Errorf("metadataclient: list documents for project %s: %w", projectID, err)
		}
		all = append(all, resp.Items...)
		if resp.NextPage == nil {
			break
		}
		page = *resp.NextPage
	}
	return all, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("not found: %s", endpoint)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("rate limited fetching %s", endpoint)
	case resp.StatusCode >= 500:
		return fmt.Errorf("upstream server error %d fetching %s", resp.StatusCode, endpoint)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, endpoint)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}
