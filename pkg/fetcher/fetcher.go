// Package fetcher downloads page bodies in storage format from a wiki REST API.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dtnitsch/wiki-triage/models"
)

// ErrNotFound is returned when the page does not exist or is not visible to the credentials.
var ErrNotFound = errors.New("page not found")

type Fetcher struct {
	client  *http.Client
	baseURL string
	user    string
	token   string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBasicAuth sends user and token as HTTP basic credentials.
func WithBasicAuth(user, token string) Option {
	return func(f *Fetcher) {
		f.user, f.token = user, token
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

func NewFetcher(baseURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type contentResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  struct {
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`
	Links struct {
		Base  string `json:"base"`
		WebUI string `json:"webui"`
	} `json:"_links"`
}

// FetchPage retrieves one page with its storage body expanded.
func (f *Fetcher) FetchPage(ctx context.Context, id string) (*models.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("empty page id")
	}
	endpoint := f.baseURL + "/rest/api/content/" + url.PathEscape(id) + "?expand=body.storage"

	bodyBytes, err := f.getBytes(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", id, err)
	}

	var resp contentResponse
	if err := json.Unmarshal(bodyBytes, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode page %s: %w", id, err)
	}

	doc := &models.Document{
		ID:    resp.ID,
		Title: resp.Title,
		Body:  resp.Body.Storage.Value,
	}
	if doc.ID == "" {
		doc.ID = id
	}
	if resp.Links.WebUI != "" {
		base := resp.Links.Base
		if base == "" {
			base = f.baseURL
		}
		doc.URL = strings.TrimRight(base, "/") + resp.Links.WebUI
	}
	return doc, nil
}

func (f *Fetcher) getBytes(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.user != "" || f.token != "" {
		req.SetBasicAuth(f.user, f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return bodyBytes, nil
}
