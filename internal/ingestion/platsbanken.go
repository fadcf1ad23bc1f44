package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PlatsbankenSearchURL is the public search endpoint behind platsbanken.se.
const PlatsbankenSearchURL = "https://platsbanken-api.arbetsformedlingen.se/jobs/v1/search"

// DefaultMaxRecords is how many ads are requested per search.
const DefaultMaxRecords = 50

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AdID accepts ad ids encoded as either JSON strings or numbers.
type AdID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *AdID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*id = AdID(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ad id is neither string nor number: %s", s)
	}
	*id = AdID(n.String())
	return nil
}

// Ad is one hit from the Platsbanken search response.
type Ad struct {
	ID                  AdID   `json:"id"`
	Title               string `json:"title"`
	WorkplaceName       string `json:"workplaceName"`
	Workplace           string `json:"workplace"`
	Description         string `json:"description"`
	LastApplicationDate string `json:"lastApplicationDate"`
	PublishedDate       string `json:"publishedDate"`
}

type searchFilter struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type searchRequest struct {
	Filters    []searchFilter `json:"filters"`
	FromDate   *string        `json:"fromDate"`
	Order      string         `json:"order"`
	MaxRecords int            `json:"maxRecords"`
	StartIndex int            `json:"startIndex"`
	Source     string         `json:"source"`
}

type searchResponse struct {
	Ads []Ad `json:"ads"`
}

// Platsbanken searches the public job board.
type Platsbanken struct {
	client     HTTPClient
	baseURL    string
	maxRecords int
}

// NewPlatsbanken creates a client. A nil client gets a 30 second timeout.
func NewPlatsbanken(client HTTPClient) *Platsbanken {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Platsbanken{
		client:     client,
		baseURL:    PlatsbankenSearchURL,
		maxRecords: DefaultMaxRecords,
	}
}

// WithBaseURL points the client at another endpoint, such as a test server.
func (p *Platsbanken) WithBaseURL(u string) *Platsbanken {
	p.baseURL = u
	return p
}

// Search returns the ads matching keyword. A non-empty location is sent as a
// second free-text filter.
func (p *Platsbanken) Search(ctx context.Context, keyword, location string) ([]Ad, error) {
	body := searchRequest{
		Filters:    []searchFilter{{Type: "freetext", Value: keyword}},
		Order:      "relevance",
		MaxRecords: p.maxRecords,
		Source:     "pb",
	}
	if location != "" {
		body.Filters = append(body.Filters, searchFilter{Type: "freetext", Value: location})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("platsbanken request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("platsbanken returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode platsbanken response: %w", err)
	}
	return out.Ads, nil
}
