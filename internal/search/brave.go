// Package search wraps the external search services behind the remote tool
// handlers: Brave web search, Serper shopping search and the Gemini-backed
// complex task runner. Each call is a single attempt; callers convert
// failures into spoken fallback results.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoAPIKey means the service is not configured; handlers answer with an
// unavailable message instead of an error.
var ErrNoAPIKey = errors.New("api key not configured")

const braveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Brave queries the Brave web search API.
type Brave struct {
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

func NewBrave(apiKey string) *Brave {
	return &Brave{
		APIKey:   apiKey,
		Endpoint: braveEndpoint,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search returns a spoken summary of the top three results.
func (b *Brave) Search(ctx context.Context, query string) (string, error) {
	if b.APIKey == "" {
		return "", ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		b.Endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return "", fmt.Errorf("building web search request: %w", err)
	}
	req.Header.Set("X-Subscription-Token", b.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("web search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("web search: unexpected status %d", resp.StatusCode)
	}

	var br braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return "", fmt.Errorf("decoding web search response: %w", err)
	}

	results := br.Web.Results
	if len(results) > 3 {
		results = results[:3]
	}
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("• %s: %s", r.Title, r.Description))
	}
	summary := strings.Join(lines, "\n")
	if summary == "" {
		return "No results found", nil
	}
	return summary, nil
}
