package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	serperEndpoint = "https://google.serper.dev/shopping"
	serperMaxCount = 40
	spokenTopItems = 3
)

// Serper queries the Serper shopping search API.
type Serper struct {
	APIKey   string
	Endpoint string
	HTTP     *http.Client
}

func NewSerper(apiKey string) *Serper {
	return &Serper{
		APIKey:   apiKey,
		Endpoint: serperEndpoint,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

type serperResponse struct {
	Shopping []struct {
		Title  string `json:"title"`
		Price  string `json:"price"`
		Source string `json:"source"`
	} `json:"shopping"`
}

// Shop searches products and returns a spoken summary: total count plus the
// top three offers. count is capped at 40.
func (s *Serper) Shop(ctx context.Context, query string, count int) (string, error) {
	if s.APIKey == "" {
		return "", ErrNoAPIKey
	}
	if count <= 0 {
		count = 10
	}
	if count > serperMaxCount {
		count = serperMaxCount
	}

	body, err := json.Marshal(map[string]any{"q": query, "num": count})
	if err != nil {
		return "", fmt.Errorf("encoding shopping request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building shopping request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("shopping search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("shopping search: unexpected status %d", resp.StatusCode)
	}

	var sr serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("decoding shopping response: %w", err)
	}

	if len(sr.Shopping) == 0 {
		return fmt.Sprintf("No products found for %q", query), nil
	}

	top := sr.Shopping
	if len(top) > spokenTopItems {
		top = top[:spokenTopItems]
	}
	lines := make([]string, 0, len(top))
	for _, item := range top {
		price := item.Price
		if price == "" {
			price = "Price not available"
		}
		seller := item.Source
		if seller == "" {
			seller = "Unknown seller"
		}
		lines = append(lines, fmt.Sprintf("%s for %s from %s", item.Title, price, seller))
	}
	return fmt.Sprintf("Found %d products for %q. Top results: %s",
		len(sr.Shopping), query, strings.Join(lines, ". ")), nil
}
