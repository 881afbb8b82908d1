package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"agro-collector/entities"
)

const (
	userAgent       = "agro-collector/1.0"
	maxResponseBody = 1 << 20
)

// Fetcher issues the outbound request for one sensor.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher returns a fetcher; a zero timeout leaves the client without one.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}}
}

func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{httpClient: client}
}

// Fetch calls the sensor endpoint and returns the raw body. Any non-2xx status is an error.
func (f *Fetcher) Fetch(ctx context.Context, cfg entities.ReadingConfig) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, cfg.Method(), cfg.Endpoint(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("User-Agent", userAgent)
	if key := cfg.APIKey(); key != "" {
		request.Header.Set("Authorization", "Bearer "+key)
	}

	response, err := f.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reading: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch reading: unexpected status %s", response.Status)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
