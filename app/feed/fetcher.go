package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Responses larger than this fail instead of being cut short.
var maxBodyBytes int64 = 10 << 20

type FetchResult struct {
	Config   *Config
	Metadata *Metadata
	Items    []Item
	Err      error
	Duration time.Duration
}

// Fetcher downloads and parses feeds. Every source runs in its own goroutine
// under its own timeout; a failing source only fails its own result.
type Fetcher struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
}

func NewFetcher(httpClient *http.Client, parser *Parser, userAgent string) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{
		httpClient: httpClient,
		parser:     parser,
		userAgent:  userAgent,
	}
}

// Run returns one result per config, in input order, once every fetch has
// finished or timed out.
func (f *Fetcher) Run(ctx context.Context, configs []*Config) []FetchResult {
	results := make([]FetchResult, len(configs))

	var wg sync.WaitGroup
	for i, feedConfig := range configs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = f.fetchOne(ctx, feedConfig)
		}()
	}
	wg.Wait()

	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, feedConfig *Config) (result FetchResult) {
	result.Config = feedConfig
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic while fetching feed: %v", r)
		}
		result.Duration = time.Since(start)
		if result.Err != nil {
			slog.Warn("Feed fetch failed", "feed", feedConfig.Name, "url", feedConfig.URL, "duration", result.Duration, "error", result.Err)
		}
	}()

	data, err := f.Get(ctx, feedConfig.URL, timeoutOf(feedConfig), "")
	if err != nil {
		result.Err = fmt.Errorf("failed to fetch feed: %w", err)
		return result
	}

	metadata, items, err := f.parser.Run(data)
	if err != nil {
		result.Err = err
		return result
	}

	if limit := feedConfig.Settings.MaxItems; limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	result.Metadata = metadata
	result.Items = items

	slog.Debug("Feed fetched", "feed", feedConfig.Name, "count", len(items), "duration", time.Since(start))
	return result
}

// Get performs a GET bounded by timeout. A non-empty contentType must appear
// in the response Content-Type.
func (f *Fetcher) Get(ctx context.Context, url string, timeout time.Duration, contentType string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	if contentType != "" {
		got := resp.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(got), contentType) {
			return nil, fmt.Errorf("unexpected content type: %s", got)
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > maxBodyBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", maxBodyBytes)
	}

	return data, nil
}

func timeoutOf(feedConfig *Config) time.Duration {
	if feedConfig.Settings.Timeout <= 0 {
		return defaultTimeout * time.Second
	}
	return time.Duration(feedConfig.Settings.Timeout) * time.Second
}
