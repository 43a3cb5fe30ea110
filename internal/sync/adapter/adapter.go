// Package adapter fetches raw watchlist payloads and normalizes them
// into sanctioned entity records. One adapter exists per list source,
// each encapsulating that source's wire format and mapping quirks.
package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sanctionwatch/internal/entity/models"
	platformstrings "sanctionwatch/pkg/platform/strings"
)

// Adapter turns one source's feed into normalized entity records.
// FetchAndParse returns an error only for run-fatal conditions (fetch
// failure, malformed document, missing root element); malformed
// individual records are skipped or defaulted, never fatal.
type Adapter interface {
	Source() models.ListSource
	FetchAndParse(ctx context.Context, syncTime time.Time) ([]models.SanctionedEntity, error)
}

// Fetcher retrieves a source's raw payload bytes.
type Fetcher interface {
	FetchRaw(ctx context.Context) ([]byte, error)
}

// HTTPFetcher downloads a feed over HTTP.
type HTTPFetcher struct {
	client *http.Client
	url    string
}

func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (f *HTTPFetcher) FetchRaw(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch feed: unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("received empty feed body")
	}
	return body, nil
}

// FixtureFetcher serves an embedded payload. Used for sources that do
// not offer unauthenticated machine access to their full data set.
type FixtureFetcher struct {
	payload []byte
}

func NewFixtureFetcher(payload []byte) *FixtureFetcher {
	return &FixtureFetcher{payload: payload}
}

func (f *FixtureFetcher) FetchRaw(context.Context) ([]byte, error) {
	if len(f.payload) == 0 {
		return nil, fmt.Errorf("fixture payload is empty")
	}
	return f.payload, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02 Jan 2006",
	"2 Jan 2006",
	"2006",
}

// parseFlexibleDate tries the date formats seen across the feeds.
// Free-text values like "circa 1960" do not parse and report false.
func parseFlexibleDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// dedupeAliases drops duplicate aliases and any alias that repeats the
// primary name. Feeds routinely list the primary spelling again as an aka.
func dedupeAliases(name string, aliases []string) []string {
	kept := make([]string, 0, len(aliases))
	for _, alias := range platformstrings.DedupeAndTrim(aliases) {
		if alias != name {
			kept = append(kept, alias)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
