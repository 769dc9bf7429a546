package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://openlibrary.org"
	defaultTimeout = 10 * time.Second

	userAgent = "BookCatalog/1.0 (https://github.com/avolkov/bookcatalog)"
)

// OpenLibraryClient queries the Open Library search and works APIs.
type OpenLibraryClient struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// Config configures the Open Library client. Zero values fall back to the
// public host, a 10s timeout and 1 request per second.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond int
}

// NewOpenLibraryClient creates a rate-limited Open Library API client.
func NewOpenLibraryClient(cfg Config) *OpenLibraryClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 1
	}
	return &OpenLibraryClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// SearchDoc is the subset of a /search.json hit used for enrichment.
type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	CoverEditionKey  string   `json:"cover_edition_key"`
	FirstPublishYear *int     `json:"first_publish_year"`
	RatingsAverage   *float64 `json:"ratings_average"`
	Subject          []string `json:"subject"`
}

type searchResult struct {
	NumFound int         `json:"numFound"`
	Docs     []SearchDoc `json:"docs"`
}

// Search looks up a work by title and author and returns the first hit, or
// nil when nothing matched.
func (c *OpenLibraryClient) Search(ctx context.Context, title, author string) (*SearchDoc, error) {
	q := url.Values{}
	q.Set("title", title)
	q.Set("author", author)
	q.Set("limit", "1")

	var result searchResult
	if err := c.getJSON(ctx, "/search.json?"+q.Encode(), &result); err != nil {
		return nil, err
	}

	if len(result.Docs) == 0 {
		return nil, nil
	}
	return &result.Docs[0], nil
}

// WorkDetails holds the full work record for a search hit. The description
// field is either a plain string or an object with a nested value; use
// DescriptionText to read it.
type WorkDetails struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description any    `json:"description"`
}

// DescriptionText normalizes the description into a plain string. The second
// return value is false when no usable description is present.
func (d *WorkDetails) DescriptionText() (string, bool) {
	if d == nil {
		return "", false
	}
	switch v := d.Description.(type) {
	case string:
		return v, v != ""
	case map[string]any:
		if s, ok := v["value"].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// FetchWork retrieves the full work record for a key such as
// "/works/OL893415W".
func (c *OpenLibraryClient) FetchWork(ctx context.Context, workKey string) (*WorkDetails, error) {
	if workKey == "" {
		return nil, fmt.Errorf("empty work key")
	}

	var details WorkDetails
	if err := c.getJSON(ctx, workKey+".json", &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openlibrary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openlibrary: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode openlibrary response: %w", err)
	}
	return nil
}
