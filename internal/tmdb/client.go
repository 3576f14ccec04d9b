// Package tmdb is a read-only client for The Movie Database API.
//
// Responses are returned as raw JSON so callers can forward them unchanged.
// Every call is rate limited, bounded by a per-attempt timeout, retried once
// on transient failures and guarded by a circuit breaker.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/cinedex/apiserver/internal/logging"
	"github.com/cinedex/apiserver/internal/metrics"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"
	defaultTimeout  = 10 * time.Second
	retryBackoff    = 200 * time.Millisecond
	maxBodyBytes    = 8 << 20
)

type Config struct {
	BaseURL   string
	APIKey    string
	Language  string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// StatusError reports a non-200 upstream response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb returned %d", e.StatusCode)
}

type Client struct {
	baseURL  string
	apiKey   string
	language string
	timeout  time.Duration
	http     *http.Client
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[json.RawMessage]
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("tmdb api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid tmdb base url: %w", err)
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		timeout:  cfg.Timeout,
		http:     httpClient,
		limiter:  rate.NewLimiter(limit, burst),
		cb:       newBreaker("tmdb-api"),
	}, nil
}

// Get fetches {base}/{endpoint} with the api key and language appended to params.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	start := time.Now()
	body, err := c.cb.Execute(func() (json.RawMessage, error) {
		return c.getWithRetry(ctx, endpoint, params)
	})
	recordOutcome(err, time.Since(start))
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("endpoint", endpoint).Msg("tmdb request failed")
		return nil, err
	}
	return body, nil
}

func (c *Client) getWithRetry(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	body, err := c.do(ctx, endpoint, params)
	if err == nil || !retryable(ctx, err) {
		return body, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryBackoff):
	}
	return c.do(ctx, endpoint, params)
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(endpoint, params), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("tmdb returned invalid json")
	}
	return json.RawMessage(body), nil
}

func (c *Client) buildURL(endpoint string, params url.Values) string {
	q := url.Values{}
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/") + "?" + q.Encode()
}

// retryable reports transport failures and gateway errors, but not cancellation.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func recordOutcome(err error, elapsed time.Duration) {
	switch {
	case err == nil:
		metrics.RecordUpstreamRequest("success", elapsed)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordUpstreamRequest("rejected", elapsed)
	default:
		metrics.RecordUpstreamRequest("error", elapsed)
	}
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

// MediaList returns a category listing such as movie/popular.
func (c *Client) MediaList(ctx context.Context, mediaType, category string, page int) (json.RawMessage, error) {
	return c.Get(ctx, url.PathEscape(mediaType)+"/"+url.PathEscape(category), pageParams(page))
}

func (c *Client) MediaDetail(ctx context.Context, mediaType, mediaID string) (json.RawMessage, error) {
	return c.Get(ctx, url.PathEscape(mediaType)+"/"+url.PathEscape(mediaID), nil)
}

func (c *Client) MediaGenres(ctx context.Context, mediaType string) (json.RawMessage, error) {
	return c.Get(ctx, "genre/"+url.PathEscape(mediaType)+"/list", nil)
}

func (c *Client) MediaCredits(ctx context.Context, mediaType, mediaID string) (json.RawMessage, error) {
	return c.mediaSub(ctx, mediaType, mediaID, "credits")
}

func (c *Client) MediaVideos(ctx context.Context, mediaType, mediaID string) (json.RawMessage, error) {
	return c.mediaSub(ctx, mediaType, mediaID, "videos")
}

func (c *Client) MediaImages(ctx context.Context, mediaType, mediaID string) (json.RawMessage, error) {
	return c.mediaSub(ctx, mediaType, mediaID, "images")
}

func (c *Client) MediaRecommendations(ctx context.Context, mediaType, mediaID string) (json.RawMessage, error) {
	return c.mediaSub(ctx, mediaType, mediaID, "recommendations")
}

// MediaSearch searches movies, tv shows or people.
func (c *Client) MediaSearch(ctx context.Context, mediaType, query string, page int) (json.RawMessage, error) {
	params := pageParams(page)
	params.Set("query", query)
	return c.Get(ctx, "search/"+url.PathEscape(mediaType), params)
}

func (c *Client) PersonDetail(ctx context.Context, personID string) (json.RawMessage, error) {
	return c.Get(ctx, "person/"+url.PathEscape(personID), nil)
}

// PersonMedias returns the combined movie and tv credits of a person.
func (c *Client) PersonMedias(ctx context.Context, personID string) (json.RawMessage, error) {
	return c.Get(ctx, "person/"+url.PathEscape(personID)+"/combined_credits", nil)
}

func (c *Client) mediaSub(ctx context.Context, mediaType, mediaID, resource string) (json.RawMessage, error) {
	return c.Get(ctx, url.PathEscape(mediaType)+"/"+url.PathEscape(mediaID)+"/"+resource, nil)
}
