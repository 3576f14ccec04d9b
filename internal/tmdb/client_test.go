package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:  srv.URL,
		APIKey:   "test-key",
		Language: "en-US",
		Timeout:  2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("NewClient without api key succeeded")
	}
}

func TestEndpointsAndParams(t *testing.T) {
	tests := []struct {
		name      string
		call      func(c *Client) error
		wantPath  string
		wantQuery map[string]string
	}{
		{
			name:      "list",
			call:      func(c *Client) error { _, err := c.MediaList(context.Background(), "movie", "popular", 2); return err },
			wantPath:  "/movie/popular",
			wantQuery: map[string]string{"page": "2"},
		},
		{
			name:      "list page defaults to one",
			call:      func(c *Client) error { _, err := c.MediaList(context.Background(), "tv", "top_rated", 0); return err },
			wantPath:  "/tv/top_rated",
			wantQuery: map[string]string{"page": "1"},
		},
		{
			name:     "detail",
			call:     func(c *Client) error { _, err := c.MediaDetail(context.Background(), "movie", "27205"); return err },
			wantPath: "/movie/27205",
		},
		{
			name:     "genres",
			call:     func(c *Client) error { _, err := c.MediaGenres(context.Background(), "tv"); return err },
			wantPath: "/genre/tv/list",
		},
		{
			name: "recommendations",
			call: func(c *Client) error {
				_, err := c.MediaRecommendations(context.Background(), "movie", "1")
				return err
			},
			wantPath: "/movie/1/recommendations",
		},
		{
			name:      "search",
			call:      func(c *Client) error { _, err := c.MediaSearch(context.Background(), "person", "nolan", 3); return err },
			wantPath:  "/search/person",
			wantQuery: map[string]string{"query": "nolan", "page": "3"},
		},
		{
			name:     "person medias",
			call:     func(c *Client) error { _, err := c.PersonMedias(context.Background(), "525"); return err },
			wantPath: "/person/525/combined_credits",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotKey, gotLang string
			var gotQuery map[string]string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotKey = r.URL.Query().Get("api_key")
				gotLang = r.URL.Query().Get("language")
				gotQuery = map[string]string{}
				for k := range tt.wantQuery {
					gotQuery[k] = r.URL.Query().Get(k)
				}
				_, _ = w.Write([]byte(`{"ok":true}`))
			})

			if err := tt.call(c); err != nil {
				t.Fatalf("call: %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			if gotKey != "test-key" || gotLang != "en-US" {
				t.Errorf("api_key, language = %q, %q", gotKey, gotLang)
			}
			for k, want := range tt.wantQuery {
				if gotQuery[k] != want {
					t.Errorf("query %s = %q, want %q", k, gotQuery[k], want)
				}
			}
		})
	}
}

func TestGetReturnsBodyUnchanged(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":27205,"title":"Inception"}`))
	})

	body, err := c.MediaDetail(context.Background(), "movie", "27205")
	if err != nil {
		t.Fatalf("MediaDetail: %v", err)
	}
	if string(body) != `{"id":27205,"title":"Inception"}` {
		t.Errorf("body = %s", body)
	}
}

func TestRetriesOnceOnGatewayError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})

	if _, err := c.MediaGenres(context.Background(), "movie"); err != nil {
		t.Fatalf("MediaGenres: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestRetryIsBoundedToOne(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.MediaGenres(context.Background(), "movie")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("err = %v, want StatusError 503", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.MediaDetail(context.Background(), "movie", "0")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("err = %v, want StatusError 404", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestTimeoutBoundsAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	start := time.Now()
	if _, err := c.MediaGenres(context.Background(), "movie"); err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("elapsed = %v, want bounded by timeout and one retry", elapsed)
	}
}

func TestInvalidJSONIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	if _, err := c.PersonDetail(context.Background(), "1"); err == nil {
		t.Fatal("expected error for non-json body")
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < breakerConsecutiveFailures; i++ {
		_, _ = c.MediaGenres(context.Background(), "movie")
	}
	before := calls.Load()

	_, err := c.MediaGenres(context.Background(), "movie")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want ErrOpenState", err)
	}
	if calls.Load() != before {
		t.Error("request reached upstream while breaker open")
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < breakerConsecutiveFailures*2; i++ {
		_, err := c.MediaDetail(context.Background(), "movie", "0")
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("breaker opened after %d not-found responses", i)
		}
	}
}
