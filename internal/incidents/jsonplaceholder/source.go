// Package jsonplaceholder provides an incident source backed by a read-only
// JSON collection endpoint such as https://jsonplaceholder.typicode.com/posts.
package jsonplaceholder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bissquit/incident-feed/internal/domain"
	"github.com/bissquit/incident-feed/internal/incidents"
	"github.com/bissquit/incident-feed/internal/pkg/ctxlog"
	"golang.org/x/time/rate"
)

const (
	// DefaultURL is the public demo collection endpoint.
	DefaultURL = "https://jsonplaceholder.typicode.com/posts"

	defaultTimeout   = 10 * time.Second
	defaultRateLimit = 5.0
	defaultBurst     = 5

	maxErrorBodyBytes = 512
)

// Config holds source configuration.
type Config struct {
	URL       string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 uses the default
	Burst     int
}

// Source fetches raw incidents with a single GET request.
type Source struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSource creates a new source.
func NewSource(config Config) *Source {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RateLimit == 0 {
		config.RateLimit = defaultRateLimit
	}
	if config.Burst <= 0 {
		config.Burst = defaultBurst
	}

	return &Source{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst),
	}
}

// post is the upstream record shape. Fields not listed here are ignored.
type post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Fetch implements incidents.Source.
func (s *Source) Fetch(ctx context.Context) ([]domain.RawIncident, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", incidents.ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", incidents.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %v", incidents.ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var posts []post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", incidents.ErrFetchFailed, err)
	}

	raws := make([]domain.RawIncident, 0, len(posts))
	for _, p := range posts {
		raws = append(raws, domain.RawIncident{
			ID:       p.ID,
			AuthorID: p.UserID,
			Title:    p.Title,
			Body:     p.Body,
		})
	}

	ctxlog.FromContext(ctx).Debug("incidents fetched from source",
		"url", s.config.URL,
		"count", len(raws),
	)
	return raws, nil
}

// StatusError reports a non-2xx response from the source.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("incident source returned status %d", e.Code)
}

// Unwrap makes StatusError match incidents.ErrFetchFailed.
func (e *StatusError) Unwrap() error {
	return incidents.ErrFetchFailed
}
