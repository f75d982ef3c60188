package incidents

import (
	"context"
	"time"

	"github.com/bissquit/incident-feed/internal/domain"
	"github.com/bissquit/incident-feed/internal/pkg/ctxlog"
)

// Source delivers raw incident records from a read-only backend.
type Source interface {
	Fetch(ctx context.Context) ([]domain.RawIncident, error)
}

// Cache stores the most recently fetched raw incidents.
type Cache interface {
	Get(ctx context.Context) ([]domain.RawIncident, bool, error)
	Set(ctx context.Context, raws []domain.RawIncident) error
	Ping(ctx context.Context) error
}

// CachedSource serves raw incidents from a cache, falling back to the
// wrapped source on a miss. Cache failures never fail a fetch.
type CachedSource struct {
	source Source
	cache  Cache
}

// NewCachedSource wraps source with cache.
func NewCachedSource(source Source, cache Cache) *CachedSource {
	return &CachedSource{source: source, cache: cache}
}

// Fetch implements Source.
func (s *CachedSource) Fetch(ctx context.Context) ([]domain.RawIncident, error) {
	logger := ctxlog.FromContext(ctx)

	raws, ok, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		logger.Warn("incident cache read failed", "error", err)
		recordCacheLookup("error")
	case ok:
		recordCacheLookup("hit")
		return raws, nil
	default:
		recordCacheLookup("miss")
	}

	raws, err = s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, raws); err != nil {
		logger.Warn("incident cache write failed", "error", err)
	}

	return raws, nil
}

// LoadState is the state of a single incident fetch.
type LoadState string

// Load states.
const (
	LoadStateSuccess LoadState = "success"
	LoadStateError   LoadState = "error"
)

// FetchResult is the outcome of loading incidents: either the full enriched
// collection or an error, never partial data.
type FetchResult struct {
	State     LoadState
	Incidents []domain.Incident
	Err       error
	FetchedAt time.Time
}
