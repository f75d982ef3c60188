package incidents

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/incident-feed/internal/domain"
	"github.com/bissquit/incident-feed/internal/pkg/ctxlog"
)

// Service implements incident dashboard logic on top of a Source.
type Service struct {
	source  Source
	actions *Actions
	now     func() time.Time
}

// NewService creates a new incident service.
func NewService(source Source, actions *Actions) *Service {
	return &Service{
		source:  source,
		actions: actions,
		now:     time.Now,
	}
}

// Now returns the reference time used for relative timestamps.
func (s *Service) Now() time.Time {
	return s.now()
}

// Load fetches and enriches the incident collection.
func (s *Service) Load(ctx context.Context) FetchResult {
	start := time.Now()

	raws, err := s.source.Fetch(ctx)
	duration := time.Since(start)

	if err != nil {
		recordFetch("error", duration)
		ctxlog.FromContext(ctx).Error("incident fetch failed",
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return FetchResult{State: LoadStateError, Err: err}
	}

	recordFetch("success", duration)
	ctxlog.FromContext(ctx).Debug("incidents fetched",
		"count", len(raws),
		"duration_ms", duration.Milliseconds(),
	)

	return FetchResult{
		State:     LoadStateSuccess,
		Incidents: EnrichAll(raws),
		FetchedAt: s.now(),
	}
}

func (s *Service) loadAll(ctx context.Context) ([]domain.Incident, error) {
	res := s.Load(ctx)
	if res.Err != nil {
		return nil, fmt.Errorf("load incidents: %w", res.Err)
	}
	return res.Incidents, nil
}

// Dashboard derives the list view for the given query.
func (s *Service) Dashboard(ctx context.Context, query ViewQuery) (DashboardView, error) {
	incidents, err := s.loadAll(ctx)
	if err != nil {
		return DashboardView{}, err
	}

	state := NewViewState(incidents)
	state.SetQuery(query)
	return state.Derive(), nil
}

// Stats returns summary counts over all incidents.
func (s *Service) Stats(ctx context.Context) (domain.DashboardStats, error) {
	incidents, err := s.loadAll(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	return Aggregate(incidents), nil
}

// Get returns a single enriched incident.
func (s *Service) Get(ctx context.Context, id int) (domain.Incident, error) {
	incidents, err := s.loadAll(ctx)
	if err != nil {
		return domain.Incident{}, err
	}

	for _, inc := range incidents {
		if inc.ID == id {
			return inc, nil
		}
	}
	return domain.Incident{}, ErrIncidentNotFound
}

// IsBusy reports whether a simulated action is running for the incident.
func (s *Service) IsBusy(id int) bool {
	return s.actions.Busy(id)
}

// Create simulates submitting a new incident.
func (s *Service) Create(ctx context.Context, form domain.IncidentFormData) (*ActionReceipt, error) {
	return s.actions.Create(ctx, form)
}

// Resolve simulates resolving an incident. The incident itself is unchanged.
func (s *Service) Resolve(ctx context.Context, id int) (*ActionReceipt, error) {
	incident, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.actions.Resolve(ctx, incident)
}

// Delete simulates deleting an incident. The incident itself is unchanged.
func (s *Service) Delete(ctx context.Context, id int) (*ActionReceipt, error) {
	incident, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.actions.Delete(ctx, incident)
}
