package incidents

import (
	"fmt"
	"strings"

	"github.com/bissquit/incident-feed/internal/domain"
)

// Empty state texts.
const (
	EmptyTitle           = "No incidents found"
	emptyNoDataMessage   = "There are no incidents to display at this time."
	emptyNoMatchTemplate = "No incidents match %q. Try adjusting your search terms."
	emptyNoFilterMatch   = "No incidents match the selected filters. Try adjusting your filters."
)

// ViewQuery holds the user-controlled inputs of the dashboard list.
// Zero Severity or Status means "all".
type ViewQuery struct {
	Query    string
	Severity domain.Severity
	Status   domain.Status
}

// HasFilters reports whether any narrowing input is set.
func (q ViewQuery) HasFilters() bool {
	return q.Query != "" || q.Severity != "" || q.Status != ""
}

// DashboardView is the derived state handed to the presentation layer.
type DashboardView struct {
	Query        ViewQuery
	Displayed    []domain.Incident
	Stats        domain.DashboardStats
	EmptyTitle   string
	EmptyMessage string
}

// IsEmpty reports whether no incident is displayed.
func (v DashboardView) IsEmpty() bool {
	return len(v.Displayed) == 0
}

// ViewState owns the fetched incident collection and the current query.
// Every change is followed by a full re-derivation in Derive.
type ViewState struct {
	incidents []domain.Incident
	query     ViewQuery
}

// NewViewState creates a view state over the fetched incidents.
func NewViewState(incidents []domain.Incident) *ViewState {
	return &ViewState{incidents: incidents}
}

// SetIncidents replaces the fetched collection.
func (s *ViewState) SetIncidents(incidents []domain.Incident) {
	s.incidents = incidents
}

// SetQuery replaces the query inputs.
func (s *ViewState) SetQuery(q ViewQuery) {
	s.query = q
}

// ClearQuery resets the free-text search, keeping severity and status filters.
func (s *ViewState) ClearQuery() {
	s.query.Query = ""
}

// Derive computes the displayed subset and the stats.
// Stats are computed over the full collection, not the displayed subset.
func (s *ViewState) Derive() DashboardView {
	displayed := Filter(s.incidents, s.query.Query)
	displayed = FilterBy(displayed, s.query.Severity, s.query.Status)

	view := DashboardView{
		Query:     s.query,
		Displayed: displayed,
		Stats:     Aggregate(s.incidents),
	}

	if view.IsEmpty() {
		view.EmptyTitle = EmptyTitle
		switch {
		case s.query.Query != "":
			view.EmptyMessage = fmt.Sprintf(emptyNoMatchTemplate, s.query.Query)
		case s.query.HasFilters():
			view.EmptyMessage = emptyNoFilterMatch
		default:
			view.EmptyMessage = emptyNoDataMessage
		}
	}

	return view
}

// Filter returns incidents whose title or body contains query, ignoring case.
// An empty query returns the input unchanged.
func Filter(incidents []domain.Incident, query string) []domain.Incident {
	if query == "" {
		return incidents
	}

	needle := strings.ToLower(query)
	result := make([]domain.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if strings.Contains(strings.ToLower(inc.Title), needle) ||
			strings.Contains(strings.ToLower(inc.Body), needle) {
			result = append(result, inc)
		}
	}
	return result
}

// FilterBy narrows incidents to the given severity and status.
// Empty values match everything.
func FilterBy(incidents []domain.Incident, severity domain.Severity, status domain.Status) []domain.Incident {
	if severity == "" && status == "" {
		return incidents
	}

	result := make([]domain.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if severity != "" && inc.Severity != severity {
			continue
		}
		if status != "" && inc.Status != status {
			continue
		}
		result = append(result, inc)
	}
	return result
}
