package incidents

import (
	"math"
	"testing"
	"time"

	"github.com/bissquit/incident-feed/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		id       int
		expected domain.Severity
	}{
		{0, domain.SeverityCritical},
		{1, domain.SeverityHigh},
		{2, domain.SeverityMedium},
		{3, domain.SeverityLow},
		{4, domain.SeverityInfo},
		{5, domain.SeverityCritical},
		{10, domain.SeverityCritical},
		{-1, domain.SeverityInfo},
		{-5, domain.SeverityCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SeverityFor(tt.id), "id %d", tt.id)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		id       int
		expected domain.Status
	}{
		{0, domain.StatusOpen},
		{1, domain.StatusClosed},
		{2, domain.StatusResolved},
		{3, domain.StatusInvestigating},
		{4, domain.StatusOpen},
		{8, domain.StatusOpen},
		{10, domain.StatusResolved},
		{-1, domain.StatusInvestigating},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, StatusFor(tt.id), "id %d", tt.id)
	}
}

func TestCreatedAtFor(t *testing.T) {
	tests := []struct {
		id       int
		expected time.Time
	}{
		{0, AnchorDate},
		{1, time.Date(2026, time.January, 14, 0, 0, 0, 0, time.UTC)},
		{15, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{29, time.Date(2025, time.December, 17, 0, 0, 0, 0, time.UTC)},
		{30, AnchorDate},
		{-1, time.Date(2025, time.December, 17, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		assert.True(t, tt.expected.Equal(CreatedAtFor(tt.id)), "id %d: got %v", tt.id, CreatedAtFor(tt.id))
	}
}

func TestEnrich_Properties(t *testing.T) {
	ids := []int{math.MinInt, -31, -1, 0, 1, 7, 29, 30, 31, 100, 99999, math.MaxInt}

	for _, id := range ids {
		raw := domain.RawIncident{ID: id, AuthorID: 3, Title: "t", Body: "b"}
		inc := Enrich(raw)

		assert.Equal(t, raw, inc.RawIncident, "raw fields are kept for id %d", id)
		assert.True(t, inc.Severity.IsValid(), "severity for id %d", id)
		assert.True(t, inc.Status.IsValid(), "status for id %d", id)
		assert.False(t, inc.CreatedAt.After(AnchorDate), "created_at after anchor for id %d", id)
		assert.True(t, inc.CreatedAt.After(AnchorDate.AddDate(0, 0, -30)), "created_at too old for id %d", id)
	}
}

func TestEnrich_Deterministic(t *testing.T) {
	a := Enrich(domain.RawIncident{ID: 42, AuthorID: 1, Title: "first"})
	b := Enrich(domain.RawIncident{ID: 42, AuthorID: 9, Title: "second"})

	assert.Equal(t, a.Severity, b.Severity)
	assert.Equal(t, a.Status, b.Status)
	assert.Equal(t, a.CreatedAt, b.CreatedAt)
}

func TestEnrichAll_PreservesOrder(t *testing.T) {
	raws := []domain.RawIncident{{ID: 3}, {ID: 1}, {ID: 2}}

	result := EnrichAll(raws)

	assert.Len(t, result, 3)
	assert.Equal(t, 3, result[0].ID)
	assert.Equal(t, 1, result[1].ID)
	assert.Equal(t, 2, result[2].ID)
}

func TestEnrichAll_Empty(t *testing.T) {
	result := EnrichAll(nil)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}
