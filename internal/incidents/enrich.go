// Package incidents provides incident enrichment, dashboard derivation, form
// validation and the HTTP API over a read-only incident source.
package incidents

import (
	"time"

	"github.com/bissquit/incident-feed/internal/domain"
)

// AnchorDate is the fixed reference date used to derive creation timestamps.
var AnchorDate = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

const historyDays = 30

// Enrich derives severity, status and creation time from the incident id.
// The result depends on the id only.
func Enrich(raw domain.RawIncident) domain.Incident {
	return domain.Incident{
		RawIncident: raw,
		Severity:    SeverityFor(raw.ID),
		Status:      StatusFor(raw.ID),
		CreatedAt:   CreatedAtFor(raw.ID),
	}
}

// EnrichAll enriches every raw incident, preserving order.
func EnrichAll(raws []domain.RawIncident) []domain.Incident {
	result := make([]domain.Incident, 0, len(raws))
	for _, raw := range raws {
		result = append(result, Enrich(raw))
	}
	return result
}

// SeverityFor returns SeverityOrder[id mod 5].
func SeverityFor(id int) domain.Severity {
	return domain.SeverityOrder[mod(id, len(domain.SeverityOrder))]
}

// StatusFor returns StatusOrder[(id*3) mod 4].
func StatusFor(id int) domain.Status {
	n := len(domain.StatusOrder)
	// (id*3) mod n computed without the multiplication overflowing
	return domain.StatusOrder[mod(mod(id, n)*3, n)]
}

// CreatedAtFor returns AnchorDate minus (id mod 30) days.
func CreatedAtFor(id int) time.Time {
	return AnchorDate.AddDate(0, 0, -mod(id, historyDays))
}

// mod returns the non-negative remainder of a divided by n.
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
