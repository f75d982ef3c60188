package incidents

import "github.com/bissquit/incident-feed/internal/domain"

// Aggregate counts incidents by the severities and statuses shown on the dashboard.
func Aggregate(incidents []domain.Incident) domain.DashboardStats {
	stats := domain.DashboardStats{Total: len(incidents)}

	for _, inc := range incidents {
		switch inc.Severity {
		case domain.SeverityCritical:
			stats.Critical++
		case domain.SeverityHigh:
			stats.High++
		}

		switch inc.Status {
		case domain.StatusOpen:
			stats.Open++
		case domain.StatusResolved:
			stats.Resolved++
		}
	}

	return stats
}
