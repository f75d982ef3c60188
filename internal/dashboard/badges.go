package dashboard

import (
	"strings"

	"github.com/bissquit/incident-feed/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Badge is the display label and CSS class of a severity or status.
type Badge struct {
	Label string
	Class string
}

var severityClasses = map[domain.Severity]string{
	domain.SeverityCritical: "badge severity-critical",
	domain.SeverityHigh:     "badge severity-high",
	domain.SeverityMedium:   "badge severity-medium",
	domain.SeverityLow:      "badge severity-low",
	domain.SeverityInfo:     "badge severity-info",
}

var statusClasses = map[domain.Status]string{
	domain.StatusOpen:          "badge status-open",
	domain.StatusInvestigating: "badge status-investigating",
	domain.StatusResolved:      "badge status-resolved",
	domain.StatusClosed:        "badge status-closed",
}

// label title-cases an enum value. A Caser keeps state, so one is built per call.
func label(value string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(value, "_", " "))
}

// SeverityBadge returns the badge for s. Unknown values get a neutral badge.
func SeverityBadge(s domain.Severity) Badge {
	class, ok := severityClasses[s]
	if !ok {
		class = "badge"
	}
	return Badge{Label: label(string(s)), Class: class}
}

// StatusBadge returns the badge for s. Unknown values get a neutral badge.
func StatusBadge(s domain.Status) Badge {
	class, ok := statusClasses[s]
	if !ok {
		class = "badge"
	}
	return Badge{Label: label(string(s)), Class: class}
}

// Option is an entry of a <select> control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

func severityOptions(selected domain.Severity) []Option {
	opts := make([]Option, 0, len(domain.SeverityOrder))
	for _, s := range domain.SeverityOrder {
		opts = append(opts, Option{Value: string(s), Label: SeverityBadge(s).Label, Selected: s == selected})
	}
	return opts
}

func statusOptions(selected domain.Status) []Option {
	opts := make([]Option, 0, len(domain.StatusOrder))
	for _, s := range domain.StatusOrder {
		opts = append(opts, Option{Value: string(s), Label: StatusBadge(s).Label, Selected: s == selected})
	}
	return opts
}
