// Package domain contains the incident data model shared across the service.
package domain

import (
	"fmt"
	"time"
)

// Severity represents the urgency of an incident.
type Severity string

// Severity levels, most urgent first.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// SeverityOrder lists all severities ordered by urgency.
var SeverityOrder = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// IsValid checks if the severity is valid.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// ParseSeverity converts a string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", fmt.Errorf("invalid severity: %q", s)
	}
	return sev, nil
}

// Status represents the lifecycle stage of an incident.
type Status string

// Incident statuses.
const (
	StatusOpen          Status = "open"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
)

// StatusOrder lists all statuses in lifecycle order.
var StatusOrder = []Status{
	StatusOpen,
	StatusInvestigating,
	StatusResolved,
	StatusClosed,
}

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInvestigating, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid status: %q", s)
	}
	return st, nil
}

// RawIncident is an incident record as delivered by a data source.
type RawIncident struct {
	ID       int    `json:"id"`
	AuthorID int    `json:"userId"`
	Title    string `json:"title"`
	Body     string `json:"body"`
}

// Incident is a raw incident with its derived classification fields.
type Incident struct {
	RawIncident
	Severity  Severity  `json:"severity"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardStats holds summary counts over an incident collection.
type DashboardStats struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Open     int `json:"open"`
	Resolved int `json:"resolved"`
}

// IncidentFormData is the input of the incident creation form.
type IncidentFormData struct {
	Title    string   `json:"title" validate:"notblank,min=10"`
	Body     string   `json:"body" validate:"notblank,min=20"`
	Severity Severity `json:"severity" validate:"required,oneof=critical high medium low info"`
	Status   Status   `json:"status" validate:"required,oneof=open investigating resolved closed"`
}

// NewIncidentFormData returns form data with the default selections.
func NewIncidentFormData() IncidentFormData {
	return IncidentFormData{
		Severity: SeverityMedium,
		Status:   StatusOpen,
	}
}
