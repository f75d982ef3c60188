package incidents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bissquit/incident-feed/internal/domain"
	"github.com/bissquit/incident-feed/internal/pkg/ctxlog"
	"github.com/google/uuid"
)

// ActionType identifies a simulated write operation.
type ActionType string

// Action types.
const (
	ActionCreate  ActionType = "create"
	ActionResolve ActionType = "resolve"
	ActionDelete  ActionType = "delete"
)

// ActionConfig holds the simulated latency of each action.
type ActionConfig struct {
	CreateDelay  time.Duration
	ResolveDelay time.Duration
	DeleteDelay  time.Duration
}

// DefaultActionConfig returns default action delays.
func DefaultActionConfig() ActionConfig {
	return ActionConfig{
		CreateDelay:  1500 * time.Millisecond,
		ResolveDelay: 1 * time.Second,
		DeleteDelay:  0,
	}
}

// ActionReceipt acknowledges a completed simulated action.
type ActionReceipt struct {
	ID          string     `json:"id"`
	Action      ActionType `json:"action"`
	IncidentID  int        `json:"incident_id,omitempty"`
	CompletedAt time.Time  `json:"completed_at"`
}

// Actions runs simulated create/resolve/delete operations. Nothing is written
// anywhere: an action only waits its delay while the incident is marked busy.
type Actions struct {
	config ActionConfig
	now    func() time.Time

	mu   sync.Mutex
	busy map[int]ActionType
}

// NewActions creates a simulated action runner.
func NewActions(config ActionConfig) *Actions {
	return &Actions{
		config: config,
		now:    time.Now,
		busy:   make(map[int]ActionType),
	}
}

// Busy reports whether an action is running for the incident.
func (a *Actions) Busy(incidentID int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.busy[incidentID]
	return ok
}

// Create validates the form and simulates submitting it.
func (a *Actions) Create(ctx context.Context, form domain.IncidentFormData) (*ActionReceipt, error) {
	if errs := Validate(form); len(errs) > 0 {
		recordAction(ActionCreate, "invalid")
		return nil, &ValidationError{Fields: errs}
	}

	if !sleep(ctx, a.config.CreateDelay) {
		recordAction(ActionCreate, "cancelled")
		return nil, fmt.Errorf("create incident: %w", ctx.Err())
	}

	ctxlog.FromContext(ctx).Info("incident submitted",
		"title", form.Title,
		"severity", form.Severity,
		"status", form.Status,
	)
	recordAction(ActionCreate, "success")

	return a.receipt(ActionCreate, 0), nil
}

// Resolve simulates resolving an incident.
func (a *Actions) Resolve(ctx context.Context, incident domain.Incident) (*ActionReceipt, error) {
	if incident.Status == domain.StatusResolved {
		recordAction(ActionResolve, "rejected")
		return nil, ErrAlreadyResolved
	}
	return a.run(ctx, ActionResolve, incident.ID, a.config.ResolveDelay)
}

// Delete simulates deleting an incident.
func (a *Actions) Delete(ctx context.Context, incident domain.Incident) (*ActionReceipt, error) {
	return a.run(ctx, ActionDelete, incident.ID, a.config.DeleteDelay)
}

func (a *Actions) run(ctx context.Context, action ActionType, incidentID int, delay time.Duration) (*ActionReceipt, error) {
	if !a.acquire(incidentID, action) {
		recordAction(action, "busy")
		return nil, ErrActionInProgress
	}
	defer a.release(incidentID)

	if !sleep(ctx, delay) {
		recordAction(action, "cancelled")
		return nil, fmt.Errorf("%s incident %d: %w", action, incidentID, ctx.Err())
	}

	ctxlog.FromContext(ctx).Info("incident action completed",
		"action", action,
		"incident_id", incidentID,
	)
	recordAction(action, "success")

	return a.receipt(action, incidentID), nil
}

func (a *Actions) acquire(incidentID int, action ActionType) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.busy[incidentID]; ok {
		return false
	}
	a.busy[incidentID] = action
	return true
}

func (a *Actions) release(incidentID int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.busy, incidentID)
}

func (a *Actions) receipt(action ActionType, incidentID int) *ActionReceipt {
	return &ActionReceipt{
		ID:          uuid.NewString(),
		Action:      action,
		IncidentID:  incidentID,
		CompletedAt: a.now().UTC(),
	}
}

// sleep waits for d or context cancellation. Returns false if cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
