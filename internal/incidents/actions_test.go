package incidents

import (
	"context"
	"testing"
	"time"

	"github.com/bissquit/incident-feed/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instantActions() *Actions {
	return NewActions(ActionConfig{})
}

func TestDefaultActionConfig(t *testing.T) {
	config := DefaultActionConfig()
	assert.Equal(t, 1500*time.Millisecond, config.CreateDelay)
	assert.Equal(t, time.Second, config.ResolveDelay)
	assert.Zero(t, config.DeleteDelay)
}

func TestActions_Create(t *testing.T) {
	actions := instantActions()

	receipt, err := actions.Create(context.Background(), validForm())
	require.NoError(t, err)

	assert.Equal(t, ActionCreate, receipt.Action)
	assert.Zero(t, receipt.IncidentID)
	_, err = uuid.Parse(receipt.ID)
	assert.NoError(t, err)
	assert.False(t, receipt.CompletedAt.IsZero())
}

func TestActions_Create_Invalid(t *testing.T) {
	actions := instantActions()

	receipt, err := actions.Create(context.Background(), domain.NewIncidentFormData())
	require.Error(t, err)
	assert.Nil(t, receipt)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{FieldBody, FieldTitle}, validationErr.Fields.Fields())
}

func TestActions_Create_Cancelled(t *testing.T) {
	actions := NewActions(ActionConfig{CreateDelay: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := actions.Create(ctx, validForm())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestActions_Resolve(t *testing.T) {
	actions := instantActions()
	incident := Enrich(domain.RawIncident{ID: 4}) // open

	receipt, err := actions.Resolve(context.Background(), incident)
	require.NoError(t, err)
	assert.Equal(t, ActionResolve, receipt.Action)
	assert.Equal(t, 4, receipt.IncidentID)
	assert.False(t, actions.Busy(4))
}

func TestActions_Resolve_AlreadyResolved(t *testing.T) {
	actions := instantActions()
	incident := Enrich(domain.RawIncident{ID: 2}) // resolved
	require.Equal(t, domain.StatusResolved, incident.Status)

	_, err := actions.Resolve(context.Background(), incident)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestActions_Delete(t *testing.T) {
	actions := instantActions()

	receipt, err := actions.Delete(context.Background(), Enrich(domain.RawIncident{ID: 2}))
	require.NoError(t, err)
	assert.Equal(t, ActionDelete, receipt.Action)
	assert.Equal(t, 2, receipt.IncidentID)
}

func TestActions_BusyRejectsConcurrentAction(t *testing.T) {
	actions := NewActions(ActionConfig{ResolveDelay: time.Minute})
	incident := Enrich(domain.RawIncident{ID: 4})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := actions.Resolve(ctx, incident)
		done <- err
	}()

	require.Eventually(t, func() bool { return actions.Busy(4) }, time.Second, 5*time.Millisecond)

	_, err := actions.Delete(context.Background(), incident)
	assert.ErrorIs(t, err, ErrActionInProgress)

	// other incidents are not blocked
	_, err = actions.Delete(context.Background(), Enrich(domain.RawIncident{ID: 8}))
	assert.NoError(t, err)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, actions.Busy(4))
}

func TestSleep(t *testing.T) {
	assert.True(t, sleep(context.Background(), 0))
	assert.True(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, 0))
	assert.False(t, sleep(ctx, time.Minute))
}
