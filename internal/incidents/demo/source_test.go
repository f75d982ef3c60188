package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Fetch(t *testing.T) {
	raws, err := NewSource(0).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, DefaultCount)

	for i, raw := range raws {
		assert.Equal(t, i+1, raw.ID)
		assert.NotEmpty(t, raw.Title)
		assert.NotEmpty(t, raw.Body)
	}

	assert.Equal(t, "Unauthorized Access Attempt Detected on Production Server", raws[0].Title)
	assert.Equal(t, 2, raws[0].AuthorID)
	assert.Equal(t, "Ransomware Activity Detected in Network Segment", raws[9].Title)
	assert.Equal(t, 1, raws[9].AuthorID)
}

func TestIncident_CyclesCatalogue(t *testing.T) {
	assert.Equal(t, Incident(1).Title, Incident(11).Title)
	assert.Equal(t, Incident(3).Body, Incident(23).Body)
	assert.Equal(t, 11, Incident(11).ID)
}

func TestSource_Fetch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource(5).Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
