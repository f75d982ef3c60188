package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_IsValid(t *testing.T) {
	for _, s := range SeverityOrder {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Severity("").IsValid())
	assert.False(t, Severity("Critical").IsValid())
}

func TestParseSeverity(t *testing.T) {
	sev, err := ParseSeverity("high")
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, sev)

	_, err = ParseSeverity("urgent")
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	for _, s := range StatusOrder {
		parsed, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStatus("pending")
	assert.Error(t, err)
}

func TestRawIncident_DecodeIgnoresExtraFields(t *testing.T) {
	var raw RawIncident
	err := json.Unmarshal([]byte(`{"userId":3,"id":7,"title":"t","body":"b","assignee":"x"}`), &raw)
	require.NoError(t, err)
	assert.Equal(t, RawIncident{ID: 7, AuthorID: 3, Title: "t", Body: "b"}, raw)
}

func TestNewIncidentFormData(t *testing.T) {
	form := NewIncidentFormData()
	assert.Empty(t, form.Title)
	assert.Empty(t, form.Body)
	assert.Equal(t, SeverityMedium, form.Severity)
	assert.Equal(t, StatusOpen, form.Status)
}
