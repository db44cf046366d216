package trace_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophialabs/xraydash/internal/domain/trace"
)

const sampleExecution = `{
  "execution_id": "exec-1",
  "name": "competitor_selection",
  "started_at": "2025-01-15T10:30:00.123456",
  "ended_at": "2025-01-15T10:30:02.5",
  "sdk_version": "1.0.0",
  "steps": [
    {
      "name": "keyword_generation",
      "inputs": {"title": "Bottle", "category": "Sports"},
      "outputs": {"keywords": ["bottle", "flask"]},
      "reasoning": "Matched product type",
      "metadata": {},
      "timestamp": "2025-01-15T10:30:00.200000",
      "duration_ms": 12.6
    },
    {
      "name": "apply_filters",
      "inputs": {},
      "outputs": {"qualified": 1},
      "metadata": {"filters_applied": {"price_range": {}, "min_rating": {}}},
      "timestamp": "2025-01-15T10:30:01Z"
    }
  ],
  "metadata": {"reference_asin": "A1"}
}`

func TestParseExecution_Valid(t *testing.T) {
	exec, err := trace.ParseExecution([]byte(sampleExecution))
	require.NoError(t, err)

	assert.Equal(t, "exec-1", exec.ExecutionID)
	assert.Equal(t, "competitor_selection", exec.Name)
	assert.True(t, exec.Complete())
	assert.Equal(t, time.Date(2025, 1, 15, 10, 30, 0, 123456000, time.UTC), exec.StartedAt.Time)
	require.Len(t, exec.Steps, 2)

	first := exec.Steps[0]
	assert.Equal(t, "keyword_generation", first.Name)
	require.NotNil(t, first.Reasoning)
	assert.Equal(t, "Matched product type", *first.Reasoning)
	require.NotNil(t, first.DurationMs)
	assert.InDelta(t, 12.6, *first.DurationMs, 1e-9)
	assert.False(t, first.Degraded())
	assert.False(t, first.HasMetadata())

	second := exec.Steps[1]
	assert.True(t, second.IsFilterStep())
	assert.Nil(t, second.Reasoning)
	assert.Nil(t, second.DurationMs)
	assert.Equal(t, []string{"price_range", "min_rating"}, second.Metadata.Get("filters_applied").Keys())
}

func TestParseExecution_PreservesUnknownFields(t *testing.T) {
	exec, err := trace.ParseExecution([]byte(sampleExecution))
	require.NoError(t, err)
	require.Contains(t, exec.Extra, "sdk_version")

	out, err := json.Marshal(exec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "1.0.0", decoded["sdk_version"])
	assert.Equal(t, "exec-1", decoded["execution_id"])
}

func TestParseExecution_OpenExecution(t *testing.T) {
	exec, err := trace.ParseExecution([]byte(`{"execution_id":"e","name":"n","started_at":"2025-01-01T00:00:00","ended_at":null,"steps":[]}`))
	require.NoError(t, err)
	assert.False(t, exec.Complete())
	assert.Empty(t, exec.Steps)
	assert.False(t, exec.Metadata.IsDefined())
}

func TestParseExecution_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"not an object", `[1,2]`, "$"},
		{"missing id", `{"name":"n","started_at":"2025-01-01T00:00:00","steps":[]}`, "execution_id"},
		{"empty id", `{"execution_id":"","name":"n","started_at":"2025-01-01T00:00:00","steps":[]}`, "execution_id"},
		{"missing name", `{"execution_id":"e","started_at":"2025-01-01T00:00:00","steps":[]}`, "name"},
		{"missing started_at", `{"execution_id":"e","name":"n","steps":[]}`, "started_at"},
		{"bad started_at", `{"execution_id":"e","name":"n","started_at":"yesterday","steps":[]}`, "started_at"},
		{"ended before started", `{"execution_id":"e","name":"n","started_at":"2025-01-02T00:00:00","ended_at":"2025-01-01T00:00:00","steps":[]}`, "ended_at"},
		{"steps not array", `{"execution_id":"e","name":"n","started_at":"2025-01-01T00:00:00","steps":{}}`, "steps"},
		{"negative duration", `{"execution_id":"e","name":"n","started_at":"2025-01-01T00:00:00","steps":[{"name":"s","inputs":{},"outputs":{},"timestamp":"2025-01-01T00:00:00","duration_ms":-1}]}`, "steps[0].duration_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := trace.ParseExecution([]byte(tt.doc))
			require.Error(t, err)
			var verr *trace.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %T", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestParseExecution_DegradedSteps(t *testing.T) {
	doc := `{"execution_id":"e","name":"n","started_at":"2025-01-01T00:00:00","steps":[
		{"outputs":{}},
		"garbage",
		{"name":"ok","inputs":null,"outputs":[],"timestamp":"not a time"}
	]}`

	exec, err := trace.ParseExecution([]byte(doc))
	require.NoError(t, err)
	require.Len(t, exec.Steps, 3)

	assert.ElementsMatch(t, []string{"missing name", "missing inputs", "missing timestamp"}, exec.Steps[0].Problems())
	assert.Equal(t, []string{"step is not an object"}, exec.Steps[1].Problems())

	third := exec.Steps[2]
	assert.Equal(t, []string{"malformed timestamp"}, third.Problems())
	assert.True(t, third.Inputs.IsNull())
	assert.Equal(t, "not a time", third.Timestamp.Raw)
}

func TestParseExecutionList_KeepsOrderAndDropsInvalid(t *testing.T) {
	doc := `[
		{"execution_id":"b","name":"second","started_at":"2025-01-02T00:00:00","steps":[]},
		{"name":"no id","started_at":"2025-01-02T00:00:00","steps":[]},
		{"execution_id":"a","name":"first","started_at":"2025-01-01T00:00:00","steps":[]}
	]`

	execs, invalid, err := trace.ParseExecutionList([]byte(doc))
	require.NoError(t, err)
	require.Len(t, execs, 2)
	assert.Equal(t, "b", execs[0].ExecutionID)
	assert.Equal(t, "a", execs[1].ExecutionID)
	require.Len(t, invalid, 1)
	assert.Contains(t, invalid[0].Error(), "entry 1")
}

func TestParseExecutionList_NotAnArray(t *testing.T) {
	_, _, err := trace.ParseExecutionList([]byte(`{"detail":"boom"}`))
	assert.Error(t, err)
}
