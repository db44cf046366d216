package trace

import (
	"encoding/json"
)

// FilterStepName is the step whose metadata carries per-filter evaluations.
const FilterStepName = "apply_filters"

// Execution is one recorded run of the pipeline. It is a read-only snapshot.
type Execution struct {
	ExecutionID string
	Name        string
	StartedAt   Timestamp
	EndedAt     *Timestamp
	Steps       []Step
	Metadata    Value

	// Extra holds fields this version does not interpret.
	Extra map[string]json.RawMessage
}

// Complete reports whether the execution has an end timestamp.
func (e *Execution) Complete() bool {
	return e.EndedAt != nil
}

// Step returns the step at index i, or nil when out of range.
func (e *Execution) Step(i int) *Step {
	if i < 0 || i >= len(e.Steps) {
		return nil
	}
	return &e.Steps[i]
}

// Step is one stage of the pipeline.
type Step struct {
	Name       string
	Inputs     Value
	Outputs    Value
	Reasoning  *string
	DurationMs *float64
	Timestamp  Timestamp
	Metadata   Value

	Extra map[string]json.RawMessage

	problems []string
}

// Problems lists the required fields that were missing or malformed.
func (s *Step) Problems() []string {
	return s.problems
}

// Degraded reports whether the step should be rendered as a degraded panel.
func (s *Step) Degraded() bool {
	return len(s.problems) > 0
}

// IsFilterStep reports whether the step is an apply_filters step.
func (s *Step) IsFilterStep() bool {
	return s.Name == FilterStepName
}

// HasMetadata reports whether metadata is present and non-empty.
func (s *Step) HasMetadata() bool {
	switch s.Metadata.Kind() {
	case KindUndefined, KindNull:
		return false
	case KindObject, KindArray:
		return s.Metadata.Len() > 0
	default:
		return true
	}
}

func (e Execution) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 6+len(e.Extra))
	for k, v := range e.Extra {
		out[k] = v
	}
	out["execution_id"] = e.ExecutionID
	out["name"] = e.Name
	out["started_at"] = e.StartedAt
	if e.EndedAt != nil {
		out["ended_at"] = *e.EndedAt
	} else {
		out["ended_at"] = nil
	}
	steps := e.Steps
	if steps == nil {
		steps = []Step{}
	}
	out["steps"] = steps
	if e.Metadata.IsDefined() {
		out["metadata"] = e.Metadata
	}
	return json.Marshal(out)
}

func (s Step) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 7+len(s.Extra))
	for k, v := range s.Extra {
		out[k] = v
	}
	out["name"] = s.Name
	out["inputs"] = s.Inputs
	out["outputs"] = s.Outputs
	out["reasoning"] = s.Reasoning
	out["duration_ms"] = s.DurationMs
	out["timestamp"] = s.Timestamp
	if s.Metadata.IsDefined() {
		out["metadata"] = s.Metadata
	}
	return json.Marshal(out)
}
