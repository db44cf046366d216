package trace

import (
	"encoding/json"
	"fmt"
)

// ValidationError reports why an execution document was rejected.
type ValidationError struct {
	ExecutionID string
	Field       string
	Reason      string
}

func (e *ValidationError) Error() string {
	if e.ExecutionID != "" {
		return fmt.Sprintf("invalid execution %q: %s: %s", e.ExecutionID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid execution: %s: %s", e.Field, e.Reason)
}

var executionFields = map[string]bool{
	"execution_id": true, "name": true, "started_at": true,
	"ended_at": true, "steps": true, "metadata": true,
}

var stepFields = map[string]bool{
	"name": true, "inputs": true, "outputs": true, "reasoning": true,
	"duration_ms": true, "timestamp": true, "metadata": true,
}

// ParseExecution decodes and validates one execution document.
func ParseExecution(data []byte) (*Execution, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, &ValidationError{Field: "$", Reason: "execution must be a JSON object"}
	}
	return parseExecutionFields(fields)
}

// ParseExecutionList decodes an array of executions. Invalid entries are
// dropped and reported; valid entries keep the server's order.
func ParseExecutionList(data []byte) ([]*Execution, []error, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("execution list must be a JSON array: %w", err)
	}

	executions := make([]*Execution, 0, len(raw))
	var invalid []error
	for i, item := range raw {
		exec, err := ParseExecution(item)
		if err != nil {
			invalid = append(invalid, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		executions = append(executions, exec)
	}
	return executions, invalid, nil
}

func parseExecutionFields(fields map[string]json.RawMessage) (*Execution, error) {
	exec := &Execution{}

	id, ok := stringField(fields, "execution_id")
	if !ok || id == "" {
		return nil, &ValidationError{Field: "execution_id", Reason: "must be a non-empty string"}
	}
	exec.ExecutionID = id

	invalid := func(field, reason string) error {
		return &ValidationError{ExecutionID: id, Field: field, Reason: reason}
	}

	name, ok := stringField(fields, "name")
	if !ok {
		return nil, invalid("name", "must be a string")
	}
	exec.Name = name

	started, err := timestampField(fields, "started_at")
	if err != nil {
		return nil, invalid("started_at", err.Error())
	}
	if started == nil {
		return nil, invalid("started_at", "is required")
	}
	exec.StartedAt = *started

	ended, err := timestampField(fields, "ended_at")
	if err != nil {
		return nil, invalid("ended_at", err.Error())
	}
	if ended != nil && ended.Time.Before(started.Time) {
		return nil, invalid("ended_at", "precedes started_at")
	}
	exec.EndedAt = ended

	rawSteps, present := fields["steps"]
	if !present {
		return nil, invalid("steps", "is required")
	}
	var stepItems []json.RawMessage
	if err := json.Unmarshal(rawSteps, &stepItems); err != nil || stepItems == nil {
		return nil, invalid("steps", "must be an array")
	}
	exec.Steps = make([]Step, 0, len(stepItems))
	for i, item := range stepItems {
		step, err := parseStep(item)
		if err != nil {
			return nil, invalid(fmt.Sprintf("steps[%d].%s", i, err.Field), err.Reason)
		}
		exec.Steps = append(exec.Steps, step)
	}

	if raw, ok := fields["metadata"]; ok {
		if err := exec.Metadata.UnmarshalJSON(raw); err != nil {
			return nil, invalid("metadata", err.Error())
		}
	}

	exec.Extra = extraFields(fields, executionFields)
	return exec, nil
}

// parseStep returns an error only for values that make the whole execution
// untrustworthy. Missing required fields degrade the step instead.
func parseStep(data json.RawMessage) (Step, *ValidationError) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Step{problems: []string{"step is not an object"}}, nil
	}

	var step Step
	if name, ok := stringField(fields, "name"); ok && name != "" {
		step.Name = name
	} else {
		step.problems = append(step.problems, "missing name")
	}

	for _, f := range []struct {
		key string
		dst *Value
	}{{"inputs", &step.Inputs}, {"outputs", &step.Outputs}, {"metadata", &step.Metadata}} {
		raw, ok := fields[f.key]
		if !ok {
			if f.key != "metadata" {
				step.problems = append(step.problems, "missing "+f.key)
			}
			continue
		}
		if err := f.dst.UnmarshalJSON(raw); err != nil {
			step.problems = append(step.problems, "malformed "+f.key)
		}
	}

	ts, err := timestampField(fields, "timestamp")
	switch {
	case err != nil:
		step.problems = append(step.problems, "malformed timestamp")
		if ts != nil {
			step.Timestamp = *ts
		}
	case ts == nil:
		step.problems = append(step.problems, "missing timestamp")
	default:
		step.Timestamp = *ts
	}

	if raw, ok := fields["reasoning"]; ok {
		var reasoning *string
		if err := json.Unmarshal(raw, &reasoning); err != nil {
			step.problems = append(step.problems, "malformed reasoning")
		} else if reasoning != nil && *reasoning != "" {
			step.Reasoning = reasoning
		}
	}

	if raw, ok := fields["duration_ms"]; ok {
		var d *float64
		if err := json.Unmarshal(raw, &d); err != nil {
			step.problems = append(step.problems, "malformed duration_ms")
		} else if d != nil {
			if *d < 0 {
				return Step{}, &ValidationError{Field: "duration_ms", Reason: "must be non-negative"}
			}
			step.DurationMs = d
		}
	}

	step.Extra = extraFields(fields, stepFields)
	return step, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// timestampField returns nil when the field is absent or null.
func timestampField(fields map[string]json.RawMessage, key string) (*Timestamp, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("must be a string")
	}
	if s == nil {
		return nil, nil
	}
	ts, err := ParseTimestamp(*s)
	if err != nil {
		return &ts, err
	}
	return &ts, nil
}

func extraFields(fields map[string]json.RawMessage, known map[string]bool) map[string]json.RawMessage {
	var extra map[string]json.RawMessage
	for k, v := range fields {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return extra
}
