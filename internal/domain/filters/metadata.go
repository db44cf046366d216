package filters

import (
	"strings"

	"github.com/sophialabs/xraydash/internal/domain/trace"
)

// All is the criterion that disables drill-down.
const All = "all"

var displayNames = map[string]string{
	"price_range": "Price Range",
	"min_rating":  "Min Rating",
	"min_reviews": "Min Reviews",
}

// DisplayName returns the human label for a filter id. Unknown ids have
// their underscores replaced by spaces.
func DisplayName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	return strings.ReplaceAll(id, "_", " ")
}

// Outcome is the result of one filter for one candidate.
type Outcome struct {
	Passed bool
	Detail string
}

// Metrics are the candidate figures shown next to a failed candidate.
// Nil fields were absent from the trace.
type Metrics struct {
	Price   *float64
	Rating  *trace.Value
	Reviews *float64
}

// Evaluation is one candidate considered by the filter step.
type Evaluation struct {
	Position int
	Title    string
	ASIN     string
	Metrics  *Metrics
	Results  map[string]Outcome
}

// Result returns the outcome for filter f and whether the candidate was
// evaluated against it.
func (e Evaluation) Result(f string) (Outcome, bool) {
	o, ok := e.Results[f]
	return o, ok
}

// FailedFilter reports whether the candidate failed filter f. A candidate
// that was not evaluated for f counts as failed.
func (e Evaluation) FailedFilter(f string) bool {
	o, ok := e.Results[f]
	return !ok || !o.Passed
}

// Metadata is the interpreted metadata of an apply_filters step.
type Metadata struct {
	FilterIDs   []string
	Configs     map[string]trace.Value
	FailedBy    map[string]int
	Evaluations []Evaluation
}

// FromStep interprets the metadata of step. The boolean is false when the
// drill-down engine does not apply: the step is not apply_filters, or it has
// no non-empty filters_applied mapping.
func FromStep(step *trace.Step) (*Metadata, bool) {
	if step == nil || !step.IsFilterStep() {
		return nil, false
	}
	applied := step.Metadata.Get("filters_applied")
	if applied.Kind() != trace.KindObject || applied.Len() == 0 {
		return nil, false
	}

	m := &Metadata{
		FilterIDs: applied.Keys(),
		Configs:   make(map[string]trace.Value, applied.Len()),
		FailedBy:  make(map[string]int),
	}
	for _, member := range applied.Members() {
		m.Configs[member.Key] = member.Value
	}

	for _, member := range step.Metadata.Get("failed_by_filter").Members() {
		if n, ok := member.Value.AsFloat(); ok && n > 0 {
			m.FailedBy[member.Key] = int(n)
		}
	}

	for i, item := range step.Metadata.Get("evaluations").Items() {
		m.Evaluations = append(m.Evaluations, parseEvaluation(i, item))
	}
	return m, true
}

func parseEvaluation(position int, v trace.Value) Evaluation {
	e := Evaluation{Position: position, Results: map[string]Outcome{}}
	e.Title, _ = v.Get("title").AsString()
	e.ASIN, _ = v.Get("asin").AsString()

	if metrics := v.Get("metrics"); metrics.Kind() == trace.KindObject {
		e.Metrics = &Metrics{}
		if price, ok := metrics.Get("price").AsFloat(); ok {
			e.Metrics.Price = &price
		}
		if rating := metrics.Get("rating"); rating.Kind() == trace.KindNumber {
			e.Metrics.Rating = &rating
		}
		if reviews, ok := metrics.Get("reviews").AsFloat(); ok {
			e.Metrics.Reviews = &reviews
		}
	}

	for _, member := range v.Get("filter_results").Members() {
		if member.Value.Kind() != trace.KindObject {
			continue
		}
		passed, _ := member.Value.Get("passed").AsBool()
		detail, _ := member.Value.Get("detail").AsString()
		e.Results[member.Key] = Outcome{Passed: passed, Detail: detail}
	}
	return e
}

// Has reports whether f is one of the step's filter criteria.
func (m *Metadata) Has(f string) bool {
	_, ok := m.Configs[f]
	return ok
}

// Total is the number of evaluated candidates.
func (m *Metadata) Total() int {
	return len(m.Evaluations)
}
