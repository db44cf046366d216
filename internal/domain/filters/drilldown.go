package filters

import (
	"fmt"
	"strconv"
	"strings"
)

// Option is one entry of the criterion selector.
type Option struct {
	ID     string
	Name   string
	Failed int
	Passed int
	Total  int
}

// Label renders the option as shown in the selector, e.g.
// "Price Range (2 failed, 3 passed)" or "All Candidates (5)".
func (o Option) Label() string {
	if o.ID == All {
		return fmt.Sprintf("%s (%d)", o.Name, o.Total)
	}
	var badges []string
	if o.ShowFailed() {
		badges = append(badges, strconv.Itoa(o.Failed)+" failed")
	}
	if o.ShowPassed() {
		badges = append(badges, strconv.Itoa(o.Passed)+" passed")
	}
	if len(badges) == 0 {
		return o.Name
	}
	return o.Name + " (" + strings.Join(badges, ", ") + ")"
}

func (o Option) ShowFailed() bool { return o.ID != All && o.Failed > 0 }
func (o Option) ShowPassed() bool { return o.ID != All && o.Passed > 0 }

// Options returns "all" followed by one option per filter in
// filters_applied key order. Counts come from failed_by_filter.
func (m *Metadata) Options() []Option {
	total := m.Total()
	opts := make([]Option, 0, len(m.FilterIDs)+1)
	opts = append(opts, Option{ID: All, Name: "All Candidates", Total: total})
	for _, id := range m.FilterIDs {
		failed := m.FailedBy[id]
		opts = append(opts, Option{
			ID:     id,
			Name:   DisplayName(id),
			Failed: failed,
			Passed: total - failed,
			Total:  total,
		})
	}
	return opts
}

// Failed returns the evaluations that failed filter f, in evaluation order.
// The returned slice is a copy; the trace is never modified.
func (m *Metadata) Failed(f string) []Evaluation {
	var out []Evaluation
	for _, e := range m.Evaluations {
		if e.FailedFilter(f) {
			out = append(out, e)
		}
	}
	return out
}

// CandidatePredicate narrows a drill-down further. Nil accepts everything.
type CandidatePredicate func(Evaluation) bool

// FailedCandidate is one row of the drill-down panel.
type FailedCandidate struct {
	Evaluation
	Detail       string
	HasDetail    bool
	NotEvaluated bool
}

// DrillDown is the derived panel for one criterion.
type DrillDown struct {
	Criterion  string
	Name       string
	Candidates []FailedCandidate
}

// Header is the panel title, e.g. "2 candidate(s) failed Price Range".
func (d DrillDown) Header() string {
	return fmt.Sprintf("%d candidate(s) failed %s", len(d.Candidates), d.Name)
}

// EmptyMessage is shown when no candidate failed the criterion.
func (d DrillDown) EmptyMessage() string {
	return fmt.Sprintf("No candidates failed %s.", d.Name)
}

func (d DrillDown) Empty() bool { return len(d.Candidates) == 0 }

// DrillDown derives the panel for criterion f. The second result is false
// when f is "all" or not one of the step's criteria, in which case no panel
// is shown.
func (m *Metadata) DrillDown(f string, keep CandidatePredicate) (DrillDown, bool) {
	if f == All || !m.Has(f) {
		return DrillDown{}, false
	}
	d := DrillDown{Criterion: f, Name: DisplayName(f)}
	for _, e := range m.Failed(f) {
		if keep != nil && !keep(e) {
			continue
		}
		o, evaluated := e.Result(f)
		d.Candidates = append(d.Candidates, FailedCandidate{
			Evaluation:   e,
			Detail:       o.Detail,
			HasDetail:    evaluated && o.Detail != "",
			NotEvaluated: !evaluated,
		})
	}
	return d, true
}

// Discrepancy records a filter whose derived failure count differs from
// the count reported in failed_by_filter.
type Discrepancy struct {
	Filter       string `json:"filter"`
	Reported     int    `json:"reported"`
	Derived      int    `json:"derived"`
	NotEvaluated int    `json:"not_evaluated"`
}

// Reconcile compares failed(f) with failed_by_filter[f] for every filter.
// Differences usually come from candidates missing a filter_results entry,
// which the drill-down counts as failed.
func (m *Metadata) Reconcile() []Discrepancy {
	var out []Discrepancy
	for _, id := range m.FilterIDs {
		derived, missing := 0, 0
		for _, e := range m.Evaluations {
			if _, ok := e.Results[id]; !ok {
				missing++
			}
			if e.FailedFilter(id) {
				derived++
			}
		}
		if derived != m.FailedBy[id] {
			out = append(out, Discrepancy{Filter: id, Reported: m.FailedBy[id], Derived: derived, NotEvaluated: missing})
		}
	}
	return out
}
