// Package query compiles candidate filter expressions used to narrow a
// drill-down, e.g. `price > 100 && reviews < 500` or `title contains "Lid"`.
package query

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/sophialabs/xraydash/internal/domain/filters"
)

// Error reports an expression that failed to compile or evaluate.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string { return fmt.Sprintf("invalid candidate query %q: %v", e.Source, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// candidateEnv is the environment visible to a query. Metrics absent from
// the trace read as zero; has_metrics tells them apart.
type candidateEnv struct {
	Position   int                 `expr:"position"`
	Title      string              `expr:"title"`
	ASIN       string              `expr:"asin"`
	Price      float64             `expr:"price"`
	Rating     float64             `expr:"rating"`
	Reviews    float64             `expr:"reviews"`
	HasMetrics bool                `expr:"has_metrics"`
	Passed     func(string) bool   `expr:"passed"`
	Detail     func(string) string `expr:"detail"`
}

// Query is a compiled candidate expression.
type Query struct {
	source  string
	program *vm.Program
}

// Compile parses source. An empty source yields a nil Query, which accepts
// every candidate.
func Compile(source string) (*Query, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(candidateEnv{}), expr.AsBool())
	if err != nil {
		return nil, &Error{Source: source, Err: err}
	}
	return &Query{source: source, program: program}, nil
}

// String returns the source expression.
func (q *Query) String() string {
	if q == nil {
		return ""
	}
	return q.source
}

// Match evaluates the query against one candidate.
func (q *Query) Match(e filters.Evaluation) (bool, error) {
	if q == nil {
		return true, nil
	}
	out, err := expr.Run(q.program, newEnv(e))
	if err != nil {
		return false, &Error{Source: q.source, Err: err}
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Predicate adapts the query to a drill-down predicate. Candidates whose
// evaluation fails are excluded.
func (q *Query) Predicate() filters.CandidatePredicate {
	if q == nil {
		return nil
	}
	return func(e filters.Evaluation) bool {
		ok, err := q.Match(e)
		return err == nil && ok
	}
}

func newEnv(e filters.Evaluation) candidateEnv {
	env := candidateEnv{
		Position: e.Position,
		Title:    e.Title,
		ASIN:     e.ASIN,
		Passed: func(f string) bool {
			return !e.FailedFilter(f)
		},
		Detail: func(f string) string {
			o, _ := e.Result(f)
			return o.Detail
		},
	}
	if m := e.Metrics; m != nil {
		env.HasMetrics = true
		if m.Price != nil {
			env.Price = *m.Price
		}
		if m.Rating != nil {
			env.Rating, _ = m.Rating.AsFloat()
		}
		if m.Reviews != nil {
			env.Reviews = *m.Reviews
		}
	}
	return env
}
