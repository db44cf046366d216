package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/sophialabs/xraydash/internal/domain/filters"
	"github.com/sophialabs/xraydash/internal/domain/gatewaylog"
	"github.com/sophialabs/xraydash/internal/domain/trace"
	"github.com/sophialabs/xraydash/internal/domain/viewer"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/query"
	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
	"github.com/sophialabs/xraydash/internal/infrastructure/services"
)

// ErrNotFilterStep is returned when drill-down is requested for a step that
// carries no filter metadata.
var ErrNotFilterStep = errors.New("step has no filter metadata")

// ExecutionSummary is one entry of the API execution list.
type ExecutionSummary struct {
	ExecutionID string `json:"execution_id"`
	Name        string `json:"name"`
	StartedAt   string `json:"started_at"`
	EndedAt     string `json:"ended_at,omitempty"`
	Started     string `json:"started"`
	Steps       int    `json:"steps"`
	Complete    bool   `json:"complete"`
}

// FilterOptions is the criterion selector of one apply_filters step.
type FilterOptions struct {
	ExecutionID   string                `json:"execution_id"`
	Step          int                   `json:"step"`
	Total         int                   `json:"total"`
	Options       []FilterOptionSummary `json:"options"`
	Discrepancies []filters.Discrepancy `json:"discrepancies,omitempty"`
}

// FilterOptionSummary is one selector entry.
type FilterOptionSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Label  string `json:"label"`
	Failed int    `json:"failed"`
	Passed int    `json:"passed"`
}

// DrillDownResult is the failed-candidate list for one criterion.
type DrillDownResult struct {
	ExecutionID string            `json:"execution_id"`
	Step        int               `json:"step"`
	Criterion   string            `json:"criterion"`
	Name        string            `json:"name"`
	Header      string            `json:"header"`
	Query       string            `json:"query,omitempty"`
	Candidates  []FailedCandidate `json:"candidates"`
}

// FailedCandidate is one failed evaluation.
type FailedCandidate struct {
	Position     int      `json:"position"`
	Title        string   `json:"title"`
	ASIN         string   `json:"asin"`
	Price        *float64 `json:"price,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	Reviews      *float64 `json:"reviews,omitempty"`
	Detail       string   `json:"detail,omitempty"`
	NotEvaluated bool     `json:"not_evaluated,omitempty"`
}

// InspectUseCase answers read-only API queries about executions.
type InspectUseCase struct {
	gateway   ports.Gateway
	formatter *services.Formatter
	calls     *gatewaylog.Log
	logger    ports.Logger
}

// NewInspectUseCase creates a new use case.
func NewInspectUseCase(gateway ports.Gateway, formatter *services.Formatter, calls *gatewaylog.Log, logger ports.Logger) *InspectUseCase {
	return &InspectUseCase{gateway: gateway, formatter: formatter, calls: calls, logger: logger}
}

// ListExecutions returns summaries in the backend's order.
func (uc *InspectUseCase) ListExecutions(ctx context.Context) ([]ExecutionSummary, error) {
	list, err := uc.gateway.ListExecutions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ExecutionSummary, 0, len(list))
	for _, e := range list {
		s := ExecutionSummary{
			ExecutionID: e.ExecutionID,
			Name:        e.Name,
			StartedAt:   e.StartedAt.Raw,
			Started:     uc.formatter.Timestamp(e.StartedAt),
			Steps:       len(e.Steps),
			Complete:    e.Complete(),
		}
		if e.EndedAt != nil {
			s.EndedAt = e.EndedAt.Raw
		}
		out = append(out, s)
	}
	return out, nil
}

// GetExecution returns one execution.
func (uc *InspectUseCase) GetExecution(ctx context.Context, id string) (*trace.Execution, error) {
	return uc.gateway.GetExecution(ctx, id)
}

// FilterOptions returns the selector of step index of execution id.
func (uc *InspectUseCase) FilterOptions(ctx context.Context, id string, index int) (*FilterOptions, error) {
	m, err := uc.filterMetadata(ctx, id, index)
	if err != nil {
		return nil, err
	}
	out := &FilterOptions{ExecutionID: id, Step: index, Total: m.Total(), Discrepancies: m.Reconcile()}
	for _, o := range m.Options() {
		out.Options = append(out.Options, FilterOptionSummary{
			ID: o.ID, Name: o.Name, Label: o.Label(), Failed: o.Failed, Passed: o.Passed,
		})
	}
	return out, nil
}

// DrillDown lists the candidates of step index that failed criterion,
// narrowed by the candidate query q.
func (uc *InspectUseCase) DrillDown(ctx context.Context, id string, index int, criterion, q string) (*DrillDownResult, error) {
	compiled, err := query.Compile(q)
	if err != nil {
		return nil, err
	}
	m, err := uc.filterMetadata(ctx, id, index)
	if err != nil {
		return nil, err
	}
	dd, ok := m.DrillDown(criterion, compiled.Predicate())
	if !ok {
		return nil, fmt.Errorf("%w: %s", viewer.ErrUnknownCriterion, criterion)
	}

	out := &DrillDownResult{
		ExecutionID: id,
		Step:        index,
		Criterion:   dd.Criterion,
		Name:        dd.Name,
		Header:      dd.Header(),
		Query:       compiled.String(),
		Candidates:  make([]FailedCandidate, 0, len(dd.Candidates)),
	}
	for _, c := range dd.Candidates {
		fc := FailedCandidate{
			Position:     c.Position,
			Title:        c.Title,
			ASIN:         c.ASIN,
			Detail:       c.Detail,
			NotEvaluated: c.NotEvaluated,
		}
		if m := c.Metrics; m != nil {
			fc.Price = m.Price
			fc.Reviews = m.Reviews
			if m.Rating != nil {
				if r, ok := m.Rating.AsFloat(); ok {
					fc.Rating = &r
				}
			}
		}
		out.Candidates = append(out.Candidates, fc)
	}
	uc.logger.Debug("drill-down served", "execution_id", id, "step", index, "criterion", criterion, "candidates", len(out.Candidates))
	return out, nil
}

// Extract evaluates a JSONPath expression against step index.
func (uc *InspectUseCase) Extract(ctx context.Context, id string, index int, path string) (any, error) {
	step, err := uc.step(ctx, id, index)
	if err != nil {
		return nil, err
	}
	return services.ExtractStep(ctx, step, path)
}

// GatewayCalls returns the last n gateway calls, oldest first.
func (uc *InspectUseCase) GatewayCalls(n int) []gatewaylog.Call {
	if uc.calls == nil {
		return []gatewaylog.Call{}
	}
	return uc.calls.Last(n)
}

func (uc *InspectUseCase) step(ctx context.Context, id string, index int) (*trace.Step, error) {
	exec, err := uc.gateway.GetExecution(ctx, id)
	if err != nil {
		return nil, err
	}
	step := exec.Step(index)
	if step == nil {
		return nil, fmt.Errorf("%w: %d", viewer.ErrUnknownStep, index)
	}
	return step, nil
}

func (uc *InspectUseCase) filterMetadata(ctx context.Context, id string, index int) (*filters.Metadata, error) {
	step, err := uc.step(ctx, id, index)
	if err != nil {
		return nil, err
	}
	m, ok := filters.FromStep(step)
	if !ok {
		return nil, fmt.Errorf("%w: step %d (%s)", ErrNotFilterStep, index, step.Name)
	}
	return m, nil
}
