package viewer

import (
	"context"
	"errors"
	"sync"

	"github.com/sophialabs/xraydash/internal/domain/filters"
	"github.com/sophialabs/xraydash/internal/domain/trace"
)

var (
	// ErrUnknownExecution is returned when selecting an id that is not listed.
	ErrUnknownExecution = errors.New("execution not found")
	// ErrUnknownCriterion is returned for a criterion the selected execution
	// does not offer.
	ErrUnknownCriterion = errors.New("unknown filter criterion")
	// ErrUnknownStep is returned when toggling a step index out of range.
	ErrUnknownStep = errors.New("step not found")
)

// Lister lists executions in the backend's order.
type Lister interface {
	ListExecutions(ctx context.Context) ([]*trace.Execution, error)
}

// Selection is the selected execution together with its active filter
// criterion. The two always change together.
type Selection struct {
	ExecutionID string
	Criterion   string
}

// View is an immutable snapshot of the browser for rendering.
type View struct {
	Loaded     bool
	Executions []*trace.Execution
	Selected   *trace.Execution
	Criterion  string
	OpenStep   int
	Err        error
}

// Browser owns the execution list and the view state of one user.
type Browser struct {
	lister Lister

	mu         sync.Mutex
	loaded     bool
	executions []*trace.Execution
	sel        Selection
	openStep   int
	err        error
}

// NewBrowser creates an empty browser backed by lister.
func NewBrowser(lister Lister) *Browser {
	return &Browser{
		lister:   lister,
		sel:      Selection{Criterion: filters.All},
		openStep: -1,
	}
}

// EnsureLoaded lists executions unless a listing already succeeded since
// the browser was created or last invalidated. A failed fetch is retried on
// the next call.
func (b *Browser) EnsureLoaded(ctx context.Context) error {
	b.mu.Lock()
	loaded := b.loaded
	b.mu.Unlock()
	if loaded {
		return nil
	}
	return b.Refresh(ctx)
}

// Refresh re-lists executions. The fetch happens outside the lock, so
// overlapping refreshes are applied in completion order; each one re-checks
// the selection against the state current at that moment.
func (b *Browser) Refresh(ctx context.Context) error {
	executions, err := b.lister.ListExecutions(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.err = err
		return err
	}
	b.loaded = true
	b.err = nil
	b.apply(executions)
	return nil
}

// Invalidate marks the listing stale so the next EnsureLoaded re-lists.
// The current selection is kept if it is still listed then.
func (b *Browser) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = false
}

func (b *Browser) apply(executions []*trace.Execution) {
	b.executions = executions

	prev := b.sel.ExecutionID
	next := Selection{Criterion: filters.All}
	if prev != "" && indexOf(executions, prev) >= 0 {
		next.ExecutionID = prev
	} else if len(executions) > 0 {
		next.ExecutionID = executions[0].ExecutionID
	}
	b.sel = next

	i := indexOf(executions, next.ExecutionID)
	if next.ExecutionID != prev || i < 0 || b.openStep >= len(executions[i].Steps) {
		b.openStep = -1
	}
}

// Select makes id the current execution and resets the criterion to "all".
func (b *Browser) Select(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if indexOf(b.executions, id) < 0 {
		return ErrUnknownExecution
	}
	if id != b.sel.ExecutionID {
		b.openStep = -1
	}
	b.sel = Selection{ExecutionID: id, Criterion: filters.All}
	return nil
}

// SetCriterion changes the active criterion of the selected execution.
func (b *Browser) SetCriterion(f string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if f == filters.All {
		b.sel.Criterion = filters.All
		return nil
	}
	exec := b.selectedLocked()
	if exec == nil {
		return ErrUnknownExecution
	}
	for _, id := range Criteria(exec) {
		if id == f {
			b.sel.Criterion = f
			return nil
		}
	}
	return ErrUnknownCriterion
}

// ToggleStep opens step i, closing any other open step, or closes it if it
// is already open.
func (b *Browser) ToggleStep(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	exec := b.selectedLocked()
	if exec == nil || exec.Step(i) == nil {
		return ErrUnknownStep
	}
	if b.openStep == i {
		b.openStep = -1
	} else {
		b.openStep = i
	}
	return nil
}

// Selection returns the current selection.
func (b *Browser) Selection() Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sel
}

// Snapshot returns the state to render.
func (b *Browser) Snapshot() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	executions := make([]*trace.Execution, len(b.executions))
	copy(executions, b.executions)
	return View{
		Loaded:     b.loaded,
		Executions: executions,
		Selected:   b.selectedLocked(),
		Criterion:  b.sel.Criterion,
		OpenStep:   b.openStep,
		Err:        b.err,
	}
}

func (b *Browser) selectedLocked() *trace.Execution {
	if i := indexOf(b.executions, b.sel.ExecutionID); i >= 0 {
		return b.executions[i]
	}
	return nil
}

// Criteria returns the filter ids offered by the apply_filters steps of
// exec, in first-seen order.
func Criteria(exec *trace.Execution) []string {
	seen := map[string]bool{}
	var ids []string
	for i := range exec.Steps {
		m, ok := filters.FromStep(&exec.Steps[i])
		if !ok {
			continue
		}
		for _, id := range m.FilterIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

func indexOf(executions []*trace.Execution, id string) int {
	if id == "" {
		return -1
	}
	for i, e := range executions {
		if e.ExecutionID == id {
			return i
		}
	}
	return -1
}
