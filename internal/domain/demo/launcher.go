package demo

import (
	"context"
	"errors"
	"sync"

	"github.com/sophialabs/xraydash/internal/domain/trace"
)

// ErrSubmissionInFlight is returned when a submit arrives while another one
// is still pending.
var ErrSubmissionInFlight = errors.New("a demo run is already in progress")

const noCompetitorMessage = "No competitor found"

// Runner starts a competitor-selection run.
type Runner interface {
	RunDemo(ctx context.Context, req Request) (*Response, error)
}

// Result is the outcome shown below the demo form.
type Result struct {
	Success          bool
	ReferenceProduct trace.Value
	Competitor       *CompetitorResult
	Message          string
	// Err is the transport failure behind an "Error: " message.
	Err error
}

// ShowCompetitor reports whether the competitor card is rendered.
func (r *Result) ShowCompetitor() bool {
	return r.Success && r.Competitor != nil
}

// Warning is the text rendered in warning style, or "" when the run
// succeeded.
func (r *Result) Warning() string {
	if r.Success {
		return ""
	}
	if r.Message != "" {
		return r.Message
	}
	return noCompetitorMessage
}

// State is a snapshot of the launcher for rendering.
type State struct {
	Form    Form
	FormErr *FormError
	Pending bool
	Result  *Result
}

// Launcher holds the demo form and the last result of one user.
type Launcher struct {
	runner Runner

	mu      sync.Mutex
	form    Form
	formErr *FormError
	pending bool
	result  *Result
}

// NewLauncher creates a launcher pre-filled with the default sample product.
func NewLauncher(runner Runner) *Launcher {
	return &Launcher{runner: runner, form: DefaultForm()}
}

// ApplyPreset overwrites the form with sample product i and clears any
// previous result.
func (l *Launcher) ApplyPreset(i int) error {
	p, err := Preset(i)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.form = FormFromPreset(p)
	l.formErr = nil
	l.result = nil
	return nil
}

// Submit validates form and runs the demo. Only one submission may be
// pending at a time. A transport failure is not returned as an error: it
// becomes a Result carrying an "Error: " message and the echoed form.
func (l *Launcher) Submit(ctx context.Context, form Form) (*Result, error) {
	l.mu.Lock()
	if l.pending {
		l.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	l.form = form
	l.result = nil
	req, err := form.Validate()
	if err != nil {
		var fe *FormError
		errors.As(err, &fe)
		l.formErr = fe
		l.mu.Unlock()
		return nil, err
	}
	l.formErr = nil
	l.pending = true
	l.mu.Unlock()

	resp, runErr := l.runner.RunDemo(ctx, req)
	result := newResult(req, resp, runErr)

	l.mu.Lock()
	l.pending = false
	l.result = result
	l.mu.Unlock()
	return result, nil
}

func newResult(req Request, resp *Response, err error) *Result {
	if err != nil {
		return &Result{
			ReferenceProduct: req.Echo(),
			Message:          "Error: " + err.Error(),
			Err:              err,
		}
	}
	if resp == nil {
		return &Result{ReferenceProduct: req.Echo(), Message: noCompetitorMessage}
	}
	ref := resp.ReferenceProduct
	if !ref.IsDefined() || ref.IsNull() {
		ref = req.Echo()
	}
	r := &Result{
		Success:          resp.Success,
		ReferenceProduct: ref,
		Competitor:       resp.SelectedCompetitor,
		Message:          resp.Message,
	}
	if r.Success && r.Competitor == nil {
		// Success without a competitor still renders as a warning.
		r.Success = false
	}
	return r
}

// Snapshot returns the state to render.
func (l *Launcher) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{
		Form:    l.form,
		FormErr: l.formErr,
		Pending: l.pending,
		Result:  l.result,
	}
}
