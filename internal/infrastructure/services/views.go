package services

import (
	"fmt"
	"strconv"

	"github.com/sophialabs/xraydash/internal/domain/demo"
	"github.com/sophialabs/xraydash/internal/domain/filters"
	"github.com/sophialabs/xraydash/internal/domain/trace"
	"github.com/sophialabs/xraydash/internal/domain/viewer"
)

// Presenter turns domain state into view models for the page templates.
// Every string a template prints is computed here.
type Presenter struct {
	f *Formatter
}

// NewPresenter creates a presenter using f for numbers and times.
func NewPresenter(f *Formatter) *Presenter {
	return &Presenter{f: f}
}

// Formatter returns the presenter's formatter.
func (p *Presenter) Formatter() *Formatter { return p.f }

// BrowserInput is everything the execution browser page depends on.
type BrowserInput struct {
	View  viewer.View
	Flash string

	// Query narrows the drill-down; Predicate is its compiled form and
	// QueryErr the compile error, if any.
	Query     string
	Predicate filters.CandidatePredicate
	QueryErr  error
}

// BrowserPage is the view model of the execution browser.
type BrowserPage struct {
	Loaded     bool
	Error      string
	Flash      string
	CountLabel string
	Empty      bool
	Executions []ExecutionItem
	Detail     *ExecutionDetail
}

// ExecutionItem is one row of the execution list.
type ExecutionItem struct {
	ID        string
	Name      string
	Started   string
	StepCount string
	Complete  bool
	Selected  bool
}

// ExecutionDetail is the selected execution.
type ExecutionDetail struct {
	ID        string
	Name      string
	Started   string
	Ended     string
	Complete  bool
	Criterion string
	Query     string
	Steps     []StepPanel
}

// StepPanel is one collapsible step. Sections render in field order:
// drill-down, reasoning, inputs, outputs, metadata.
type StepPanel struct {
	Index        int
	Name         string
	Duration     string
	Open         bool
	Degraded     bool
	Problems     []string
	Filter       *FilterPanel
	Reasoning    string
	HasReasoning bool
	Inputs       []JSONLine
	Outputs      []JSONLine
	Metadata     []JSONLine
	HasMetadata  bool
}

// FilterPanel is the criterion selector and drill-down of an apply_filters
// step.
type FilterPanel struct {
	Options       []FilterOption
	Active        bool
	ActiveName    string
	DrillDown     *DrillDownView
	Discrepancies []string
	Query         string
	QueryError    string
}

// FilterOption is one selector entry.
type FilterOption struct {
	ID       string
	Label    string
	Name     string
	Failed   string
	Passed   string
	Selected bool
}

// DrillDownView lists the candidates that failed the active criterion.
type DrillDownView struct {
	Header       string
	Empty        bool
	EmptyMessage string
	Candidates   []CandidateView
}

// CandidateView is one failed candidate.
type CandidateView struct {
	Title        string
	ASIN         string
	HasMetrics   bool
	Price        string
	Rating       string
	Reviews      string
	Detail       string
	HasDetail    bool
	NotEvaluated bool
}

// BrowserPage builds the execution browser view model.
func (p *Presenter) BrowserPage(in BrowserInput) BrowserPage {
	v := in.View
	page := BrowserPage{
		Loaded:     v.Loaded,
		Flash:      in.Flash,
		CountLabel: Plural(len(v.Executions), "execution") + " found",
		Empty:      len(v.Executions) == 0,
	}
	if v.Err != nil {
		page.Error = "Error: " + v.Err.Error()
	}

	for _, exec := range v.Executions {
		page.Executions = append(page.Executions, ExecutionItem{
			ID:        exec.ExecutionID,
			Name:      exec.Name,
			Started:   p.f.Timestamp(exec.StartedAt),
			StepCount: Plural(len(exec.Steps), "step"),
			Complete:  exec.Complete(),
			Selected:  v.Selected != nil && exec.ExecutionID == v.Selected.ExecutionID,
		})
	}

	if v.Selected != nil {
		page.Detail = p.detail(v.Selected, v.Criterion, v.OpenStep, in)
	}
	return page
}

func (p *Presenter) detail(exec *trace.Execution, criterion string, openStep int, in BrowserInput) *ExecutionDetail {
	d := &ExecutionDetail{
		ID:        exec.ExecutionID,
		Name:      exec.Name,
		Started:   p.f.Timestamp(exec.StartedAt),
		Complete:  exec.Complete(),
		Criterion: criterion,
		Query:     in.Query,
	}
	if exec.EndedAt != nil {
		d.Ended = p.f.Timestamp(*exec.EndedAt)
	}
	for i := range exec.Steps {
		d.Steps = append(d.Steps, p.StepPanel(i, &exec.Steps[i], criterion, openStep == i, in))
	}
	return d
}

// StepPanel builds the panel for step i.
func (p *Presenter) StepPanel(i int, step *trace.Step, criterion string, open bool, in BrowserInput) StepPanel {
	panel := StepPanel{
		Index:       i,
		Name:        step.Name,
		Duration:    p.f.Duration(step.DurationMs),
		Open:        open,
		Degraded:    step.Degraded(),
		Problems:    step.Problems(),
		Inputs:      FlattenJSON(step.Inputs, p.f),
		Outputs:     FlattenJSON(step.Outputs, p.f),
		HasMetadata: step.HasMetadata(),
	}
	if panel.Name == "" {
		panel.Name = "(unnamed step)"
	}
	if step.Reasoning != nil && *step.Reasoning != "" {
		panel.Reasoning = *step.Reasoning
		panel.HasReasoning = true
	}
	if panel.HasMetadata {
		panel.Metadata = FlattenJSON(step.Metadata, p.f)
	}
	if m, ok := filters.FromStep(step); ok {
		panel.Filter = p.FilterPanel(m, criterion, in)
	}
	return panel
}

// FilterPanel builds the selector and, when criterion applies to m, the
// drill-down.
func (p *Presenter) FilterPanel(m *filters.Metadata, criterion string, in BrowserInput) *FilterPanel {
	fp := &FilterPanel{Query: in.Query}
	if in.QueryErr != nil {
		fp.QueryError = in.QueryErr.Error()
	}
	for _, o := range m.Options() {
		opt := FilterOption{ID: o.ID, Label: o.Label(), Name: o.Name, Selected: o.ID == criterion}
		if o.ShowFailed() {
			opt.Failed = strconv.Itoa(o.Failed) + " failed"
		}
		if o.ShowPassed() {
			opt.Passed = strconv.Itoa(o.Passed) + " passed"
		}
		fp.Options = append(fp.Options, opt)
	}

	for _, d := range m.Reconcile() {
		fp.Discrepancies = append(fp.Discrepancies, fmt.Sprintf(
			"%s: %d reported failed, %d derived (%d not evaluated)",
			filters.DisplayName(d.Filter), d.Reported, d.Derived, d.NotEvaluated))
	}

	pred := in.Predicate
	if in.QueryErr != nil {
		pred = nil
	}
	dd, ok := m.DrillDown(criterion, pred)
	if !ok {
		return fp
	}
	fp.Active = true
	fp.ActiveName = dd.Name
	fp.DrillDown = p.DrillDown(dd)
	return fp
}

// DrillDown builds the failed-candidate list.
func (p *Presenter) DrillDown(dd filters.DrillDown) *DrillDownView {
	view := &DrillDownView{
		Header:       dd.Header(),
		Empty:        dd.Empty(),
		EmptyMessage: dd.EmptyMessage(),
	}
	for _, c := range dd.Candidates {
		cv := CandidateView{
			Title:        c.Title,
			ASIN:         c.ASIN,
			Detail:       c.Detail,
			HasDetail:    c.HasDetail,
			NotEvaluated: c.NotEvaluated,
		}
		if m := c.Metrics; m != nil {
			cv.HasMetrics = true
			cv.Price, cv.Rating, cv.Reviews = "N/A", "N/A", "N/A"
			if m.Price != nil {
				cv.Price = p.f.Currency(*m.Price)
			}
			if m.Rating != nil {
				if r, ok := m.Rating.AsFloat(); ok {
					cv.Rating = p.f.Number(r) + "★"
				}
			}
			if m.Reviews != nil {
				cv.Reviews = p.f.Count(*m.Reviews)
			}
		}
		view.Candidates = append(view.Candidates, cv)
	}
	return view
}

// DemoPage is the view model of the demo launcher.
type DemoPage struct {
	Presets     []PresetButton
	Form        demo.Form
	FieldErrors map[string]string
	Pending     bool
	SubmitLabel string
	Flash       string
	Result      *ResultView
	HowItWorks  []PipelineStage
}

// PresetButton is one sample product.
type PresetButton struct {
	Index  int
	Name   string
	Active bool
}

// ResultView is the outcome card.
type ResultView struct {
	Found      bool
	Warning    string
	Competitor *CompetitorView
}

// CompetitorView is the selected competitor card.
type CompetitorView struct {
	Title   string
	ASIN    string
	Price   string
	Rating  string
	Reviews string
	Score   string
}

// PipelineStage is one entry of the "How It Works" explainer.
type PipelineStage struct {
	Number      int
	Name        string
	Description string
}

var pipelineStages = []PipelineStage{
	{1, "Keyword Generation", "Extract search keywords from product title"},
	{2, "Candidate Search", "Search for potential competitor products"},
	{3, "Apply Filters", "Filter by price, rating, and review count"},
	{4, "Relevance Check", "Use LLM to remove false positives"},
	{5, "Rank & Select", "Score and select the best competitor"},
}

// DemoPage builds the demo launcher view model.
func (p *Presenter) DemoPage(state demo.State, flash string) DemoPage {
	page := DemoPage{
		Form:        state.Form,
		FieldErrors: map[string]string{},
		Pending:     state.Pending,
		SubmitLabel: "Find Best Competitor",
		Flash:       flash,
		HowItWorks:  pipelineStages,
	}
	if state.Pending {
		page.SubmitLabel = "Finding Competitor..."
	}
	for i, product := range demo.Catalogue() {
		page.Presets = append(page.Presets, PresetButton{
			Index:  i,
			Name:   product.Name,
			Active: product.Title == state.Form.Title,
		})
	}
	if state.FormErr != nil {
		for _, fe := range state.FormErr.Fields {
			page.FieldErrors[fe.Field] = fe.Reason
		}
	}
	if state.Result != nil {
		page.Result = p.ResultView(state.Result)
	}
	return page
}

// ResultView builds the outcome card for r.
func (p *Presenter) ResultView(r *demo.Result) *ResultView {
	if !r.ShowCompetitor() {
		return &ResultView{Warning: r.Warning()}
	}
	c := r.Competitor
	return &ResultView{
		Found: true,
		Competitor: &CompetitorView{
			Title:   c.Title,
			ASIN:    c.ASIN,
			Price:   p.f.Currency(c.Price),
			Rating:  p.f.Number(c.Rating) + "★",
			Reviews: p.f.Count(float64(c.Reviews)),
			Score:   p.f.Score(c.Score),
		},
	}
}
