// Package cli renders executions and filter drill-downs in the terminal.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sophialabs/xraydash/internal/infrastructure/services"
	"github.com/sophialabs/xraydash/internal/infrastructure/usecases"
)

// ErrUsage is returned for unknown commands and missing arguments.
var ErrUsage = errors.New("usage: xrayctl list | filters <execution-id> <step> | drill [-q query] <execution-id> <step> <criterion>")

type styles struct {
	box     lipgloss.Style
	header  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		box: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

// Command runs xrayctl subcommands against an inspect use case.
type Command struct {
	inspect   *usecases.InspectUseCase
	formatter *services.Formatter
	out       io.Writer
	styles    styles
}

// New creates a command writing to out. Colours are used only when out is
// a terminal.
func New(inspect *usecases.InspectUseCase, formatter *services.Formatter, out io.Writer) *Command {
	return &Command{
		inspect:   inspect,
		formatter: formatter,
		out:       out,
		styles:    newStyles(lipgloss.NewRenderer(out)),
	}
}

// Run dispatches args[0] to a subcommand.
func (c *Command) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	switch args[0] {
	case "list":
		return c.list(ctx)
	case "filters":
		return c.filters(ctx, args[1:])
	case "drill":
		return c.drill(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

func (c *Command) list(ctx context.Context) error {
	list, err := c.inspect.ListExecutions(ctx)
	if err != nil {
		return err
	}
	lines := []string{c.styles.header.Render("Executions"), c.styles.muted.Render(services.Plural(len(list), "execution") + " found")}
	if len(list) == 0 {
		lines = append(lines, "", "No executions yet. Run the demo to create your first execution!")
	}
	for _, e := range list {
		status := c.styles.muted.Render("running")
		if e.Complete {
			status = c.styles.success.Render("✓ Complete")
		}
		lines = append(lines, "",
			fmt.Sprintf("%s  %s", e.Name, c.styles.muted.Render(e.ExecutionID)),
			fmt.Sprintf("  %s  %s  %s", e.Started, services.Plural(e.Steps, "step"), status))
	}
	return c.print(lines)
}

func (c *Command) filters(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	step, err := parseStep(args[1])
	if err != nil {
		return err
	}
	opts, err := c.inspect.FilterOptions(ctx, args[0], step)
	if err != nil {
		return err
	}
	lines := []string{c.styles.header.Render(fmt.Sprintf("Filters of step %d", step))}
	for _, o := range opts.Options {
		lines = append(lines, fmt.Sprintf("%-14s %s", o.ID, o.Label))
	}
	for _, d := range opts.Discrepancies {
		lines = append(lines, c.styles.failure.Render(fmt.Sprintf("%s: %d reported failed, %d derived (%d not evaluated)", d.Filter, d.Reported, d.Derived, d.NotEvaluated)))
	}
	return c.print(lines)
}

func (c *Command) drill(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	q := fs.String("q", "", "candidate query, e.g. price > 100")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() != 3 {
		return ErrUsage
	}
	step, err := parseStep(fs.Arg(1))
	if err != nil {
		return err
	}
	dd, err := c.inspect.DrillDown(ctx, fs.Arg(0), step, fs.Arg(2), *q)
	if err != nil {
		return err
	}

	lines := []string{c.styles.header.Render(dd.Header)}
	if dd.Query != "" {
		lines = append(lines, c.styles.muted.Render("where "+dd.Query))
	}
	if len(dd.Candidates) == 0 {
		lines = append(lines, "", c.styles.muted.Render(fmt.Sprintf("No candidates failed %s.", dd.Name)))
	}
	for _, cand := range dd.Candidates {
		lines = append(lines, "", cand.Title, c.styles.muted.Render("ASIN: "+cand.ASIN))
		if metrics := c.metrics(cand); metrics != "" {
			lines = append(lines, metrics)
		}
		switch {
		case cand.NotEvaluated:
			lines = append(lines, c.styles.failure.Render("Not evaluated for this filter"))
		case cand.Detail != "":
			lines = append(lines, c.styles.failure.Render(cand.Detail))
		}
	}
	return c.print(lines)
}

func (c *Command) metrics(cand usecases.FailedCandidate) string {
	if cand.Price == nil && cand.Rating == nil && cand.Reviews == nil {
		return ""
	}
	price, rating, reviews := "N/A", "N/A", "N/A"
	if cand.Price != nil {
		price = c.formatter.Currency(*cand.Price)
	}
	if cand.Rating != nil {
		rating = c.formatter.Number(*cand.Rating) + "★"
	}
	if cand.Reviews != nil {
		reviews = c.formatter.Count(*cand.Reviews)
	}
	return fmt.Sprintf("Price: %s  Rating: %s  Reviews: %s", price, rating, reviews)
}

func (c *Command) print(lines []string) error {
	_, err := fmt.Fprintln(c.out, c.styles.box.Render(strings.Join(lines, "\n")))
	return err
}

func parseStep(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("step must be a non-negative integer, got %q", s)
	}
	return i, nil
}
