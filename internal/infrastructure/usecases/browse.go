package usecases

import (
	"context"

	"github.com/sophialabs/xraydash/internal/domain/filters"
	"github.com/sophialabs/xraydash/internal/domain/viewer"
	"github.com/sophialabs/xraydash/internal/infrastructure/outbound/query"
	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
	"github.com/sophialabs/xraydash/internal/infrastructure/services"
)

// BrowseUseCase drives one visitor's execution browser.
type BrowseUseCase struct {
	presenter *services.Presenter
	logger    ports.Logger
}

// NewBrowseUseCase creates a new use case.
func NewBrowseUseCase(presenter *services.Presenter, logger ports.Logger) *BrowseUseCase {
	return &BrowseUseCase{presenter: presenter, logger: logger}
}

// Page loads the list on first use and builds the page. q is the candidate
// query narrowing the active drill-down. Load failures are shown inline.
func (uc *BrowseUseCase) Page(ctx context.Context, b *viewer.Browser, q, flash string) services.BrowserPage {
	if err := b.EnsureLoaded(ctx); err != nil {
		uc.logger.Warn("initial execution list failed", "error", err)
	}

	in := services.BrowserInput{View: b.Snapshot(), Flash: flash, Query: q}
	compiled, err := query.Compile(q)
	if err != nil {
		in.QueryErr = err
	} else {
		in.Predicate = compiled.Predicate()
	}
	return uc.presenter.BrowserPage(in)
}

// Refresh re-lists executions.
func (uc *BrowseUseCase) Refresh(ctx context.Context, b *viewer.Browser) error {
	if err := b.Refresh(ctx); err != nil {
		uc.logger.Warn("execution refresh failed", "error", err)
		return err
	}
	v := b.Snapshot()
	uc.logger.Info("executions refreshed", "count", len(v.Executions), "selected", b.Selection().ExecutionID)
	return nil
}

// Select makes id the current execution.
func (uc *BrowseUseCase) Select(b *viewer.Browser, id string) error {
	if err := b.Select(id); err != nil {
		uc.logger.Debug("select rejected", "execution_id", id, "error", err)
		return err
	}
	return nil
}

// SetCriterion changes the drill-down criterion. An empty value means "all".
func (uc *BrowseUseCase) SetCriterion(b *viewer.Browser, f string) error {
	if f == "" {
		f = filters.All
	}
	if err := b.SetCriterion(f); err != nil {
		uc.logger.Debug("criterion rejected", "criterion", f, "error", err)
		return err
	}
	return nil
}

// ToggleStep opens or closes step i.
func (uc *BrowseUseCase) ToggleStep(b *viewer.Browser, i int) error {
	if err := b.ToggleStep(i); err != nil {
		uc.logger.Debug("toggle rejected", "step", i, "error", err)
		return err
	}
	return nil
}
