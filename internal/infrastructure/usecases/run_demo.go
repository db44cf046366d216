package usecases

import (
	"context"
	"errors"

	"github.com/sophialabs/xraydash/internal/domain/demo"
	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
	"github.com/sophialabs/xraydash/internal/infrastructure/services"
)

// ErrRateLimited is returned when a session submits demos too quickly.
var ErrRateLimited = errors.New("too many demo runs, please wait a moment")

// DemoLimits throttles demo submissions per session. A non-positive Rate
// disables throttling.
type DemoLimits struct {
	Rate  float64
	Burst int
}

// RunDemoUseCase drives one visitor's demo launcher.
type RunDemoUseCase struct {
	presenter   *services.Presenter
	rateLimiter ports.RateLimiter
	limits      DemoLimits
	logger      ports.Logger
}

// NewRunDemoUseCase creates a new use case.
func NewRunDemoUseCase(
	presenter *services.Presenter,
	rateLimiter ports.RateLimiter,
	limits DemoLimits,
	logger ports.Logger,
) *RunDemoUseCase {
	return &RunDemoUseCase{
		presenter:   presenter,
		rateLimiter: rateLimiter,
		limits:      limits,
		logger:      logger,
	}
}

// Page builds the demo page.
func (uc *RunDemoUseCase) Page(l *demo.Launcher, flash string) services.DemoPage {
	return uc.presenter.DemoPage(l.Snapshot(), flash)
}

// ApplyPreset loads sample product i into the form.
func (uc *RunDemoUseCase) ApplyPreset(l *demo.Launcher, i int) error {
	if err := l.ApplyPreset(i); err != nil {
		uc.logger.Debug("preset rejected", "index", i, "error", err)
		return err
	}
	return nil
}

// Submit runs the demo for form on behalf of session key. Form errors,
// ErrRateLimited and demo.ErrSubmissionInFlight are returned; a backend
// failure is not an error here and shows up in the launcher's result.
func (uc *RunDemoUseCase) Submit(ctx context.Context, key string, l *demo.Launcher, form demo.Form) (*demo.Result, error) {
	if !uc.rateLimiter.Allow(ctx, key, uc.limits.Rate, uc.limits.Burst) {
		uc.logger.Info("demo run rate limited", "session", key)
		return nil, ErrRateLimited
	}

	result, err := l.Submit(ctx, form)
	if err != nil {
		uc.logger.Debug("demo submit rejected", "session", key, "error", err)
		return nil, err
	}

	switch {
	case result.Err != nil:
		uc.logger.Error("demo run failed", "session", key, "error", result.Err)
	case result.ShowCompetitor():
		uc.logger.Info("demo run selected competitor", "session", key, "asin", result.Competitor.ASIN, "score", result.Competitor.Score)
	default:
		uc.logger.Info("demo run found no competitor", "session", key, "message", result.Warning())
	}
	return result, nil
}
