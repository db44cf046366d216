package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophialabs/xraydash/internal/infrastructure/services"
	"github.com/sophialabs/xraydash/internal/testutil"
)

func TestExtractStep(t *testing.T) {
	step := testutil.CompetitorRun(t).Step(2)
	ctx := context.Background()

	asins, err := services.ExtractStep(ctx, step, "$.metadata.evaluations[*].asin")
	require.NoError(t, err)
	assert.Equal(t, []any{"B0001", "B0002", "B0003", "B0004", "B0005"}, asins)

	name, err := services.ExtractStep(ctx, step, " $.name ")
	require.NoError(t, err)
	assert.Equal(t, "apply_filters", name)

	failed, err := services.ExtractStep(ctx, step, "$.metadata.failed_by_filter.price_range")
	require.NoError(t, err)
	assert.Equal(t, 2.0, failed)
}

func TestExtractStep_Errors(t *testing.T) {
	step := testutil.CompetitorRun(t).Step(0)
	ctx := context.Background()

	_, err := services.ExtractStep(ctx, step, "")
	assert.ErrorIs(t, err, services.ErrEmptyPath)

	var perr *services.PathError
	_, err = services.ExtractStep(ctx, step, "$.[")
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "$.[", perr.Path)

	_, err = services.ExtractStep(ctx, step, "$.metadata.nothing_here")
	assert.ErrorAs(t, err, &perr)
}
