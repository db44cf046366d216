package demo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophialabs/xraydash/internal/domain/demo"
)

type runnerFunc func(ctx context.Context, req demo.Request) (*demo.Response, error)

func (f runnerFunc) RunDemo(ctx context.Context, req demo.Request) (*demo.Response, error) {
	return f(ctx, req)
}

func TestCatalogue(t *testing.T) {
	products := demo.Catalogue()
	require.Len(t, products, 10)
	assert.Equal(t, demo.SampleProduct{
		Name:     "Water Bottle (Default)",
		Title:    "Stainless Steel Water Bottle 32oz Insulated",
		Price:    "29.99",
		Rating:   "4.2",
		Reviews:  "1247",
		Category: "Sports & Outdoors",
	}, products[0])
	assert.Equal(t, "Desk Lamp", products[9].Name)
	assert.Equal(t, "Home & Office", products[9].Category)

	products[0].Name = "changed"
	assert.Equal(t, "Water Bottle (Default)", demo.Catalogue()[0].Name)
}

func TestPreset_OutOfRange(t *testing.T) {
	_, err := demo.Preset(10)
	assert.ErrorIs(t, err, demo.ErrUnknownPreset)
	_, err = demo.Preset(-1)
	assert.ErrorIs(t, err, demo.ErrUnknownPreset)
}

func TestForm_Validate(t *testing.T) {
	valid := demo.DefaultForm()
	req, err := valid.Validate()
	require.NoError(t, err)
	assert.Equal(t, demo.Request{
		Title:    "Stainless Steel Water Bottle 32oz Insulated",
		Price:    29.99,
		Rating:   4.2,
		Reviews:  1247,
		Category: "Sports & Outdoors",
	}, req)

	tests := []struct {
		name  string
		edit  func(*demo.Form)
		field string
	}{
		{"empty title", func(f *demo.Form) { f.Title = "  " }, "title"},
		{"price not a number", func(f *demo.Form) { f.Price = "cheap" }, "price"},
		{"negative price", func(f *demo.Form) { f.Price = "-1" }, "price"},
		{"rating above five", func(f *demo.Form) { f.Rating = "5.1" }, "rating"},
		{"negative rating", func(f *demo.Form) { f.Rating = "-0.5" }, "rating"},
		{"fractional reviews", func(f *demo.Form) { f.Reviews = "12.5" }, "reviews"},
		{"negative reviews", func(f *demo.Form) { f.Reviews = "-3" }, "reviews"},
		{"empty category", func(f *demo.Form) { f.Category = "" }, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := demo.DefaultForm()
			tt.edit(&f)
			_, err := f.Validate()
			var fe *demo.FormError
			require.ErrorAs(t, err, &fe)
			require.Len(t, fe.Fields, 1)
			assert.Equal(t, tt.field, fe.Fields[0].Field)
			assert.NotEmpty(t, fe.Reason(tt.field))
		})
	}
}

func TestForm_ValidateBoundaries(t *testing.T) {
	f := demo.Form{Title: "t", Price: "0", Rating: "5", Reviews: "0", Category: "c"}
	_, err := f.Validate()
	assert.NoError(t, err)
}

func TestLauncher_SubmitSuccess(t *testing.T) {
	var got demo.Request
	l := demo.NewLauncher(runnerFunc(func(_ context.Context, req demo.Request) (*demo.Response, error) {
		got = req
		return &demo.Response{
			Success: true,
			SelectedCompetitor: &demo.CompetitorResult{
				Title: "X", ASIN: "A1", Price: 27.5, Rating: 4.4, Reviews: 2000, Score: 0.87,
			},
		}, nil
	}))

	result, err := l.Submit(context.Background(), demo.DefaultForm())
	require.NoError(t, err)
	assert.Equal(t, 29.99, got.Price)
	assert.True(t, result.ShowCompetitor())
	assert.Empty(t, result.Warning())
	assert.Equal(t, "X", result.Competitor.Title)

	state := l.Snapshot()
	assert.False(t, state.Pending)
	assert.Same(t, result, state.Result)
}

func TestLauncher_NoCompetitor(t *testing.T) {
	tests := []struct {
		name    string
		resp    *demo.Response
		warning string
	}{
		{"backend message", &demo.Response{Success: false, Message: "No qualified competitor found"}, "No qualified competitor found"},
		{"no message", &demo.Response{Success: false}, "No competitor found"},
		{"success without competitor", &demo.Response{Success: true}, "No competitor found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := demo.NewLauncher(runnerFunc(func(context.Context, demo.Request) (*demo.Response, error) {
				return tt.resp, nil
			}))
			result, err := l.Submit(context.Background(), demo.DefaultForm())
			require.NoError(t, err)
			assert.False(t, result.ShowCompetitor())
			assert.Equal(t, tt.warning, result.Warning())
		})
	}
}

func TestLauncher_TransportFailure(t *testing.T) {
	l := demo.NewLauncher(runnerFunc(func(context.Context, demo.Request) (*demo.Response, error) {
		return nil, errors.New("connection refused")
	}))

	result, err := l.Submit(context.Background(), demo.DefaultForm())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Error: connection refused", result.Warning())
	require.Error(t, result.Err)

	title, _ := result.ReferenceProduct.Get("title").AsString()
	assert.Equal(t, "Stainless Steel Water Bottle 32oz Insulated", title)
	reviews, _ := result.ReferenceProduct.Get("reviews").AsFloat()
	assert.Equal(t, 1247.0, reviews)

	assert.False(t, l.Snapshot().Pending)
}

func TestLauncher_InvalidFormKeepsValues(t *testing.T) {
	called := false
	l := demo.NewLauncher(runnerFunc(func(context.Context, demo.Request) (*demo.Response, error) {
		called = true
		return &demo.Response{Success: true}, nil
	}))

	form := demo.DefaultForm()
	form.Rating = "9"
	_, err := l.Submit(context.Background(), form)

	var fe *demo.FormError
	require.ErrorAs(t, err, &fe)
	assert.False(t, called)
	state := l.Snapshot()
	assert.Equal(t, "9", state.Form.Rating)
	assert.Equal(t, "must be between 0 and 5", state.FormErr.Reason("rating"))
	assert.Nil(t, state.Result)
}

func TestLauncher_ApplyPresetClearsResult(t *testing.T) {
	l := demo.NewLauncher(runnerFunc(func(context.Context, demo.Request) (*demo.Response, error) {
		return &demo.Response{Success: false}, nil
	}))
	_, err := l.Submit(context.Background(), demo.DefaultForm())
	require.NoError(t, err)
	require.NotNil(t, l.Snapshot().Result)

	require.NoError(t, l.ApplyPreset(4))
	state := l.Snapshot()
	assert.Nil(t, state.Result)
	assert.Equal(t, "Over-Ear Wireless Headphones with Active Noise Cancellation", state.Form.Title)
	assert.Equal(t, "249.99", state.Form.Price)

	assert.ErrorIs(t, l.ApplyPreset(42), demo.ErrUnknownPreset)
}

func TestLauncher_RefusesConcurrentSubmit(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	l := demo.NewLauncher(runnerFunc(func(context.Context, demo.Request) (*demo.Response, error) {
		close(started)
		<-release
		return &demo.Response{Success: false}, nil
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = l.Submit(context.Background(), demo.DefaultForm())
	}()

	<-started
	assert.True(t, l.Snapshot().Pending)
	_, err := l.Submit(context.Background(), demo.DefaultForm())
	assert.ErrorIs(t, err, demo.ErrSubmissionInFlight)

	close(release)
	wg.Wait()
	assert.False(t, l.Snapshot().Pending)
	assert.NotNil(t, l.Snapshot().Result)
}
