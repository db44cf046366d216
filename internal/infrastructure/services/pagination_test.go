package services

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func items(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestPaginate_PageSize_FirstPage(t *testing.T) {
	p := Paginate(items(7), url.Values{"size": {"3"}})

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 3, p.Size)
	assert.Equal(t, 7, p.TotalItems)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.False(t, p.HasPrevious)
	assert.Equal(t, []int{1, 2, 3}, p.Data)
}

func TestPaginate_PageSize_MiddlePage(t *testing.T) {
	p := Paginate(items(7), url.Values{"page": {"2"}, "size": {"3"}})

	assert.Equal(t, 2, p.Page)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrevious)
	assert.Equal(t, []int{4, 5, 6}, p.Data)
}

func TestPaginate_PageSize_LastPage(t *testing.T) {
	p := Paginate(items(7), url.Values{"page": {"3"}, "size": {"3"}})

	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrevious)
	assert.Equal(t, []int{7}, p.Data)
}

func TestPaginate_BeyondLastPage(t *testing.T) {
	p := Paginate(items(7), url.Values{"page": {"10"}, "size": {"3"}})

	assert.Empty(t, p.Data)
	assert.False(t, p.HasNext)
}

func TestPaginate_OffsetLimit(t *testing.T) {
	p := Paginate(items(10), url.Values{"offset": {"4"}, "limit": {"2"}})

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 2, p.Size)
	assert.Equal(t, []int{5, 6}, p.Data)
}

func TestPaginate_Defaults(t *testing.T) {
	p := Paginate(items(25), url.Values{})

	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Len(t, p.Data, DefaultPageSize)
	assert.Equal(t, 2, p.TotalPages)
}

func TestPaginate_MaxSizeClamped(t *testing.T) {
	p := Paginate(items(300), url.Values{"size": {"1000"}})
	assert.Equal(t, MaxPageSize, p.Size)
}

func TestPaginate_InvalidParamsIgnored(t *testing.T) {
	p := Paginate(items(5), url.Values{"page": {"abc"}, "size": {"-1"}})
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.Size)
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate([]int{}, url.Values{})
	assert.Equal(t, 1, p.TotalPages)
	assert.Zero(t, p.TotalItems)
	assert.NotNil(t, p.Data)
}
