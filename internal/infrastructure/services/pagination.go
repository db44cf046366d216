package services

import (
	"math"
	"net/url"
	"strconv"
)

// Default and maximum page sizes for API listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is the envelope wrapped around paginated API listings.
type Page[T any] struct {
	Data        []T  `json:"data"`
	Page        int  `json:"page"`
	Size        int  `json:"size"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Paginate slices items according to the query parameters. Both
// page/size and offset/limit styles are accepted; offset wins when present.
func Paginate[T any](items []T, query url.Values) Page[T] {
	offset, limit := resolveSliceBounds(query)

	totalItems := len(items)
	offset = min(offset, totalItems)
	end := min(offset+limit, totalItems)

	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))
	if totalPages == 0 {
		totalPages = 1
	}

	data := make([]T, end-offset)
	copy(data, items[offset:end])

	return Page[T]{
		Data:        data,
		Page:        (offset / limit) + 1,
		Size:        limit,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     end < totalItems,
		HasPrevious: offset > 0,
	}
}

// resolveSliceBounds extracts offset and limit from query parameters.
func resolveSliceBounds(qp url.Values) (offset, limit int) {
	limit = DefaultPageSize

	if _, ok := qp["offset"]; ok {
		if n, err := strconv.Atoi(qp.Get("offset")); err == nil && n >= 0 {
			offset = n
		}
		if n, err := strconv.Atoi(qp.Get("limit")); err == nil && n > 0 {
			limit = n
		}
	} else {
		page := 1
		if n, err := strconv.Atoi(qp.Get("page")); err == nil && n >= 1 {
			page = n
		}
		if n, err := strconv.Atoi(qp.Get("size")); err == nil && n > 0 {
			limit = n
		}
		limit = min(limit, MaxPageSize)
		offset = (page - 1) * limit
		return offset, limit
	}

	limit = min(limit, MaxPageSize)
	return offset, limit
}
