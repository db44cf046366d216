package demo

import (
	"github.com/sophialabs/xraydash/internal/domain/trace"
)

// Request is the reference product sent to the competitor-selection run.
type Request struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
	Reviews  int     `json:"reviews"`
	Category string  `json:"category"`
}

// Echo returns the request as a reference_product object.
func (r Request) Echo() trace.Value {
	return trace.Object(
		trace.Member{Key: "title", Value: trace.String(r.Title)},
		trace.Member{Key: "price", Value: trace.Float(r.Price)},
		trace.Member{Key: "rating", Value: trace.Float(r.Rating)},
		trace.Member{Key: "reviews", Value: trace.Float(float64(r.Reviews))},
		trace.Member{Key: "category", Value: trace.String(r.Category)},
	)
}

// CompetitorResult is the competitor chosen by a successful run.
type CompetitorResult struct {
	Title   string  `json:"title"`
	ASIN    string  `json:"asin"`
	Price   float64 `json:"price"`
	Rating  float64 `json:"rating"`
	Reviews int     `json:"reviews"`
	Score   float64 `json:"score"`
}

// Response is the backend's answer to a demo run.
type Response struct {
	Success            bool              `json:"success"`
	ReferenceProduct   trace.Value       `json:"reference_product"`
	SelectedCompetitor *CompetitorResult `json:"selected_competitor,omitempty"`
	Message            string            `json:"message,omitempty"`
}
