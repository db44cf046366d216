package testutil

import (
	"fmt"
	"testing"

	"github.com/sophialabs/xraydash/internal/domain/trace"
	"github.com/sophialabs/xraydash/internal/domain/viewer"
)

// ErrNotFound is returned by StubGateway.GetExecution for unknown ids.
var ErrNotFound = viewer.ErrUnknownExecution

// CompetitorRunJSON is a complete five-step competitor-selection execution.
// Its apply_filters step evaluates five candidates: two fail price_range,
// one fails min_rating and none fail min_reviews.
const CompetitorRunJSON = `{
  "execution_id": "exec-001",
  "name": "competitor_selection",
  "started_at": "2025-01-15T10:30:00.123456",
  "ended_at": "2025-01-15T10:30:04.500000",
  "metadata": {"reference_asin": "DEMO-Stainless"},
  "steps": [
    {"name": "keyword_generation", "inputs": {"title": "Stainless Steel Water Bottle 32oz Insulated"},
     "outputs": {"keywords": ["water bottle", "insulated bottle"]},
     "reasoning": "Extracted key product attributes", "duration_ms": 12.4, "timestamp": "2025-01-15T10:30:00.200000"},
    {"name": "candidate_search", "inputs": {"keywords": ["water bottle"]},
     "outputs": {"total_results": 5}, "duration_ms": 340.6, "timestamp": "2025-01-15T10:30:00.600000"},
    {"name": "apply_filters", "inputs": {"candidates_count": 5}, "outputs": {"passed": 2},
     "reasoning": "Applied price, rating and review filters", "duration_ms": 1.2,
     "timestamp": "2025-01-15T10:30:00.700000",
     "metadata": {
       "filters_applied": {"price_range": {"min": 14.99, "max": 59.98}, "min_rating": {"min": 3.8}, "min_reviews": {"min": 100}},
       "failed_by_filter": {"price_range": 2, "min_rating": 1, "min_reviews": 0},
       "evaluations": [
         {"title": "HydroFlask 32oz", "asin": "B0001", "metrics": {"price": 44.99, "rating": 4.5, "reviews": 8932},
          "filter_results": {"price_range": {"passed": true, "detail": "$44.99 is within $14.99-$59.98"},
                             "min_rating": {"passed": true, "detail": "4.5 >= 3.8"},
                             "min_reviews": {"passed": true, "detail": "8932 >= 100"}}},
         {"title": "Cheap Lid", "asin": "B0002", "metrics": {"price": 8.99, "rating": 4.6, "reviews": 3421},
          "filter_results": {"price_range": {"passed": false, "detail": "$8.99 is outside $14.99-$59.98"},
                             "min_rating": {"passed": true, "detail": "4.6 >= 3.8"},
                             "min_reviews": {"passed": true, "detail": "3421 >= 100"}}},
         {"title": "Yeti Rambler", "asin": "B0003", "metrics": {"price": 34.99, "rating": 3.1, "reviews": 5621},
          "filter_results": {"price_range": {"passed": true, "detail": "$34.99 is within $14.99-$59.98"},
                             "min_rating": {"passed": false, "detail": "3.1 < 3.8"},
                             "min_reviews": {"passed": true, "detail": "5621 >= 100"}}},
         {"title": "Luxury Flask", "asin": "B0004", "metrics": {"price": 129.0, "rating": 4.9, "reviews": 1210},
          "filter_results": {"price_range": {"passed": false, "detail": "$129.00 is outside $14.99-$59.98"},
                             "min_rating": {"passed": true, "detail": "4.9 >= 3.8"},
                             "min_reviews": {"passed": true, "detail": "1210 >= 100"}}},
         {"title": "Camp Bottle", "asin": "B0005", "metrics": {"price": 19.99, "rating": 4.0, "reviews": 150},
          "filter_results": {"price_range": {"passed": true, "detail": "$19.99 is within $14.99-$59.98"},
                             "min_rating": {"passed": true, "detail": "4.0 >= 3.8"},
                             "min_reviews": {"passed": true, "detail": "150 >= 100"}}}
       ]
     }},
    {"name": "relevance_check", "inputs": {"candidates": 2}, "outputs": {"relevant": 2},
     "duration_ms": 800, "timestamp": "2025-01-15T10:30:01.500000"},
    {"name": "rank_and_select", "inputs": {"candidates": 2},
     "outputs": {"selected": {"title": "HydroFlask 32oz", "asin": "B0001", "score": 0.87}},
     "reasoning": "Highest combined score", "duration_ms": 3, "timestamp": "2025-01-15T10:30:04.400000"}
  ]
}`

// CompetitorRun parses CompetitorRunJSON.
func CompetitorRun(t testing.TB) *trace.Execution {
	t.Helper()
	exec, err := trace.ParseExecution([]byte(CompetitorRunJSON))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return exec
}

// SimpleExecution builds a minimal execution with one step. Open executions
// have no ended_at.
func SimpleExecution(t testing.TB, id, name string, open bool) *trace.Execution {
	t.Helper()
	ended := `, "ended_at": "2025-01-15T11:00:01"`
	if open {
		ended = ""
	}
	doc := fmt.Sprintf(`{"execution_id": %q, "name": %q, "started_at": "2025-01-15T11:00:00"%s,
		"steps": [{"name": "keyword_generation", "inputs": {}, "outputs": {}, "timestamp": "2025-01-15T11:00:00"}]}`,
		id, name, ended)
	exec, err := trace.ParseExecution([]byte(doc))
	if err != nil {
		t.Fatalf("parsing fixture %s: %v", id, err)
	}
	return exec
}
