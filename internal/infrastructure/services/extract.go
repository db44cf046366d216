package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/sophialabs/xraydash/internal/domain/trace"
)

// ErrEmptyPath is returned when no JSONPath expression is given.
var ErrEmptyPath = errors.New("jsonpath expression is required")

// PathError reports an invalid or unmatched JSONPath expression.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string { return fmt.Sprintf("jsonpath %q: %v", e.Path, e.Err) }

func (e *PathError) Unwrap() error { return e.Err }

// ExtractStep evaluates a JSONPath expression such as
// "$.metadata.evaluations[*].asin" against a step document.
func ExtractStep(ctx context.Context, step *trace.Step, path string) (any, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyPath
	}
	eval, err := jsonpath.New(path)
	if err != nil {
		return nil, &PathError{Path: path, Err: err}
	}

	raw, err := json.Marshal(step)
	if err != nil {
		return nil, fmt.Errorf("encoding step: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding step: %w", err)
	}

	result, err := eval(ctx, doc)
	if err != nil {
		return nil, &PathError{Path: path, Err: err}
	}
	return result, nil
}
