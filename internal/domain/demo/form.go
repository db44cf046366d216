package demo

import (
	"math"
	"strconv"
	"strings"
)

// Form holds the raw demo form values as typed by the user.
type Form struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Rating   string `json:"rating"`
	Reviews  string `json:"reviews"`
	Category string `json:"category"`
}

// FieldError is one invalid form field.
type FieldError struct {
	Field  string
	Reason string
}

// FormError lists every invalid field of a submitted form.
type FormError struct {
	Fields []FieldError
}

func (e *FormError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Reason returns the reason recorded for field, if any.
func (e *FormError) Reason(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Reason
		}
	}
	return ""
}

// FormFromPreset fills a form from a sample product.
func FormFromPreset(p SampleProduct) Form {
	return Form{
		Title:    p.Title,
		Price:    p.Price,
		Rating:   p.Rating,
		Reviews:  p.Reviews,
		Category: p.Category,
	}
}

// DefaultForm is the form pre-filled with the first sample product.
func DefaultForm() Form {
	return FormFromPreset(Catalogue()[0])
}

// Validate converts the form into a Request. All fields are required.
func (f Form) Validate() (Request, error) {
	var (
		req  Request
		errs []FieldError
	)
	add := func(field, reason string) {
		errs = append(errs, FieldError{Field: field, Reason: reason})
	}

	req.Title = strings.TrimSpace(f.Title)
	if req.Title == "" {
		add("title", "is required")
	}

	if price, ok := parseDecimal(f.Price); !ok {
		add("price", "must be a number")
	} else if price < 0 {
		add("price", "must not be negative")
	} else {
		req.Price = price
	}

	if rating, ok := parseDecimal(f.Rating); !ok {
		add("rating", "must be a number")
	} else if rating < 0 || rating > 5 {
		add("rating", "must be between 0 and 5")
	} else {
		req.Rating = rating
	}

	if reviews, err := strconv.Atoi(strings.TrimSpace(f.Reviews)); err != nil {
		add("reviews", "must be a whole number")
	} else if reviews < 0 {
		add("reviews", "must not be negative")
	} else {
		req.Reviews = reviews
	}

	req.Category = strings.TrimSpace(f.Category)
	if req.Category == "" {
		add("category", "is required")
	}

	if len(errs) > 0 {
		return Request{}, &FormError{Fields: errs}
	}
	return req, nil
}

func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
