package services

import (
	"strconv"

	"github.com/sophialabs/xraydash/internal/domain/trace"
)

// MaxJSONDepth is the deepest level at which arrays and objects are expanded.
// Containers below it render as a placeholder.
const MaxJSONDepth = 4

// Placeholders for containers nested deeper than MaxJSONDepth.
const (
	ArrayPlaceholder  = "[...array]"
	ObjectPlaceholder = "{...object}"
)

// JSONLine is one row of a rendered JSON value. Indent is the visual nesting
// level; Label is "key:" or "[i]:" for members and items.
type JSONLine struct {
	Indent int
	Label  string
	Class  string
	Text   string
}

// FlattenJSON renders v as rows, expanding containers recursively up to
// MaxJSONDepth.
func FlattenJSON(v trace.Value, f *Formatter) []JSONLine {
	var lines []JSONLine
	flatten(&lines, v, 0, 0, "", f)
	return lines
}

func flatten(lines *[]JSONLine, v trace.Value, depth, indent int, label string, f *Formatter) {
	switch v.Kind() {
	case trace.KindArray:
		if depth > MaxJSONDepth {
			*lines = append(*lines, JSONLine{Indent: indent, Label: label, Class: "truncated", Text: ArrayPlaceholder})
			return
		}
		if v.Len() == 0 {
			*lines = append(*lines, JSONLine{Indent: indent, Label: label, Class: "array", Text: "[]"})
			return
		}
		if label != "" {
			*lines = append(*lines, JSONLine{Indent: indent, Label: label, Class: "array"})
		}
		for i, item := range v.Items() {
			flatten(lines, item, depth+1, indent+1, "["+strconv.Itoa(i)+"]:", f)
		}

	case trace.KindObject:
		if depth > MaxJSONDepth {
			*lines = append(*lines, JSONLine{Indent: indent, Label: label, Class: "truncated", Text: ObjectPlaceholder})
			return
		}
		if v.Len() == 0 {
			*lines = append(*lines, JSONLine{Indent: indent, Label: label, Class: "object", Text: "{}"})
			return
		}
		if label != "" {
			*lines = append(*lines, JSONLine{Indent: indent, Label: label, Class: "object"})
		}
		for _, m := range v.Members() {
			flatten(lines, m.Value, depth+1, indent+1, m.Key+":", f)
		}

	default:
		class, text := scalar(v, f)
		*lines = append(*lines, JSONLine{Indent: indent, Label: label, Class: class, Text: text})
	}
}

func scalar(v trace.Value, f *Formatter) (class, text string) {
	switch v.Kind() {
	case trace.KindString:
		s, _ := v.AsString()
		return "string", strconv.Quote(s)
	case trace.KindNumber:
		if n, ok := v.AsFloat(); ok {
			return "number", f.Number(n)
		}
		return "number", v.NumberText()
	case trace.KindBool:
		b, _ := v.AsBool()
		return "bool", strconv.FormatBool(b)
	default:
		return "null", "null"
	}
}
