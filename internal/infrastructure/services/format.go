package services

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sophialabs/xraydash/internal/domain/trace"
)

// TimestampLayout renders absolute timestamps as month/day/year with a
// 12-hour clock.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Formatter renders numbers and times for display in one locale and zone.
type Formatter struct {
	loc     *time.Location
	printer *message.Printer
}

// NewFormatter creates a formatter. An unknown locale falls back to English;
// a nil loc means UTC.
func NewFormatter(locale string, loc *time.Location) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{loc: loc, printer: message.NewPrinter(tag)}
}

// Timestamp renders ts in the formatter's zone. Unparseable values are shown
// as written; absent ones as "N/A".
func (f *Formatter) Timestamp(ts trace.Timestamp) string {
	if ts.IsZero() {
		return "N/A"
	}
	if ts.Time.IsZero() {
		return ts.Raw
	}
	return ts.Time.In(f.loc).Format(TimestampLayout)
}

// Duration renders milliseconds rounded to a whole number, e.g. "340ms".
func (f *Formatter) Duration(ms *float64) string {
	if ms == nil {
		return "N/A"
	}
	return strconv.FormatFloat(math.Round(*ms), 'f', 0, 64) + "ms"
}

// Currency renders a price with two decimals, e.g. "$27.50".
func (f *Formatter) Currency(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

// Count renders an integer count with thousands grouping, e.g. "2,000".
func (f *Formatter) Count(n float64) string {
	return f.printer.Sprintf("%d", int64(math.Round(n)))
}

// Score renders a selection score with two decimals.
func (f *Formatter) Score(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Number renders v in its shortest form, e.g. 4.4, 129 or 1e-7.
func (f *Formatter) Number(v float64) string {
	abs := math.Abs(v)
	if abs >= 1e21 || (abs != 0 && abs < 1e-6) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Plural renders n with a noun, adding "s" unless n is 1, e.g. "5 steps".
func Plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
