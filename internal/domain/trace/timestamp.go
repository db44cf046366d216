package trace

import (
	"encoding/json"
	"fmt"
	"time"
)

// The SDK writes naive UTC timestamps (Python isoformat); RFC 3339 is also
// accepted.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is an ISO-8601 instant that remembers its source text.
type Timestamp struct {
	Raw  string
	Time time.Time
}

// ParseTimestamp parses s using the accepted layouts. Zone-less values are UTC.
func ParseTimestamp(s string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Raw: s, Time: t}, nil
		}
	}
	return Timestamp{Raw: s}, fmt.Errorf("unrecognized timestamp %q", s)
}

// IsZero reports whether no timestamp was supplied.
func (t Timestamp) IsZero() bool {
	return t.Raw == "" && t.Time.IsZero()
}

// UnmarshalJSON keeps the raw text even when it cannot be parsed; the
// validator decides whether that is fatal.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == nil {
		*t = Timestamp{}
		return nil
	}
	parsed, _ := ParseTimestamp(*s)
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	if t.Raw != "" {
		return json.Marshal(t.Raw)
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
