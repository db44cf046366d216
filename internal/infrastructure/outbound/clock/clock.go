package clock

import (
	"time"

	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
)

var _ ports.Clock = (*RealClock)(nil)

// RealClock implements ports.Clock using the system clock, reported in a
// fixed location.
type RealClock struct {
	loc *time.Location
}

// New creates a RealClock in loc. A nil loc means time.Local.
func New(loc *time.Location) *RealClock {
	if loc == nil {
		loc = time.Local
	}
	return &RealClock{loc: loc}
}

func (c *RealClock) Now() time.Time { return time.Now().In(c.loc) }

// Location returns the location times are reported in.
func (c *RealClock) Location() *time.Location { return c.loc }

// LoadLocation resolves a zone name such as "UTC", "Local" or
// "Europe/Berlin". An empty name means time.Local.
func LoadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local", "local":
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
