package clock

import (
	"fmt"
	"time"
)

// DefaultTimezone is the civil timezone used to key daily state when
// none is configured. Every caller sees the same "today" regardless of
// where their request originates.
const DefaultTimezone = "Asia/Kolkata"

// DateLayout is the calendar-date format produced by Today.
const DateLayout = "2006-01-02"

// Provider supplies "today" as a calendar date in a fixed civil
// timezone. It is injected wherever date-keyed state is read or written;
// nothing in the core reads ambient local time.
type Provider struct {
	loc *time.Location
	now func() time.Time
}

// NewProvider creates a Provider for the named IANA timezone.
// PRE: tz is a valid IANA timezone name (or empty for the default)
// POST: Returns a provider whose Today is stable for all callers
func NewProvider(tz string) (*Provider, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &Provider{loc: loc, now: time.Now}, nil
}

// NewFixedProvider creates a Provider pinned to a fixed instant, for tests.
func NewFixedProvider(at time.Time) *Provider {
	return &Provider{loc: at.Location(), now: func() time.Time { return at }}
}

// Today returns the current calendar date in the fixed timezone.
// POST: Returns a YYYY-MM-DD date string
func (p *Provider) Today() string {
	return p.now().In(p.loc).Format(DateLayout)
}

// Now returns the current instant in the fixed timezone.
func (p *Provider) Now() time.Time {
	return p.now().In(p.loc)
}
