package clock

import (
	"fmt"
	"time"
)

// TimeLayout is the canonical 12-hour clock format used on the wire and at
// rest for punch times.
const TimeLayout = "03:04:05 PM"

// DateLayout is the civil date format used for attendance records.
const DateLayout = "2006-01-02"

// AutoPunchOutTime is the fixed time-of-day applied by the end-of-day
// reconciliation sweep to sessions that were never punched out.
const AutoPunchOutTime = "06:01:00 PM"

// Clock provides the current instant in the configured civil timezone.
// All attendance decisions are made against this clock, never against UTC.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystemClock returns a Clock pinned to the given civil timezone.
// Falls back to UTC if the timezone cannot be loaded.
func NewSystemClock(timezone string) Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &systemClock{loc: loc}
}

func (c *systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Instant
}

// FormatTime renders a time-of-day as a canonical 12-hour clock string.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ParseTime parses a canonical 12-hour clock string. The date component of
// the result is the zero reference day; only the time-of-day is meaningful.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected %q format", s, TimeLayout)
	}
	return t, nil
}

// CivilDate returns the civil date string for an instant.
func CivilDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WorkingDuration computes the elapsed time between two punch strings and
// formats it as "6h 30m" (or "7h" on exact hours). Both times are placed on
// the same reference day before subtracting; a punch-out that is numerically
// earlier than or equal to the punch-in yields "0h", it is never interpreted
// as crossing midnight.
func WorkingDuration(punchIn, punchOut string) (string, error) {
	in, err := ParseTime(punchIn)
	if err != nil {
		return "", err
	}
	out, err := ParseTime(punchOut)
	if err != nil {
		return "", err
	}

	elapsed := out.Sub(in)
	if elapsed <= 0 {
		return "0h", nil
	}

	hours := int(elapsed / time.Hour)
	minutes := int(elapsed % time.Hour / time.Minute)
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours), nil
	}
	return fmt.Sprintf("%dh %dm", hours, minutes), nil
}
