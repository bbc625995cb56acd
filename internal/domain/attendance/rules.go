package attendance

import (
	"time"
)

// StatusForPunchIn derives the provisional status from the punch-in
// time-of-day:
//
//	[10:00, 11:00) present
//	[11:00, 14:00) late
//	[14:00, 15:00) half_day
//	otherwise      absent
func StatusForPunchIn(t time.Time) Status {
	switch h := t.Hour(); {
	case h >= 10 && h < 11:
		return StatusPresent
	case h >= 11 && h < 14:
		return StatusLate
	case h >= 14 && h < 15:
		return StatusHalfDay
	default:
		return StatusAbsent
	}
}

// IsLateDeparture reports whether a punch-out is strictly after 18:00:00.
// A late departure forces the day's status to absent; an on-time punch-out
// never changes the punch-in-derived status.
func IsLateDeparture(t time.Time) bool {
	if t.Hour() != 18 {
		return t.Hour() > 18
	}
	return t.Minute() > 0 || t.Second() > 0
}
