package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAndParseTimeRoundTrip(t *testing.T) {
	instant := time.Date(2026, 3, 5, 14, 45, 30, 0, time.UTC)

	formatted := FormatTime(instant)
	assert.Equal(t, "02:45:30 PM", formatted)

	parsed, err := ParseTime(formatted)
	require.NoError(t, err)
	assert.Equal(t, 14, parsed.Hour())
	assert.Equal(t, 45, parsed.Minute())
	assert.Equal(t, 30, parsed.Second())
}

func TestParseTimeRejectsBadInput(t *testing.T) {
	for _, input := range []string{"", "14:45:30", "02:45 PM", "garbage"} {
		_, err := ParseTime(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestCivilDate(t *testing.T) {
	instant := time.Date(2026, 3, 5, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "2026-03-05", CivilDate(instant))
}

func TestWorkingDuration(t *testing.T) {
	tests := []struct {
		name     string
		punchIn  string
		punchOut string
		want     string
	}{
		{"hours and minutes", "10:30:00 AM", "05:00:00 PM", "6h 30m"},
		{"exact hours", "10:30:00 AM", "05:30:00 PM", "7h"},
		{"sub-hour", "10:00:00 AM", "10:45:00 AM", "0h 45m"},
		{"zero elapsed", "10:00:00 AM", "10:00:00 AM", "0h"},
		{"punch-out before punch-in clamps", "05:00:00 PM", "10:30:00 AM", "0h"},
		{"seconds truncate", "10:00:30 AM", "06:00:00 PM", "7h 59m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WorkingDuration(tt.punchIn, tt.punchOut)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkingDurationBadInput(t *testing.T) {
	_, err := WorkingDuration("not a time", "05:00:00 PM")
	assert.Error(t, err)

	_, err = WorkingDuration("10:00:00 AM", "25:00")
	assert.Error(t, err)
}

func TestSystemClockFallsBackToUTC(t *testing.T) {
	clk := NewSystemClock("Not/AZone")
	assert.Equal(t, time.UTC, clk.Now().Location())
}

func TestFixedClock(t *testing.T) {
	instant := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	clk := FixedClock{Instant: instant}
	assert.Equal(t, instant, clk.Now())
	assert.Equal(t, instant, clk.Now())
}
