package hours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-06-02 is a Monday.
func instant(day time.Weekday, hour, min int) time.Time {
	base := time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
	offset := (int(day) - int(time.Monday) + 7) % 7
	return base.AddDate(0, 0, offset)
}

func TestAlwaysOpenLiterals(t *testing.T) {
	for _, spec := range []string{"24/7", "24h", " 24/7 ", "24H"} {
		assert.True(t, IsOpen(spec, instant(time.Sunday, 3, 0)), "spec %q", spec)
	}
}

func TestEmptySpecClosed(t *testing.T) {
	assert.False(t, IsOpen("", time.Now()))
}

func TestWeekdayBoundaries(t *testing.T) {
	spec := "Mo-Fr 09:00-17:00"
	tests := []struct {
		hour, min int
		open      bool
	}{
		{8, 59, false},
		{9, 0, true},
		{12, 30, true},
		{17, 0, true}, // close boundary is inclusive
		{17, 1, false},
	}
	for _, tt := range tests {
		got := IsOpen(spec, instant(time.Wednesday, tt.hour, tt.min))
		assert.Equal(t, tt.open, got, "Wednesday %02d:%02d", tt.hour, tt.min)
	}

	assert.False(t, IsOpen(spec, instant(time.Saturday, 12, 0)))
	assert.True(t, IsOpen(spec, instant(time.Monday, 9, 0)))
}

func TestOvernightRange(t *testing.T) {
	spec := "Fr 22:00-02:00"

	assert.True(t, IsOpen(spec, instant(time.Friday, 22, 0)))
	assert.True(t, IsOpen(spec, instant(time.Friday, 23, 59)))
	assert.True(t, IsOpen(spec, instant(time.Saturday, 1, 0)), "overnight range spills into Saturday")
	assert.False(t, IsOpen(spec, instant(time.Saturday, 3, 0)))
	assert.False(t, IsOpen(spec, instant(time.Friday, 21, 0)))
	assert.False(t, IsOpen(spec, instant(time.Thursday, 23, 0)))
}

func TestWrappingDayRange(t *testing.T) {
	spec := "Fr-Mo 10:00-18:00"

	assert.True(t, IsOpen(spec, instant(time.Friday, 12, 0)))
	assert.True(t, IsOpen(spec, instant(time.Sunday, 12, 0)))
	assert.True(t, IsOpen(spec, instant(time.Monday, 12, 0)))
	assert.False(t, IsOpen(spec, instant(time.Wednesday, 12, 0)))
}

func TestMultipleRules(t *testing.T) {
	spec := "Mo-Fr 09:00-17:00; Sa 10:00-15:00"

	assert.True(t, IsOpen(spec, instant(time.Saturday, 11, 0)))
	assert.False(t, IsOpen(spec, instant(time.Saturday, 16, 0)))
	assert.True(t, IsOpen(spec, instant(time.Tuesday, 10, 0)))
}

func TestMalformedFragmentsSkipped(t *testing.T) {
	sched := Parse("Mo-Fr 09:00-17:00; sunrise-sunset; public holidays off")

	require.Len(t, sched.Rules, 1)
	assert.Equal(t, []string{"sunrise-sunset", "public holidays off"}, sched.Skipped)
	assert.True(t, sched.OpenAt(instant(time.Tuesday, 10, 0)))
}

func TestAllFragmentsMalformedMeansClosed(t *testing.T) {
	sched := Parse("whenever; ???")
	assert.Len(t, sched.Skipped, 2)
	assert.False(t, sched.OpenAt(instant(time.Monday, 12, 0)))
}

func TestUnknownDayCodeSkipped(t *testing.T) {
	sched := Parse("Xx 09:00-17:00")
	assert.Empty(t, sched.Rules)
	assert.Len(t, sched.Skipped, 1)
}
