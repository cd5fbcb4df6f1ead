package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsTradingDay(t *testing.T) {
	require := require.New(t)

	cal := NewTradingCalendar("usa", []time.Time{date(2014, time.July, 4)})

	require.True(cal.IsTradingDay(date(2014, time.April, 17)))  // Thursday
	require.False(cal.IsTradingDay(date(2014, time.April, 19))) // Saturday
	require.False(cal.IsTradingDay(date(2014, time.April, 20))) // Sunday
	require.False(cal.IsTradingDay(date(2014, time.July, 4)))   // holiday (Friday)
}

func TestEffectiveDateTradingDayUnchanged(t *testing.T) {
	require := require.New(t)

	cal := NewTradingCalendar("usa", nil)
	monday := date(2014, time.April, 21)

	require.Equal(monday, cal.EffectiveDate(monday))
}

func TestEffectiveDateRollsOverWeekend(t *testing.T) {
	require := require.New(t)

	cal := NewTradingCalendar("usa", nil)

	// Saturday 2014-04-19 rolls to Monday 2014-04-21
	require.Equal(date(2014, time.April, 21), cal.EffectiveDate(date(2014, time.April, 19)))
	// Sunday rolls to the same Monday
	require.Equal(date(2014, time.April, 21), cal.EffectiveDate(date(2014, time.April, 20)))
}

func TestEffectiveDateRollsOverHolidayRun(t *testing.T) {
	require := require.New(t)

	// Independence Day 2014 fell on Friday; Thursday close + Fri/Sat/Sun run
	cal := NewTradingCalendar("usa", []time.Time{date(2014, time.July, 4)})

	require.Equal(date(2014, time.July, 7), cal.EffectiveDate(date(2014, time.July, 4)))
	require.Equal(date(2014, time.July, 7), cal.EffectiveDate(date(2014, time.July, 5)))

	// Monday holiday adjacent to a weekend rolls past the whole run
	cal = NewTradingCalendar("usa", []time.Time{date(2014, time.September, 1)})
	require.Equal(date(2014, time.September, 2), cal.EffectiveDate(date(2014, time.August, 30)))
}

func TestEffectiveDateForwardOnlyAndIdempotent(t *testing.T) {
	require := require.New(t)

	cal := NewTradingCalendar("usa", []time.Time{date(2014, time.April, 18)})

	days := []time.Time{
		date(2014, time.April, 17),
		date(2014, time.April, 18),
		date(2014, time.April, 19),
		date(2014, time.April, 20),
		date(2014, time.April, 21),
	}
	for _, d := range days {
		eff := cal.EffectiveDate(d)
		require.False(eff.Before(d), "effective date must never precede nominal date")
		require.True(cal.IsTradingDay(eff))
		require.Equal(eff, cal.EffectiveDate(eff), "effective date must be a fixed point")
	}
}

func TestEffectiveDateNormalizesIntraday(t *testing.T) {
	require := require.New(t)

	cal := NewTradingCalendar("usa", nil)
	saturdayNoon := time.Date(2014, time.April, 19, 12, 30, 0, 0, time.UTC)

	require.Equal(date(2014, time.April, 21), cal.EffectiveDate(saturdayNoon))
}
