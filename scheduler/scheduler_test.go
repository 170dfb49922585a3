package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"code.hybscloud.com/xconnect/clock"
	"code.hybscloud.com/xconnect/scheduler"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	return loc
}

func TestFixedTimeResetFiresOncePerDay(t *testing.T) {
	loc := mustLoc(t, "UTC")
	mon := time.Date(2026, time.August, 3, 9, 31, 0, 0, loc)
	require.Equal(t, time.Monday, mon.Weekday(), "test anchor is not a Monday")
	fc := clock.NewFakeAt(mon)

	s := scheduler.New(fc)
	var resets []scheduler.Event
	s.Listen(func(e scheduler.Event) {
		if e.Type == scheduler.ResetDue {
			resets = append(resets, e)
		}
	})
	s.Associate("sess1", scheduler.Schedule{
		Window: scheduler.TimeWindow{
			StartLocal: 9*time.Hour + 30*time.Minute,
			EndLocal:   18 * time.Hour,
			Weekdays: map[time.Weekday]bool{
				time.Monday: true, time.Tuesday: true, time.Wednesday: true,
				time.Thursday: true, time.Friday: true,
			},
			Location: loc,
		},
		ResetLocal: 17 * time.Hour,
		Tolerance:  time.Minute,
	})
	s.Evaluate(fc.Now()) // baseline: already active, establishes haveActiveLast

	advanceTo := func(h, m int, dayOffset int) {
		target := time.Date(2026, time.August, 3+dayOffset, h, m, 0, 0, loc)
		fc.Advance(target.Sub(fc.Now()))
		s.Evaluate(fc.Now())
	}

	advanceTo(16, 59, 0)
	require.Empty(t, resets, "want 0 resets at 16:59")

	advanceTo(17, 0, 0)
	require.Len(t, resets, 1, "want 1 reset at 17:00")

	for _, m := range []int{1, 10, 30} {
		advanceTo(17, m, 0)
	}
	require.Len(t, resets, 1, "want still 1 reset after 17:01..17:30")

	advanceTo(17, 0, 1) // Tuesday 17:00
	require.Len(t, resets, 2, "want 2 resets at Tue 17:00")
}

func TestResetMissedTickStillFiresWithinTolerance(t *testing.T) {
	loc := mustLoc(t, "UTC")
	mon := time.Date(2026, time.August, 3, 16, 59, 0, 0, loc)
	fc := clock.NewFakeAt(mon)

	s := scheduler.New(fc)
	var resets int
	s.Listen(func(e scheduler.Event) {
		if e.Type == scheduler.ResetDue {
			resets++
		}
	})
	s.Associate("sess1", scheduler.Schedule{
		Window:     scheduler.TimeWindow{StartLocal: 9*time.Hour + 30*time.Minute, EndLocal: 18 * time.Hour, Location: loc},
		ResetLocal: 17 * time.Hour,
		Tolerance:  time.Minute,
	})
	s.Evaluate(fc.Now())

	// Tick jitter skips straight past 17:00 to 17:00:45, still inside the
	// 1-minute tolerance window.
	target := time.Date(2026, time.August, 3, 17, 0, 45, 0, loc)
	fc.Advance(target.Sub(fc.Now()))
	s.Evaluate(fc.Now())

	require.Equal(t, 1, resets, "want 1 reset within tolerance")
}

func TestSessionStartAndEndEmittedOnWindowEdges(t *testing.T) {
	loc := mustLoc(t, "UTC")
	start := time.Date(2026, time.August, 3, 9, 0, 0, 0, loc)
	fc := clock.NewFakeAt(start)

	s := scheduler.New(fc)
	var events []scheduler.EventType
	s.Listen(func(e scheduler.Event) { events = append(events, e.Type) })
	s.Associate("sess1", scheduler.Schedule{
		Window: scheduler.TimeWindow{StartLocal: 9*time.Hour + 30*time.Minute, EndLocal: 18 * time.Hour, Location: loc},
	})
	s.Evaluate(fc.Now()) // before window: no event

	adv := func(h, m int) {
		target := time.Date(2026, time.August, 3, h, m, 0, 0, loc)
		fc.Advance(target.Sub(fc.Now()))
		s.Evaluate(fc.Now())
	}
	adv(9, 30)
	adv(9, 31)
	adv(18, 0)
	adv(18, 1)

	require.Equal(t, []scheduler.EventType{scheduler.SessionStart, scheduler.SessionEnd}, events)
}

func TestOvernightWindowBoundaries(t *testing.T) {
	loc := mustLoc(t, "UTC")
	w := scheduler.TimeWindow{
		StartLocal: 22 * time.Hour,
		EndLocal:   6 * time.Hour,
		Location:   loc,
	}
	day := time.Date(2026, time.August, 3, 0, 0, 0, 0, loc)

	atStart := day.Add(22 * time.Hour)
	require.True(t, w.Active(atStart), "expected window active at exact start time")
	beforeStart := atStart.Add(-time.Minute)
	require.False(t, w.Active(beforeStart), "expected window inactive one minute before start")
	atEnd := day.Add(6 * time.Hour)
	require.False(t, w.Active(atEnd), "expected window inactive at exact end time")
	beforeEnd := atEnd.Add(-time.Minute)
	require.True(t, w.Active(beforeEnd), "expected window active one minute before end")
	midnight := day.Add(24 * time.Hour)
	require.True(t, w.Active(midnight), "expected window active crossing midnight (carried from prior day's start)")
}

func TestWarningResetFiresOnceBeforeReset(t *testing.T) {
	loc := mustLoc(t, "UTC")
	start := time.Date(2026, time.August, 3, 16, 40, 0, 0, loc)
	fc := clock.NewFakeAt(start)

	s := scheduler.New(fc)
	var warnings int
	s.Listen(func(e scheduler.Event) {
		if e.Type == scheduler.WarningReset {
			warnings++
		}
	})
	s.Associate("sess1", scheduler.Schedule{
		Window:      scheduler.TimeWindow{StartLocal: 9 * time.Hour, EndLocal: 18 * time.Hour, Location: loc},
		ResetLocal:  17 * time.Hour,
		Tolerance:   time.Minute,
		WarningLead: 15 * time.Minute,
	})
	s.Evaluate(fc.Now())

	for _, m := range []int{44, 45, 46, 50} {
		target := time.Date(2026, time.August, 3, 16, m, 0, 0, loc)
		fc.Advance(target.Sub(fc.Now()))
		s.Evaluate(fc.Now())
	}
	require.Equal(t, 1, warnings)
}
