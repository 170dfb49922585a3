// Package clock re-exports clockwork.Clock as the engine's injectable time
// source: production code takes a clock.Clock and tests substitute
// clockwork.NewFakeClock() to drive heartbeat timers, reconnect backoff,
// and the scheduler deterministically.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the injectable time source every timer-driven component
// (session heartbeats, reconnect backoff, scheduler ticks) takes instead of
// calling time.Now/time.After directly.
type Clock = clockwork.Clock

// FakeClock is the deterministic test double; NewFake wires it with a
// neutral starting time so test assertions never depend on wall-clock time.
type FakeClock = clockwork.FakeClock

// New returns the real, wall-clock-backed implementation.
func New() Clock { return clockwork.NewRealClock() }

// NewFake returns a FakeClock frozen at a fixed instant, for deterministic
// scheduler and session-timeout tests.
func NewFake() FakeClock { return clockwork.NewFakeClock() }

// NewFakeAt returns a FakeClock frozen at t, for tests that need a known
// starting instant (a specific weekday and time of day, for example)
// rather than an arbitrary neutral one.
func NewFakeAt(t time.Time) FakeClock { return clockwork.NewFakeClockAt(t) }
