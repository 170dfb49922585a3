// Package scheduler evaluates per-session trading-window and fixed-time
// reset schedules against an injectable clock and emits SESSION_START,
// SESSION_END, WARNING_RESET, and RESET_DUE events to registered listeners.
//
// Timer bookkeeping (the periodic tick that drives re-evaluation in
// production) is delegated to github.com/go-co-op/gocron/v2. The
// window/reset evaluation itself is plain Go living in Evaluate,
// independent of gocron's own timer, so tests drive it directly with an
// explicit instant from a fake clock instead of waiting on a real timer to
// fire.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"code.hybscloud.com/xconnect/clock"
)

// EventType identifies one of the four events the scheduler emits.
type EventType int

const (
	SessionStart EventType = iota
	SessionEnd
	WarningReset
	ResetDue
)

func (t EventType) String() string {
	switch t {
	case SessionStart:
		return "SESSION_START"
	case SessionEnd:
		return "SESSION_END"
	case WarningReset:
		return "WARNING_RESET"
	case ResetDue:
		return "RESET_DUE"
	default:
		return "UNKNOWN"
	}
}

// Event is one emitted transition for one session.
type Event struct {
	Type      EventType
	SessionID string
	Time      time.Time
}

// TimeWindow is a trading session's active window, expressed as
// time-of-day offsets from local midnight in Location. When StartLocal >
// EndLocal, or Overnight is explicitly set, the window spans midnight:
// [StartLocal, 24:00) union [00:00, EndLocal). At exactly StartLocal the
// window has begun; at exactly EndLocal it has already ended.
type TimeWindow struct {
	StartLocal time.Duration
	EndLocal   time.Duration
	Overnight  bool
	Weekdays   map[time.Weekday]bool
	Location   *time.Location
}

func (w TimeWindow) loc() *time.Location {
	if w.Location != nil {
		return w.Location
	}
	return time.UTC
}

func (w TimeWindow) spansMidnight() bool {
	return w.Overnight || w.StartLocal > w.EndLocal
}

func (w TimeWindow) effectiveOn(day time.Weekday) bool {
	if len(w.Weekdays) == 0 {
		return true
	}
	return w.Weekdays[day]
}

// Active reports whether now falls inside the window.
func (w TimeWindow) Active(now time.Time) bool {
	local := now.In(w.loc())
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.loc())
	tod := local.Sub(midnight)

	if !w.spansMidnight() {
		return w.effectiveOn(local.Weekday()) && tod >= w.StartLocal && tod < w.EndLocal
	}

	// Overnight window: the late half [StartLocal, 24:00) is effective on
	// today's weekday, the early half [00:00, EndLocal) belongs to the
	// window that started the previous calendar day.
	if tod >= w.StartLocal {
		return w.effectiveOn(local.Weekday())
	}
	if tod < w.EndLocal {
		return w.effectiveOn(local.AddDate(0, 0, -1).Weekday())
	}
	return false
}

// Schedule binds a trading window to a fixed daily reset time and the
// tolerance/warning parameters governing RESET_DUE and WARNING_RESET.
type Schedule struct {
	Window TimeWindow

	// ResetLocal is the time-of-day, relative to Window.Location midnight,
	// at which the session's sequence numbers reset.
	ResetLocal time.Duration

	// Tolerance is how late a tick may discover a due reset and still fire
	// it as on-time; default 1 minute if zero.
	Tolerance time.Duration

	// WarningLead, if nonzero, causes a WARNING_RESET to fire this long
	// before ResetLocal, once per local calendar day.
	WarningLead time.Duration
}

func (s Schedule) tolerance() time.Duration {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return time.Minute
}

func (s Schedule) resetDue(tod time.Duration) bool {
	return tod >= s.ResetLocal && tod < s.ResetLocal+s.tolerance()
}

func (s Schedule) warningDue(tod time.Duration) bool {
	if s.WarningLead <= 0 {
		return false
	}
	warnAt := s.ResetLocal - s.WarningLead
	return tod >= warnAt && tod < warnAt+s.tolerance()
}

type sessionState struct {
	schedule       Schedule
	activeLast     bool
	haveActiveLast bool
	lastResetDate  string
	lastWarnDate   string
}

// Scheduler evaluates registered session/schedule associations against a
// Clock and notifies listeners of state transitions.
type Scheduler struct {
	clock clock.Clock

	mu        sync.Mutex
	sessions  map[string]*sessionState
	listeners []func(Event)

	gocron gocron.Scheduler
}

// New returns a Scheduler driven by c. Call Start to begin the production
// gocron-driven tick; tests may instead call Evaluate directly without
// ever starting the internal gocron scheduler.
func New(c clock.Clock) *Scheduler {
	return &Scheduler{
		clock:    c,
		sessions: make(map[string]*sessionState),
	}
}

// Associate registers sessionID against sched, replacing any prior
// association. The session starts with no recorded last-active state, so
// the first Evaluate call after Associate emits SESSION_START if now falls
// inside the window and nothing if it falls outside; SESSION_END is only
// emitted on a later Evaluate that sees the window close.
func (s *Scheduler) Associate(sessionID string, sched Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = &sessionState{schedule: sched}
}

// Remove drops a session's association.
func (s *Scheduler) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Listen registers a callback invoked for every emitted Event, in the
// order sessions are evaluated within one tick. Listeners run on the
// caller's goroutine inside Evaluate (or, once Start is called,
// gocron's job goroutine).
func (s *Scheduler) Listen(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Evaluate re-checks every associated session's expected active/reset
// state against now and emits any transitions exactly once. It is the
// scheduler's entire behavior; Start merely calls it on a gocron tick.
func (s *Scheduler) Evaluate(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, st := range s.sessions {
		w := st.schedule.Window
		local := now.In(w.loc())
		midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.loc())
		tod := local.Sub(midnight)
		today := local.Format("2006-01-02")

		active := w.Active(now)
		if !st.haveActiveLast || active != st.activeLast {
			if active {
				s.emit(Event{Type: SessionStart, SessionID: id, Time: now})
			} else if st.haveActiveLast {
				s.emit(Event{Type: SessionEnd, SessionID: id, Time: now})
			}
			st.activeLast = active
			st.haveActiveLast = true
		}

		if st.schedule.resetDue(tod) && st.lastResetDate != today {
			st.lastResetDate = today
			s.emit(Event{Type: ResetDue, SessionID: id, Time: now})
		}
		if st.schedule.warningDue(tod) && st.lastWarnDate != today {
			st.lastWarnDate = today
			s.emit(Event{Type: WarningReset, SessionID: id, Time: now})
		}
	}
}

func (s *Scheduler) emit(e Event) {
	for _, fn := range s.listeners {
		fn(e)
	}
}

// Start launches the production periodic tick via gocron, evaluating
// every associated session at least once per interval (interval must be
// <= 1s per the engine's periodic-tick requirement; callers that only
// need deterministic tests should call Evaluate directly instead).
func (s *Scheduler) Start(interval time.Duration) error {
	sch, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("scheduler: new gocron scheduler: %w", err)
	}
	_, err = sch.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { s.Evaluate(s.clock.Now()) }),
	)
	if err != nil {
		return fmt.Errorf("scheduler: register tick job: %w", err)
	}
	s.gocron = sch
	sch.Start()
	return nil
}

// Stop shuts down the gocron-driven tick started by Start. It is a no-op
// if Start was never called.
func (s *Scheduler) Stop() error {
	if s.gocron == nil {
		return nil
	}
	return s.gocron.Shutdown()
}
