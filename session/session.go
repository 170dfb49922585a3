// Package session implements the per-connection session state machine:
// the common outbound/inbound sequence bookkeeping, heartbeat and
// reconnect handling shared by every wire protocol, plus the FIX-, OUCH-,
// and SBE-family-specific sub-state machines layered on top of it (see
// fix.go, ouch.go, sbe.go).
//
// State changes and inbound dispatch fan out to registered Listeners
// instead of the caller polling, broadcaster-style, but a session has at
// most a handful of listeners so a plain slice under the session's own
// mutex replaces a dedicated broadcaster type.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"code.hybscloud.com/xconnect/clock"
	"code.hybscloud.com/xconnect/logstore"
	"code.hybscloud.com/xconnect/metrics"
	"code.hybscloud.com/xconnect/ring"
	"code.hybscloud.com/xconnect/scheduler"
	"code.hybscloud.com/xconnect/wire/fix"
)

// Protocol identifies which wire family a Session speaks.
type Protocol int

const (
	FIX Protocol = iota
	OUCH
	SBEFamily
)

func (p Protocol) String() string {
	switch p {
	case FIX:
		return "FIX"
	case OUCH:
		return "OUCH"
	case SBEFamily:
		return "SBE"
	default:
		return "UNKNOWN"
	}
}

// State is a session's position in the connection lifecycle.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	LoggedOn
	LogoutSent
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "DISCONNECTED"
	case Connecting:
		return "CONNECTING"
	case Connected:
		return "CONNECTED"
	case LoggedOn:
		return "LOGGED_ON"
	case LogoutSent:
		return "LOGOUT_SENT"
	default:
		return "UNKNOWN"
	}
}

// ErrIllegalTransition reports a state-changing call whose precondition
// the session's current State does not satisfy.
var ErrIllegalTransition = errors.New("session: illegal transition")

// ErrSequenceTooLow reports an inbound message whose sequence number is
// below what is expected and that does not carry a possible-duplicate
// marker. Only HandleInboundFIX returns it, after moving the session to
// DISCONNECTED; the SBE-family and OUCH inbound paths do not check for it.
var ErrSequenceTooLow = errors.New("session: sequence too low without possible-duplicate")

// Transport is the send path a Session uses to write framed bytes to its
// peer. It is satisfied by eventloop.Loop.Send bound to one Channel;
// Session depends only on this narrow interface so it never imports
// eventloop directly.
type Transport interface {
	Send(p []byte) error
}

// Listener observes state transitions and inbound application dispatch.
type Listener interface {
	OnStateChanged(s *Session, state State)
	OnMessage(s *Session, seq uint64, raw []byte)
}

// Config supplies a Session's fixed collaborators and parameters.
type Config struct {
	ID                   string
	Protocol             Protocol
	Initiator            bool
	HeartbeatInterval    time.Duration
	MaxReconnectAttempts int
	Store                *logstore.Store
	Metrics              *metrics.SessionMetrics
	Transport            Transport
	Clock                clock.Clock
}

// Session is one connection's state machine. All exported methods are
// safe for concurrent use.
type Session struct {
	ID        string
	Protocol  Protocol
	Initiator bool

	clock                clock.Clock
	store                *logstore.Store
	metrics              *metrics.SessionMetrics
	transport            Transport
	heartbeatInterval    time.Duration
	maxReconnectAttempts int

	// outbox is the claim/commit ring every outbound message passes
	// through before it reaches the transport: sendOutboundLocked claims a
	// slot, fills it, commits, and immediately drains its own commit so the
	// transport write happens synchronously under mu, matching the
	// claim -> fill -> commit -> write control flow the rest of the engine
	// (the event loop's sender) uses against the same ring type.
	outbox *ring.Ring[[]byte]

	mu                sync.Mutex
	state             State
	outboundSeq       uint64
	inboundExpected   uint64
	lastActivity      time.Time
	reconnectAttempts int
	listeners         []Listener

	fix  fixState
	ouch ouchState
	sbe  sbeState
}

// outboxCapacity sizes the per-session claim/commit ring. A session only
// ever has one outstanding send at a time (sendOutboundLocked claims,
// commits, and drains before releasing mu), so this just needs headroom
// above 1 for the ring's power-of-two rounding.
const outboxCapacity = 4

// New constructs a Session in the DISCONNECTED state with both sequence
// counters at 1.
func New(cfg Config) *Session {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	hb := cfg.HeartbeatInterval
	if hb <= 0 {
		hb = 30 * time.Second
	}
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	return &Session{
		ID:                   id,
		Protocol:             cfg.Protocol,
		Initiator:            cfg.Initiator,
		clock:                c,
		store:                cfg.Store,
		metrics:              cfg.Metrics,
		transport:            cfg.Transport,
		heartbeatInterval:    hb,
		maxReconnectAttempts: cfg.MaxReconnectAttempts,
		outbox:               ring.New[[]byte](outboxCapacity),
		state:                Disconnected,
		outboundSeq:          1,
		inboundExpected:      1,
	}
}

// AddListener registers l for future state and message notifications.
func (s *Session) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// State returns the session's current State.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OutboundSeq returns the next sequence number to be stamped on an
// outbound message.
func (s *Session) OutboundSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outboundSeq
}

// InboundExpected returns the next sequence number expected from the
// peer.
func (s *Session) InboundExpected() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inboundExpected
}

// setStateLocked requires s.mu held. It updates state and notifies
// listeners; listeners run with the lock held.
func (s *Session) setStateLocked(to State) {
	s.state = to
	if s.metrics != nil {
		s.metrics.State.Set(float64(to))
	}
	for _, l := range s.listeners {
		l.OnStateChanged(s, to)
	}
}

func (s *Session) transitionLocked(allowed func(State) bool, to State) error {
	if !allowed(s.state) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.state, to)
	}
	s.setStateLocked(to)
	return nil
}

// Connect begins an outbound connection attempt: DISCONNECTED -> CONNECTING.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(func(st State) bool { return st == Disconnected }, Connecting)
}

// HandleConnected reports that the transport finished connecting (for an
// initiator) or accepting (for an acceptor): CONNECTING -> CONNECTED,
// followed by this protocol's logon/negotiate message.
func (s *Session) HandleConnected() error {
	s.mu.Lock()
	if err := s.transitionLocked(func(st State) bool { return st == Connecting }, Connected); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	switch s.Protocol {
	case FIX:
		return s.sendFIXLogon()
	case OUCH:
		return s.sendOUCHLogin()
	case SBEFamily:
		return s.sendSBENegotiate()
	}
	return nil
}

// HandleLogonAccepted reports the peer accepted this session's logon:
// CONNECTED -> LOGGED_ON.
func (s *Session) HandleLogonAccepted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transitionLocked(func(st State) bool { return st == Connected }, LoggedOn); err != nil {
		return err
	}
	s.lastActivity = s.clock.Now()
	s.reconnectAttempts = 0
	return nil
}

// Tick re-evaluates idle-timer-driven behavior (heartbeats) against now.
// Callers invoke this periodically, the same way scheduler.Evaluate is
// driven by an external tick rather than owning its own timer.
func (s *Session) Tick(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != LoggedOn {
		return nil
	}
	if now.Sub(s.lastActivity) < s.heartbeatInterval {
		return nil
	}
	return s.sendHeartbeatLocked(now)
}

func (s *Session) sendHeartbeatLocked(now time.Time) error {
	if s.Protocol != FIX {
		s.lastActivity = now
		return nil
	}
	if err := s.sendOutboundLocked(s.buildFIXHeartbeatLocked()); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.HeartbeatsSent.Inc()
	}
	return nil
}

// HandleSchedulerEvent applies a scheduler.Event to this session:
// RESET_DUE resets both sequence counters; SESSION_END moves a LOGGED_ON
// session to LOGOUT_SENT and sends this protocol's graceful-close message.
// Both event kinds are also reachable directly as admin operations via
// ResetSequence and Logout.
func (s *Session) HandleSchedulerEvent(e scheduler.Event) error {
	switch e.Type {
	case scheduler.ResetDue:
		return s.resetSequenceAt(e.Time)
	case scheduler.SessionEnd:
		return s.Logout()
	}
	return nil
}

// ResetSequence resets both sequence counters to 1. It is a no-op unless
// the session is LOGGED_ON or LOGOUT_SENT (the latter so TriggerEOD's
// logout-then-reset pair both take effect), matching the fixed-time-reset
// and admin resetSequence operations' shared semantics.
func (s *Session) ResetSequence() error {
	return s.resetSequenceAt(s.clock.Now())
}

func (s *Session) resetSequenceAt(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != LoggedOn && s.state != LogoutSent {
		return nil
	}
	s.outboundSeq = 1
	s.inboundExpected = 1
	if s.store != nil {
		_ = s.store.Write(logstore.Entry{
			Timestamp: now.UnixNano(),
			Direction: logstore.Out,
			MsgType:   "RESET",
		})
	}
	return nil
}

// Logout moves a LOGGED_ON session to LOGOUT_SENT and sends this
// protocol's graceful-close message. It is a no-op unless LOGGED_ON.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != LoggedOn {
		return nil
	}
	s.setStateLocked(LogoutSent)
	switch s.Protocol {
	case FIX:
		return s.sendOutboundLocked(s.buildFIXLogoutLocked())
	case SBEFamily:
		return s.sendOutboundLocked(s.buildSBETerminateLocked())
	}
	return nil
}

// TriggerEOD runs this session's end-of-day sequence: a graceful logout
// followed immediately by a sequence reset, the same pair of effects
// HandleSchedulerEvent applies for a SESSION_END followed by a RESET_DUE.
func (s *Session) TriggerEOD() error {
	if err := s.Logout(); err != nil {
		return err
	}
	return s.ResetSequence()
}

// SetOutgoingSeqNum overrides the next outbound sequence number, for admin
// recovery after an out-of-band reconciliation.
func (s *Session) SetOutgoingSeqNum(seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outboundSeq = seq
	if s.metrics != nil {
		s.metrics.OutboundSeq.Set(float64(seq))
	}
	return nil
}

// SetIncomingSeqNum overrides the next expected inbound sequence number,
// for admin recovery after an out-of-band reconciliation.
func (s *Session) SetIncomingSeqNum(seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inboundExpected = seq
	if s.metrics != nil {
		s.metrics.InboundSeq.Set(float64(seq))
	}
	return nil
}

// ErrTestRequestUnsupported reports SendTestRequest called on a
// non-FIX session; TestRequest is a FIX-only concept.
var ErrTestRequestUnsupported = errors.New("session: test request unsupported for this protocol")

// SendTestRequest sends a FIX TestRequest, prompting the peer to respond
// with a Heartbeat echoing its TestReqID.
func (s *Session) SendTestRequest() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Protocol != FIX {
		return ErrTestRequestUnsupported
	}
	testReqID := uuid.NewString()
	raw := fix.BuildTestRequest(s.fix.beginString, s.fixHeaderLocked(), testReqID)
	return s.sendOutboundLocked(raw)
}

// Disconnect forces this session's transport closed and moves it to
// DISCONNECTED for the admin disconnect operation. Unlike HandleDisconnect
// (which reports a transport-initiated closure), this never counts as a
// reconnect attempt.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStateLocked(Disconnected)
	if closer, ok := s.transport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// HandleDisconnect reports the transport closed, for any reason, from any
// state: -> DISCONNECTED. If this session is the initiator and has not
// exhausted MaxReconnectAttempts (zero or less means unlimited), it counts
// one more reconnect attempt. It does not schedule or start a reconnect
// itself; Connect must be called again for that.
func (s *Session) HandleDisconnect(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStateLocked(Disconnected)
	if s.Initiator && (s.maxReconnectAttempts <= 0 || s.reconnectAttempts < s.maxReconnectAttempts) {
		s.reconnectAttempts++
	}
}

// ReconnectAttempts returns how many reconnect attempts HandleDisconnect
// has counted since the last successful logon.
func (s *Session) ReconnectAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnectAttempts
}

// sendOutboundLocked publishes raw through the session's claim/commit ring:
// claim a slot, fill it with this message, commit, then drain it straight
// back out to the transport. Every caller already holds mu and there is
// never more than one outstanding send, so the dequeue that follows Commit
// is guaranteed to return exactly the slot just committed; this still
// exercises the same claim -> fill -> commit -> write path multiple
// producers would use against a shared ring, rather than writing to the
// transport directly.
func (s *Session) sendOutboundLocked(raw []byte) error {
	slot, err := s.outbox.TryClaim()
	if err != nil {
		return fmt.Errorf("session: claim outbox slot: %w", err)
	}
	slot.Data = raw
	slot.Commit()
	published, err := s.outbox.TryDequeue()
	if err != nil {
		return fmt.Errorf("session: drain outbox slot: %w", err)
	}

	seq := s.outboundSeq
	now := s.clock.Now()
	if s.store != nil {
		_ = s.store.Write(logstore.Entry{
			Timestamp: now.UnixNano(),
			Seq:       uint32(seq),
			Direction: logstore.Out,
			Raw:       published,
		})
	}
	if err := s.transport.Send(published); err != nil {
		return fmt.Errorf("session: send: %w", err)
	}
	s.outboundSeq++
	s.lastActivity = now
	if s.metrics != nil {
		s.metrics.MessagesSent.Inc()
		s.metrics.OutboundSeq.Set(float64(s.outboundSeq))
	}
	return nil
}

func (s *Session) dispatchInboundLocked(seq uint64, raw []byte) {
	now := s.clock.Now()
	if s.store != nil {
		_ = s.store.Write(logstore.Entry{
			Timestamp: now.UnixNano(),
			Seq:       uint32(seq),
			Direction: logstore.In,
			Raw:       raw,
		})
	}
	s.inboundExpected = seq + 1
	s.lastActivity = now
	if s.metrics != nil {
		s.metrics.MessagesReceived.Inc()
		s.metrics.InboundSeq.Set(float64(s.inboundExpected))
	}
	for _, l := range s.listeners {
		l.OnMessage(s, seq, raw)
	}
}
