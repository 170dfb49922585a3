// Package adminsvc implements the SessionService contract an admin
// collaborator (HTTP handler, gRPC service, CLI — whichever the
// deployment wires up) drives the connectivity engine through: listing
// and inspecting live sessions, and issuing connect/disconnect/logout/
// sequence-recovery/test-request/end-of-day commands against them.
package adminsvc

import (
	"errors"
	"sort"
	"sync"

	"code.hybscloud.com/xconnect/session"
)

// SessionInfo is the admin-facing snapshot of one session's state.
type SessionInfo struct {
	ID                string
	Protocol          string
	State             string
	OutboundSeq       uint64
	InboundExpected   uint64
	ReconnectAttempts int
}

// SessionService is the contract an admin collaborator drives the engine
// through.
type SessionService interface {
	ListSessions() []SessionInfo
	GetSession(id string) (SessionInfo, bool)
	Connect(id string) error
	Disconnect(id string) error
	Logout(id string) error
	ResetSequence(id string) error
	SetOutgoingSeqNum(id string, seq uint64) error
	SetIncomingSeqNum(id string, seq uint64) error
	SendTestRequest(id string) error
	TriggerEOD(id string) error
	IsEngineAvailable() bool
}

// ErrSessionNotFound reports an operation against a session id the
// Registry has no record of.
var ErrSessionNotFound = errors.New("adminsvc: session not found")

// Registry is the concrete SessionService: a lookup table of the live
// sessions this engine process owns, keyed by session id.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*session.Session
	available bool
}

// NewRegistry returns an empty, available Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session.Session), available: true}
}

// Register adds s to the registry under s.ID, replacing any prior entry
// with the same id.
func (r *Registry) Register(s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Unregister removes a session from the registry. It is a no-op if id is
// not present.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// SetAvailable flips the engine-availability flag IsEngineAvailable
// reports, for maintenance windows or startup/shutdown sequencing.
func (r *Registry) SetAvailable(available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available = available
}

// IsEngineAvailable reports whether the engine is currently accepting
// admin commands.
func (r *Registry) IsEngineAvailable() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available
}

func (r *Registry) get(id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func infoFor(s *session.Session) SessionInfo {
	return SessionInfo{
		ID:                s.ID,
		Protocol:          s.Protocol.String(),
		State:             s.State().String(),
		OutboundSeq:       s.OutboundSeq(),
		InboundExpected:   s.InboundExpected(),
		ReconnectAttempts: s.ReconnectAttempts(),
	}
}

// ListSessions returns a snapshot of every registered session, ordered by
// id for a stable listing.
func (r *Registry) ListSessions() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, infoFor(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetSession returns one session's snapshot, or ok=false if id is not
// registered.
func (r *Registry) GetSession(id string) (SessionInfo, bool) {
	s, err := r.get(id)
	if err != nil {
		return SessionInfo{}, false
	}
	return infoFor(s), true
}

// Connect begins an outbound connection attempt on the named session.
func (r *Registry) Connect(id string) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	return s.Connect()
}

// Disconnect forces the named session's transport closed.
func (r *Registry) Disconnect(id string) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	return s.Disconnect()
}

// Logout sends the named session's protocol graceful-close message.
func (r *Registry) Logout(id string) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	return s.Logout()
}

// ResetSequence resets the named session's sequence counters to 1.
func (r *Registry) ResetSequence(id string) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	return s.ResetSequence()
}

// SetOutgoingSeqNum overrides the named session's next outbound sequence
// number.
func (r *Registry) SetOutgoingSeqNum(id string, seq uint64) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	return s.SetOutgoingSeqNum(seq)
}

// SetIncomingSeqNum overrides the named session's next expected inbound
// sequence number.
func (r *Registry) SetIncomingSeqNum(id string, seq uint64) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	return s.SetIncomingSeqNum(seq)
}

// SendTestRequest sends a FIX TestRequest on the named session.
func (r *Registry) SendTestRequest(id string) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	return s.SendTestRequest()
}

// TriggerEOD runs the named session's end-of-day logout-then-reset
// sequence immediately, independent of its schedule.
func (r *Registry) TriggerEOD(id string) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	return s.TriggerEOD()
}
