package session

import (
	"fmt"

	"code.hybscloud.com/xconnect/wire/ouch"
)

// ouchState holds the OUCH-specific login identity. OUCH has no gap
// recovery: sequencing is monotonic and any inconsistency is fatal, so
// unlike fixState there is no held-message buffer here.
type ouchState struct {
	username         string
	password         string
	requestedSession string
}

// ConfigureOUCH sets the credentials sent in this session's LoginRequest.
func (s *Session) ConfigureOUCH(username, password, requestedSession string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ouch.username = username
	s.ouch.password = password
	s.ouch.requestedSession = requestedSession
}

func (s *Session) sendOUCHLogin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := ouch.WrapLoginRequestForWriting().
		SetUsername(s.ouch.username).
		SetPassword(s.ouch.password).
		SetRequestedSession(s.ouch.requestedSession).
		SetRequestedSequenceNum(s.inboundExpected).
		SetHeartbeatIntervalMs(uint32(s.heartbeatInterval.Milliseconds())).
		Bytes()
	return s.sendOutboundLocked(raw)
}

// HandleOUCHLoginResponse applies the peer's LoginAccepted or
// LoginRejected reply to a login attempt.
func (s *Session) HandleOUCHLoginResponse(raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("session: empty ouch login response")
	}
	switch raw[0] {
	case ouch.TypeLoginAccepted:
		accepted, err := ouch.WrapLoginAcceptedForReading(raw)
		if err != nil {
			return fmt.Errorf("session: decode login accepted: %w", err)
		}
		s.mu.Lock()
		s.inboundExpected = accepted.SequenceNumber()
		s.mu.Unlock()
		return s.HandleLogonAccepted()
	case ouch.TypeLoginRejected:
		rejected, err := ouch.WrapRejectedForReading(raw)
		if err != nil {
			return fmt.Errorf("session: decode login rejected: %w", err)
		}
		s.mu.Lock()
		s.setStateLocked(Disconnected)
		s.mu.Unlock()
		return fmt.Errorf("session: ouch login rejected, reason=%d", rejected.Reason())
	default:
		return fmt.Errorf("session: unexpected ouch login-phase type %q", raw[0])
	}
}

// HandleInboundOUCH applies one order-entry-phase OUCH message, dispatching
// it at the next expected sequence number. This model tracks sequence
// purely by arrival order, since OUCH carries no explicit sequence field on
// most message types, so it performs no sequence-consistency check and
// never fails or disconnects the session.
func (s *Session) HandleInboundOUCH(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.inboundExpected
	s.dispatchInboundLocked(seq, raw)
	return nil
}
