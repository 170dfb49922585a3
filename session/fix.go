package session

import (
	"errors"
	"fmt"

	"code.hybscloud.com/xconnect/wire/fix"
)

// fixState holds the FIX-specific identity and gap-recovery bookkeeping
// layered on the common sequence counters in Session.
type fixState struct {
	beginString      string
	senderCompID     string
	targetCompID     string
	defaultApplVerID string // required at logon when beginString == "FIXT.1.1"

	gapPending bool
	held       map[uint64][]byte
}

// ConfigureFIX sets the session/begin-string identity used to build every
// outbound FIX message. defaultApplVerID is required and sent at logon
// when beginString is "FIXT.1.1".
func (s *Session) ConfigureFIX(beginString, senderCompID, targetCompID, defaultApplVerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fix.beginString = beginString
	s.fix.senderCompID = senderCompID
	s.fix.targetCompID = targetCompID
	s.fix.defaultApplVerID = defaultApplVerID
}

func (s *Session) fixHeaderLocked() fix.HeaderFields {
	return fix.HeaderFields{
		MsgSeqNum:    int(s.outboundSeq),
		SenderCompID: s.fix.senderCompID,
		TargetCompID: s.fix.targetCompID,
		SendingTime:  s.clock.Now(),
	}
}

func (s *Session) buildFIXLogonLocked() []byte {
	applVerID := ""
	if s.fix.beginString == "FIXT.1.1" {
		applVerID = s.fix.defaultApplVerID
	}
	return fix.BuildLogon(s.fix.beginString, s.fixHeaderLocked(), int(s.heartbeatInterval.Seconds()), false, applVerID)
}

func (s *Session) sendFIXLogon() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendOutboundLocked(s.buildFIXLogonLocked())
}

func (s *Session) buildFIXHeartbeatLocked() []byte {
	return fix.BuildHeartbeat(s.fix.beginString, s.fixHeaderLocked(), "")
}

func (s *Session) buildFIXLogoutLocked() []byte {
	return fix.BuildLogout(s.fix.beginString, s.fixHeaderLocked(), "")
}

func (s *Session) buildFIXResendRequestLocked(begin uint64) []byte {
	return fix.BuildResendRequest(s.fix.beginString, s.fixHeaderLocked(), int(begin), 0)
}

// HandleInboundFIX parses one complete FIX message (as delimited by
// fix.ExpectedLength) and applies gap detection: a seq above expected
// triggers a ResendRequest and holds the message until the gap fills; a
// seq below expected without PossDup is fatal (sequence-too-low); a seq
// equal to expected dispatches immediately and then drains any
// previously-held messages the fill completes.
func (s *Session) HandleInboundFIX(raw []byte) error {
	msg, err := fix.WrapForReading(raw)
	if err != nil {
		s.mu.Lock()
		s.setStateLocked(Disconnected)
		s.mu.Unlock()
		return fmt.Errorf("session: fix frame invalid: %w", err)
	}
	seq := uint64(msg.MsgSeqNum())

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case seq == s.inboundExpected:
		s.dispatchInboundLocked(seq, raw)
		s.drainHeldFIXLocked()
		return nil
	case seq > s.inboundExpected:
		if !s.fix.gapPending {
			s.fix.gapPending = true
			s.fix.held = make(map[uint64][]byte)
			if err := s.sendOutboundLocked(s.buildFIXResendRequestLocked(s.inboundExpected)); err != nil {
				return err
			}
		}
		s.fix.held[seq] = raw
		return nil
	default:
		if msg.PossDup() {
			return nil // already-processed resend, ignore
		}
		s.setStateLocked(Disconnected)
		return fmt.Errorf("%w: got %d, expected %d", ErrSequenceTooLow, seq, s.inboundExpected)
	}
}

func (s *Session) drainHeldFIXLocked() {
	if !s.fix.gapPending {
		return
	}
	for {
		raw, ok := s.fix.held[s.inboundExpected]
		if !ok {
			break
		}
		seq := s.inboundExpected
		delete(s.fix.held, seq)
		s.dispatchInboundLocked(seq, raw)
	}
	if len(s.fix.held) == 0 {
		s.fix.gapPending = false
	}
}

var errFIXParse = errors.New("session: fix parse")

// ParseMsgSeqNum is a small helper for callers (typically the event loop's
// framer) that need the sequence number before deciding how to route a
// frame, without fully wrapping it as a Message.
func ParseMsgSeqNum(raw []byte) (uint64, error) {
	m, err := fix.WrapForReading(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errFIXParse, err)
	}
	n, ok := m.GetInt(fix.TagMsgSeqNum)
	if !ok {
		return 0, fmt.Errorf("%w: missing tag 34", errFIXParse)
	}
	return uint64(n), nil
}
