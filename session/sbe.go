package session

import (
	"fmt"

	"code.hybscloud.com/xconnect/wire/sbe"
)

// StreamDirection distinguishes iLink3/Pillar's two independently
// sequenced per-stream directions.
type StreamDirection uint8

const (
	StreamInbound  StreamDirection = iota // GT: exchange -> participant
	StreamOutbound                        // TG: participant -> exchange
)

// sbeState holds the iLink3/Pillar negotiate/establish/terminate gating
// and per-stream sequence tracking. A session reaches LOGGED_ON (the
// engine's ESTABLISHED-equivalent) only once streamsRequired distinct
// stream ids have confirmed open. The direction recorded for each stream
// is not checked: the count does not require both directions to be
// covered.
type sbeState struct {
	sessionID uint64

	negotiated  bool
	established bool

	streamsRequired int
	streamsOpen     map[uint32]StreamDirection

	inboundSeq  map[uint32]uint32 // per inbound (GT) stream
	outboundSeq map[uint32]uint32 // per outbound (TG) stream
}

// ConfigureSBE sets the session identifier used on Negotiate/Establish and
// how many distinct streams must open before the session is considered
// established.
func (s *Session) ConfigureSBE(sessionID uint64, streamsRequired int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sbe.sessionID = sessionID
	s.sbe.streamsRequired = streamsRequired
	s.sbe.streamsOpen = make(map[uint32]StreamDirection)
	s.sbe.inboundSeq = make(map[uint32]uint32)
	s.sbe.outboundSeq = make(map[uint32]uint32)
}

func (s *Session) sendSBENegotiate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := sbe.WrapNegotiateForWriting().
		SetSessionID(s.sbe.sessionID).
		SetTimestamp(s.clock.Now().UnixNano()).
		Bytes()
	return s.sendOutboundLocked(raw)
}

func (s *Session) buildSBETerminateLocked() []byte {
	return sbe.WrapTerminateForWriting().SetSessionID(s.sbe.sessionID).Bytes()
}

// HandleSBENegotiateResponse applies the peer's NegotiateResponse,
// proceeding to Establish once negotiation is accepted.
func (s *Session) HandleSBENegotiateResponse(raw []byte) error {
	resp, err := sbe.WrapNegotiateResponseForReading(raw)
	if err != nil {
		return fmt.Errorf("session: decode negotiate response: %w", err)
	}
	if resp.Accepted() == 0 {
		s.mu.Lock()
		s.setStateLocked(Disconnected)
		s.mu.Unlock()
		return fmt.Errorf("session: sbe negotiate rejected")
	}
	s.mu.Lock()
	s.sbe.negotiated = true
	establish := sbe.WrapEstablishForWriting().
		SetSessionID(s.sbe.sessionID).
		SetTimestamp(s.clock.Now().UnixNano()).
		SetKeepAliveIntervalMs(uint32(s.heartbeatInterval.Milliseconds())).
		SetNextSeqNo(1).
		Bytes()
	err = s.sendOutboundLocked(establish)
	s.mu.Unlock()
	return err
}

// HandleSBEEstablishAck applies the peer's EstablishAck. When ConfigureSBE
// set zero required streams, the session reaches LOGGED_ON here. Otherwise
// it does not: Pillar-family sessions still need their
// per-stream Login/StreamOpen exchange, so callers drive
// HandleSBEStreamOpenResponse per required stream and HandleLogonAccepted
// fires only once HandleSBEStreamOpenResponse has opened every required
// stream.
func (s *Session) HandleSBEEstablishAck(raw []byte) error {
	_, err := sbe.WrapEstablishAckForReading(raw)
	if err != nil {
		return fmt.Errorf("session: decode establish ack: %w", err)
	}
	s.mu.Lock()
	s.sbe.established = true
	s.mu.Unlock()
	if s.sbe.streamsRequired == 0 {
		return s.HandleLogonAccepted()
	}
	return nil
}

// OpenSBEStream sends a StreamOpen for one direction.
func (s *Session) OpenSBEStream(streamID uint32, dir StreamDirection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := sbe.WrapStreamOpenForWriting().
		SetSessionID(s.sbe.sessionID).
		SetStreamID(streamID).
		SetDirection(byte(dir)).
		Bytes()
	return s.sendOutboundLocked(raw)
}

// HandleSBEStreamOpenResponse records one stream as open; once
// streamsRequired distinct streams have confirmed, the session transitions
// to LOGGED_ON.
func (s *Session) HandleSBEStreamOpenResponse(raw []byte, dir StreamDirection) error {
	resp, err := sbe.WrapStreamOpenResponseForReading(raw)
	if err != nil {
		return fmt.Errorf("session: decode stream open response: %w", err)
	}
	s.mu.Lock()
	s.sbe.streamsOpen[resp.StreamID()] = dir
	s.sbe.inboundSeq[resp.StreamID()] = resp.NextSeqNo()
	s.sbe.outboundSeq[resp.StreamID()] = resp.NextSeqNo()
	ready := s.sbe.established && len(s.sbe.streamsOpen) >= s.sbe.streamsRequired
	s.mu.Unlock()
	if ready {
		return s.HandleLogonAccepted()
	}
	return nil
}

// HandleInboundSBE applies one inbound application message on streamID,
// tracking that stream's inbound (GT) sequence independently of every
// other stream and of the session-level outbound counter.
func (s *Session) HandleInboundSBE(streamID uint32, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := uint64(s.sbe.inboundSeq[streamID])
	s.sbe.inboundSeq[streamID]++
	s.dispatchInboundLocked(seq, raw)
	return nil
}
