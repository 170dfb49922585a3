package sbe

import (
	"fmt"

	"code.hybscloud.com/xconnect/buf"
)

// Template ids for the negotiation/establishment messages common to the
// iLink3 and Pillar session layers. Real schemas
// assign these per venue; the values here are placeholders a production
// schema.xml would override, kept distinct to make template dispatch
// exercise real branches in tests.
const (
	TemplateNegotiate          uint16 = 1
	TemplateNegotiateResponse  uint16 = 2
	TemplateEstablish          uint16 = 3
	TemplateEstablishAck       uint16 = 4
	TemplateTerminate          uint16 = 5
	TemplateSequence           uint16 = 6
	TemplateLogin              uint16 = 10
	TemplateLoginResponse      uint16 = 11
	TemplateStreamOpen         uint16 = 12
	TemplateStreamOpenResponse uint16 = 13
)

// BlockLengths is the fixed block-length table for the messages this
// package defines, usable directly as the blockLengths argument to
// ExpectedLength.
var BlockLengths = map[uint16]int{
	TemplateNegotiate:          24,
	TemplateNegotiateResponse:  17, // SessionID(8) + RequestTimestamp(8) + Accepted(1)
	TemplateEstablish:          32,
	TemplateEstablishAck:       24,
	TemplateTerminate:          12,
	TemplateSequence:           16,
	TemplateLogin:              40,
	TemplateLoginResponse:      16,
	TemplateStreamOpen:         20,
	TemplateStreamOpenResponse: 12,
}

// wrapForWriting allocates HeaderLength+blockLength bytes and stamps the SBE
// header for templateID, returning the region body accessors index into
// (data[HeaderLength:]).
func wrapForWriting(templateID uint16) buf.Buffer {
	blockLength := BlockLengths[templateID]
	data := make([]byte, HeaderLength+blockLength)
	_ = EncodeHeader(data, Header{BlockLength: uint16(blockLength), TemplateID: templateID})
	return region(data)
}

// wrapForReading installs a view over data after checking its template id
// matches want.
func wrapForReading(data []byte, want uint16) (buf.Buffer, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return buf.Buffer{}, err
	}
	if h.TemplateID != want {
		return buf.Buffer{}, fmt.Errorf("sbe: wrap template %d: %w: got %d", want, ErrUnknownTemplate, h.TemplateID)
	}
	return region(data), nil
}

// Negotiate is a flyweight view over the client -> server iLink3 session
// opener. Accessors read and write through the wrapped region directly; the
// Bytes method (inherited from buf.Buffer) returns the full framed message
// including its 8-byte SBE header.
type Negotiate struct{ buf.Buffer }

// WrapNegotiateForWriting allocates a fresh Negotiate message and stamps its
// header.
func WrapNegotiateForWriting() *Negotiate {
	return &Negotiate{wrapForWriting(TemplateNegotiate)}
}

// WrapNegotiateForReading installs a read-only Negotiate view over a framed
// message.
func WrapNegotiateForReading(data []byte) (*Negotiate, error) {
	b, err := wrapForReading(data, TemplateNegotiate)
	if err != nil {
		return nil, err
	}
	return &Negotiate{b}, nil
}

func (m *Negotiate) SessionID() uint64 { v, _ := m.GetUint64(HeaderLength+0, le); return v }
func (m *Negotiate) SetSessionID(v uint64) *Negotiate {
	_ = m.PutUint64(HeaderLength+0, v, le)
	return m
}
func (m *Negotiate) Timestamp() int64 { v, _ := m.GetInt64(HeaderLength+8, le); return v }
func (m *Negotiate) SetTimestamp(v int64) *Negotiate {
	_ = m.PutInt64(HeaderLength+8, v, le)
	return m
}
func (m *Negotiate) FirmID() uint32 { v, _ := m.GetUint32(HeaderLength+16, le); return v }
func (m *Negotiate) SetFirmID(v uint32) *Negotiate {
	_ = m.PutUint32(HeaderLength+16, v, le)
	return m
}
func (m *Negotiate) CredentialPadding() uint32 { v, _ := m.GetUint32(HeaderLength+20, le); return v }
func (m *Negotiate) SetCredentialPadding(v uint32) *Negotiate {
	_ = m.PutUint32(HeaderLength+20, v, le)
	return m
}

// NegotiateResponse is a flyweight view over the server -> client Negotiate
// confirmation/rejection.
type NegotiateResponse struct{ buf.Buffer }

func WrapNegotiateResponseForWriting() *NegotiateResponse {
	return &NegotiateResponse{wrapForWriting(TemplateNegotiateResponse)}
}

func WrapNegotiateResponseForReading(data []byte) (*NegotiateResponse, error) {
	b, err := wrapForReading(data, TemplateNegotiateResponse)
	if err != nil {
		return nil, err
	}
	return &NegotiateResponse{b}, nil
}

func (m *NegotiateResponse) SessionID() uint64 { v, _ := m.GetUint64(HeaderLength+0, le); return v }
func (m *NegotiateResponse) SetSessionID(v uint64) *NegotiateResponse {
	_ = m.PutUint64(HeaderLength+0, v, le)
	return m
}
func (m *NegotiateResponse) RequestTimestamp() int64 {
	v, _ := m.GetInt64(HeaderLength+8, le)
	return v
}
func (m *NegotiateResponse) SetRequestTimestamp(v int64) *NegotiateResponse {
	_ = m.PutInt64(HeaderLength+8, v, le)
	return m
}

// Accepted reports the 1-byte accepted/rejected flag packed into the low
// byte of the schema's reserved trailer; this simplified schema stores it
// immediately after RequestTimestamp.
func (m *NegotiateResponse) Accepted() byte { v, _ := m.GetUint8(HeaderLength + 16); return v }
func (m *NegotiateResponse) SetAccepted(v byte) *NegotiateResponse {
	_ = m.PutUint8(HeaderLength+16, v)
	return m
}

// Establish is a flyweight view over the message that opens the
// application-message stream after Negotiate succeeds.
type Establish struct{ buf.Buffer }

func WrapEstablishForWriting() *Establish {
	return &Establish{wrapForWriting(TemplateEstablish)}
}

func WrapEstablishForReading(data []byte) (*Establish, error) {
	b, err := wrapForReading(data, TemplateEstablish)
	if err != nil {
		return nil, err
	}
	return &Establish{b}, nil
}

func (m *Establish) SessionID() uint64 { v, _ := m.GetUint64(HeaderLength+0, le); return v }
func (m *Establish) SetSessionID(v uint64) *Establish {
	_ = m.PutUint64(HeaderLength+0, v, le)
	return m
}
func (m *Establish) Timestamp() int64 { v, _ := m.GetInt64(HeaderLength+8, le); return v }
func (m *Establish) SetTimestamp(v int64) *Establish {
	_ = m.PutInt64(HeaderLength+8, v, le)
	return m
}
func (m *Establish) KeepAliveIntervalMs() uint32 { v, _ := m.GetUint32(HeaderLength+16, le); return v }
func (m *Establish) SetKeepAliveIntervalMs(v uint32) *Establish {
	_ = m.PutUint32(HeaderLength+16, v, le)
	return m
}
func (m *Establish) NextSeqNo() uint32 { v, _ := m.GetUint32(HeaderLength+20, le); return v }
func (m *Establish) SetNextSeqNo(v uint32) *Establish {
	_ = m.PutUint32(HeaderLength+20, v, le)
	return m
}
func (m *Establish) FirmID() uint32 { v, _ := m.GetUint32(HeaderLength+24, le); return v }
func (m *Establish) SetFirmID(v uint32) *Establish {
	_ = m.PutUint32(HeaderLength+24, v, le)
	return m
}

// EstablishAck is a flyweight view over the message that confirms the
// stream is open in one direction.
type EstablishAck struct{ buf.Buffer }

func WrapEstablishAckForWriting() *EstablishAck {
	return &EstablishAck{wrapForWriting(TemplateEstablishAck)}
}

func WrapEstablishAckForReading(data []byte) (*EstablishAck, error) {
	b, err := wrapForReading(data, TemplateEstablishAck)
	if err != nil {
		return nil, err
	}
	return &EstablishAck{b}, nil
}

func (m *EstablishAck) SessionID() uint64 { v, _ := m.GetUint64(HeaderLength+0, le); return v }
func (m *EstablishAck) SetSessionID(v uint64) *EstablishAck {
	_ = m.PutUint64(HeaderLength+0, v, le)
	return m
}
func (m *EstablishAck) RequestTimestamp() int64 { v, _ := m.GetInt64(HeaderLength+8, le); return v }
func (m *EstablishAck) SetRequestTimestamp(v int64) *EstablishAck {
	_ = m.PutInt64(HeaderLength+8, v, le)
	return m
}
func (m *EstablishAck) NextSeqNo() uint32 { v, _ := m.GetUint32(HeaderLength+16, le); return v }
func (m *EstablishAck) SetNextSeqNo(v uint32) *EstablishAck {
	_ = m.PutUint32(HeaderLength+16, v, le)
	return m
}

// Terminate is a flyweight view over the message that ends the session from
// either side.
type Terminate struct{ buf.Buffer }

func WrapTerminateForWriting() *Terminate {
	return &Terminate{wrapForWriting(TemplateTerminate)}
}

func WrapTerminateForReading(data []byte) (*Terminate, error) {
	b, err := wrapForReading(data, TemplateTerminate)
	if err != nil {
		return nil, err
	}
	return &Terminate{b}, nil
}

func (m *Terminate) SessionID() uint64 { v, _ := m.GetUint64(HeaderLength+0, le); return v }
func (m *Terminate) SetSessionID(v uint64) *Terminate {
	_ = m.PutUint64(HeaderLength+0, v, le)
	return m
}
func (m *Terminate) Reason() uint32 { v, _ := m.GetUint32(HeaderLength+8, le); return v }
func (m *Terminate) SetReason(v uint32) *Terminate {
	_ = m.PutUint32(HeaderLength+8, v, le)
	return m
}

// Login is a flyweight view over the Pillar session-layer handshake,
// distinct from Negotiate: Pillar negotiates a session via Login, then
// discovers and opens one stream per direction.
type Login struct{ buf.Buffer }

func WrapLoginForWriting() *Login {
	return &Login{wrapForWriting(TemplateLogin)}
}

func WrapLoginForReading(data []byte) (*Login, error) {
	b, err := wrapForReading(data, TemplateLogin)
	if err != nil {
		return nil, err
	}
	return &Login{b}, nil
}

func (m *Login) Username() string { v, _ := m.GetAlpha(HeaderLength+0, 12); return v }
func (m *Login) SetUsername(v string) *Login {
	_ = m.PutAlpha(HeaderLength+0, 12, v)
	return m
}
func (m *Login) Password() string { v, _ := m.GetAlpha(HeaderLength+12, 12); return v }
func (m *Login) SetPassword(v string) *Login {
	_ = m.PutAlpha(HeaderLength+12, 12, v)
	return m
}
func (m *Login) SessionID() uint64 { v, _ := m.GetUint64(HeaderLength+24, le); return v }
func (m *Login) SetSessionID(v uint64) *Login {
	_ = m.PutUint64(HeaderLength+24, v, le)
	return m
}
func (m *Login) HeartbeatIntervalMs() uint32 { v, _ := m.GetUint32(HeaderLength+32, le); return v }
func (m *Login) SetHeartbeatIntervalMs(v uint32) *Login {
	_ = m.PutUint32(HeaderLength+32, v, le)
	return m
}

// StreamOpen is a flyweight view over a request for a directional
// application stream under an established Pillar session.
type StreamOpen struct{ buf.Buffer }

func WrapStreamOpenForWriting() *StreamOpen {
	return &StreamOpen{wrapForWriting(TemplateStreamOpen)}
}

func WrapStreamOpenForReading(data []byte) (*StreamOpen, error) {
	b, err := wrapForReading(data, TemplateStreamOpen)
	if err != nil {
		return nil, err
	}
	return &StreamOpen{b}, nil
}

func (m *StreamOpen) SessionID() uint64 { v, _ := m.GetUint64(HeaderLength+0, le); return v }
func (m *StreamOpen) SetSessionID(v uint64) *StreamOpen {
	_ = m.PutUint64(HeaderLength+0, v, le)
	return m
}
func (m *StreamOpen) StreamID() uint32 { v, _ := m.GetUint32(HeaderLength+8, le); return v }
func (m *StreamOpen) SetStreamID(v uint32) *StreamOpen {
	_ = m.PutUint32(HeaderLength+8, v, le)
	return m
}

// Direction returns 0 (inbound, GT) or 1 (outbound, TG).
func (m *StreamOpen) Direction() byte { v, _ := m.GetUint8(HeaderLength + 12); return v }
func (m *StreamOpen) SetDirection(v byte) *StreamOpen {
	_ = m.PutUint8(HeaderLength+12, v)
	return m
}

// StreamOpenResponse is a flyweight view over the confirmation that a
// stream is open for one direction; a Pillar session reaches ESTABLISHED
// only once both directions' streams confirm.
type StreamOpenResponse struct{ buf.Buffer }

func WrapStreamOpenResponseForWriting() *StreamOpenResponse {
	return &StreamOpenResponse{wrapForWriting(TemplateStreamOpenResponse)}
}

func WrapStreamOpenResponseForReading(data []byte) (*StreamOpenResponse, error) {
	b, err := wrapForReading(data, TemplateStreamOpenResponse)
	if err != nil {
		return nil, err
	}
	return &StreamOpenResponse{b}, nil
}

func (m *StreamOpenResponse) StreamID() uint32 { v, _ := m.GetUint32(HeaderLength+0, le); return v }
func (m *StreamOpenResponse) SetStreamID(v uint32) *StreamOpenResponse {
	_ = m.PutUint32(HeaderLength+0, v, le)
	return m
}
func (m *StreamOpenResponse) NextSeqNo() uint32 { v, _ := m.GetUint32(HeaderLength+4, le); return v }
func (m *StreamOpenResponse) SetNextSeqNo(v uint32) *StreamOpenResponse {
	_ = m.PutUint32(HeaderLength+4, v, le)
	return m
}
