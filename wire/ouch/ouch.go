// Package ouch implements the NASDAQ OUCH 4.2/5.0 wire message model:
// 1-byte message type, fixed-layout big-endian body, ASCII
// alpha fields space-padded right, signed int32 prices scaled ×10^4. OUCH
// 5.0 messages may carry an optional appendage section: repeated
// (tag:1, length:2 BE, data:length) TLV entries.
//
// Every message type is a flyweight embedding buf.Buffer directly:
// WrapXForWriting installs the view over a freshly allocated region and
// stamps the type byte, WrapXForReading installs it over received bytes
// after checking the type. Accessors read and write straight through the
// wrapped buffer; nothing is copied until a caller extracts a value.
package ouch

import (
	"encoding/binary"
	"errors"
)

// Version selects the wire revision: 4.2 has no appendage section, 5.0 may.
type Version uint8

const (
	V42 Version = 42
	V50 Version = 50
)

// Message type codes (single ASCII byte). Login and order-entry messages
// are exchanged on logically distinct phases of the same connection
// (a session is only logged in once login succeeds), so 'A' and 'J' are
// reused across phases exactly as NASDAQ's own dictionary does;
// ExpectedLength (and pool.OUCHReader) take an explicit Phase/Direction to
// resolve them instead of guessing from payload shape.
const (
	TypeLoginRequest  byte = 'L'
	TypeLoginAccepted byte = 'A'
	TypeLoginRejected byte = 'J'
	TypeEnterOrder    byte = 'O'
	TypeOrderAccepted byte = 'A'
	TypeOrderRejected byte = 'J'
	TypeCancelOrder   byte = 'X'
	TypeOrderCanceled byte = 'C'
	TypeModifyOrder   byte = 'M' // client -> server
	TypeOrderModified byte = 'M' // server -> client, same wire byte
)

// Direction disambiguates wire-type codes that are reused between the two
// halves of a connection.
type Direction uint8

const (
	Inbound  Direction = iota // bytes received from the peer
	Outbound                  // bytes this session is about to send
)

// Phase distinguishes the login handshake from order-entry traffic, since
// 'A' (LoginAccepted vs OrderAccepted) and 'J' (LoginRejected vs
// OrderRejected) are only unambiguous given which phase the session is in.
type Phase uint8

const (
	PhaseLogin Phase = iota
	PhaseOrderEntry
)

// Reject reasons (OrderRejected / LoginRejected).
const (
	ReasonInvalidFirm        uint16 = 1
	ReasonInsufficientCredit uint16 = 2
	ReasonInvalidSymbol      uint16 = 3
	ReasonInvalidPrice       uint16 = 4
	ReasonHalted             uint16 = 5
	ReasonSessionNotFound    uint16 = 100
	ReasonBadCredentials     uint16 = 101
)

// Fixed-layout byte widths shared by message definitions.
const (
	tokenWidth  = 14
	symbolWidth = 8
	firmWidth   = 4
)

var (
	// ErrUnknownType reports a 1-byte message type with no registered decoder
	// for the given (phase, direction).
	ErrUnknownType = errors.New("ouch: unknown message type for phase/direction")
	// ErrTruncatedAppendage reports an appendage TLV whose declared length
	// extends past the available bytes.
	ErrTruncatedAppendage = errors.New("ouch: truncated appendage")
)

// fixedLength returns the fixed body length (including the 1-byte type) for
// every OUCH 4.2 message; OUCH 5.0 may add an appendage section afterward.
func fixedLength(phase Phase, direction Direction, typ byte) (int, bool) {
	switch phase {
	case PhaseLogin:
		switch typ {
		case TypeLoginRequest:
			return 39, true
		case TypeLoginAccepted:
			return 11, true
		case TypeLoginRejected:
			return 3, true
		}
	case PhaseOrderEntry:
		switch typ {
		case TypeEnterOrder:
			return 49, true
		case TypeOrderAccepted:
			return 55, true
		case TypeOrderRejected:
			return 3, true
		case TypeCancelOrder:
			return 19, true
		case TypeOrderCanceled:
			return 20, true
		case TypeModifyOrder: // == TypeOrderModified, direction decides semantics
			if direction == Inbound {
				return 23, true // ModifyOrder (client -> server)
			}
			return 28, true // OrderModified (server -> client)
		}
	}
	return 0, false
}

// ExpectedLength returns the total framed length for the message starting
// at data[0], or -1 if more bytes are needed. For OUCH 5.0, the appendage
// section's own length prefix is parsed only
// once the fixed body is available.
func ExpectedLength(phase Phase, direction Direction, version Version, data []byte) (int, error) {
	if len(data) < 1 {
		return -1, nil
	}
	base, ok := fixedLength(phase, direction, data[0])
	if !ok {
		return 0, ErrUnknownType
	}
	if version == V42 {
		if len(data) < base {
			return -1, nil
		}
		return base, nil
	}
	if len(data) < base+2 {
		return -1, nil
	}
	appendageLen := int(binary.BigEndian.Uint16(data[base : base+2]))
	total := base + 2 + appendageLen
	if len(data) < total {
		return -1, nil
	}
	return total, nil
}
