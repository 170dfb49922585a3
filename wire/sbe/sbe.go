// Package sbe implements the Simple Binary Encoding message model used by
// CME iLink3 and NYSE Pillar: an optional 2-byte little-endian
// frame-length prefix, then a fixed SBE message header
// (block_length:2, template_id:2, schema_id:2, version:2), all
// little-endian, followed by the message's fixed block and any repeating
// groups.
package sbe

import (
	"encoding/binary"
	"errors"

	"code.hybscloud.com/xconnect/buf"
)

// HeaderLength is the fixed SBE message header size in bytes.
const HeaderLength = 8

// FrameLength is the optional outer length prefix some transports (Pillar)
// require ahead of the SBE header.
const FrameLength = 2

var le = binary.LittleEndian

// ErrUnknownTemplate reports a template id with no registered fixed
// block length.
var ErrUnknownTemplate = errors.New("sbe: unknown template id")

// Header is the 8-byte SBE message header, always little-endian regardless
// of host architecture.
type Header struct {
	BlockLength uint16
	TemplateID  uint16
	SchemaID    uint16
	Version     uint16
}

// PeekTemplateID returns the template id from an SBE header starting at
// data[0], without committing to decoding the rest of the message.
func PeekTemplateID(data []byte) (uint16, error) {
	b := buf.Wrap(data, 0, len(data))
	return b.GetUint16(2, le)
}

// DecodeHeader reads the 8-byte SBE header at data[0].
func DecodeHeader(data []byte) (Header, error) {
	b := buf.Wrap(data, 0, len(data))
	var h Header
	var err error
	if h.BlockLength, err = b.GetUint16(0, le); err != nil {
		return h, err
	}
	if h.TemplateID, err = b.GetUint16(2, le); err != nil {
		return h, err
	}
	if h.SchemaID, err = b.GetUint16(4, le); err != nil {
		return h, err
	}
	if h.Version, err = b.GetUint16(6, le); err != nil {
		return h, err
	}
	return h, nil
}

// EncodeHeader writes the 8-byte SBE header at data[0].
func EncodeHeader(data []byte, h Header) error {
	b := buf.Wrap(data, 0, len(data))
	if err := b.PutUint16(0, h.BlockLength, le); err != nil {
		return err
	}
	if err := b.PutUint16(2, h.TemplateID, le); err != nil {
		return err
	}
	if err := b.PutUint16(4, h.SchemaID, le); err != nil {
		return err
	}
	return b.PutUint16(6, h.Version, le)
}

// HasFrameLength reports whether this transport prefixes SBE messages with
// a 2-byte little-endian total-length field ahead of the header (Pillar
// does; raw iLink3 session-layer framing does not — the transport decides,
// not the message itself).
type HasFrameLength bool

const (
	NoFrameLength   HasFrameLength = false
	WithFrameLength HasFrameLength = true
)

// ExpectedLength returns the total framed length for the message starting
// at data[0], or -1 if more bytes are needed. blockLengths maps template
// id to fixed message-block length (excluding
// the 8-byte header); templates with repeating groups supply a length that
// already accounts for the group count read from the block itself, via
// groupLength.
func ExpectedLength(framed HasFrameLength, data []byte, blockLengths map[uint16]int, groupLength func(h Header, block []byte) int) (int, error) {
	prefix := 0
	if framed == WithFrameLength {
		if len(data) < FrameLength {
			return -1, nil
		}
		total := int(le.Uint16(data))
		if len(data) < total {
			return -1, nil
		}
		return total, nil
	}
	if len(data) < prefix+HeaderLength {
		return -1, nil
	}
	h, err := DecodeHeader(data[prefix:])
	if err != nil {
		return -1, nil
	}
	base, ok := blockLengths[h.TemplateID]
	if !ok {
		return 0, ErrUnknownTemplate
	}
	total := prefix + HeaderLength + base
	if groupLength == nil {
		if len(data) < total {
			return -1, nil
		}
		return total, nil
	}
	if len(data) < total {
		return -1, nil
	}
	total += groupLength(h, data[prefix+HeaderLength:total])
	if len(data) < total {
		return -1, nil
	}
	return total, nil
}

func region(data []byte) buf.Buffer { return buf.Wrap(data, 0, len(data)) }
