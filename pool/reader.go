package pool

import (
	"code.hybscloud.com/xconnect/wire/fix"
	"code.hybscloud.com/xconnect/wire/ouch"
	"code.hybscloud.com/xconnect/wire/sbe"
)

// Reader computes the total framed length of the message starting at
// data[0] for one protocol family, returning -1 when more bytes are needed.
// Each protocol's own wire package holds the real parsing logic; Reader
// only picks which one to call.
type Reader interface {
	ExpectedLength(data []byte) (int, error)
}

// FIXReader computes expected_length for tag-based FIX messages.
type FIXReader struct{}

func (FIXReader) ExpectedLength(data []byte) (int, error) { return fix.ExpectedLength(data) }

// OUCHReader computes expected_length for a fixed OUCH phase/direction pair
// on one session. Sessions keep one OUCHReader per direction since the
// phase changes once (login succeeds) but never reverses mid-connection.
type OUCHReader struct {
	Phase     ouch.Phase
	Direction ouch.Direction
	Version   ouch.Version
}

func (r OUCHReader) ExpectedLength(data []byte) (int, error) {
	return ouch.ExpectedLength(r.Phase, r.Direction, r.Version, data)
}

// SBEReader computes expected_length for an SBE-family (iLink3/Pillar)
// stream. BlockLengths and GroupLength are supplied by the session layer's
// schema registration, not hardcoded here, since different venues assign
// different template ids.
type SBEReader struct {
	Framed       sbe.HasFrameLength
	BlockLengths map[uint16]int
	GroupLength  func(h sbe.Header, block []byte) int
}

func (r SBEReader) ExpectedLength(data []byte) (int, error) {
	return sbe.ExpectedLength(r.Framed, data, r.BlockLengths, r.GroupLength)
}

// PeekTemplateID returns the SBE template id for data[0:], without
// committing to a full decode. FIX and OUCH dispatch on their own leading
// bytes (MsgType tag, 1-byte type code) directly in their wire packages, so
// only SBE needs this helper.
func PeekTemplateID(data []byte) (uint16, error) {
	return sbe.PeekTemplateID(data)
}
