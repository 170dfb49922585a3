// Package fix implements the tag-based FIX 4.x/5.x wire message model:
// printable ASCII `tag=value<SOH>` fields, with tag 8 (begin-string)
// first, tag 9 (body length) second, tag 35 (msg-type) third, and tag 10
// (checksum) last.
//
// Unlike the fixed-layout binary protocols (OUCH, SBE), FIX fields are
// variable-length, so the flyweight here indexes field boundaries instead
// of using compile-time constant offsets. WrapForReading parses those
// boundaries once in an O(n) scan; the Builder appends tag=value pairs and
// stamps the out-of-line body-length/checksum trailer fields just before
// the bytes are considered final.
package fix

import (
	"errors"
	"fmt"
	"strconv"
)

// SOH is the FIX field delimiter, byte 0x01.
const SOH = 0x01

// Well-known header/trailer tags.
const (
	TagBeginString         = 8
	TagBodyLength          = 9
	TagMsgType             = 35
	TagSenderCompID        = 49
	TagTargetCompID        = 56
	TagMsgSeqNum           = 34
	TagSendingTime         = 52
	TagEncryptMethod       = 98
	TagHeartBtInt          = 108
	TagTestReqID           = 112
	TagBeginSeqNo          = 7
	TagEndSeqNo            = 16
	TagPossDupFlag         = 43
	TagResetSeqNumFlag     = 141
	TagGapFillFlag         = 123
	TagNewSeqNo            = 36
	TagRefSeqNum           = 45
	TagRefTagID            = 371
	TagRefMsgType          = 372
	TagSessionRejectReason = 373
	TagText                = 58
	TagDefaultApplVerID    = 1137
	TagCheckSum            = 10
)

// Well-known MsgType (tag 35) values.
const (
	MsgTypeHeartbeat      = "0"
	MsgTypeTestRequest    = "1"
	MsgTypeResendRequest  = "2"
	MsgTypeReject         = "3"
	MsgTypeSequenceReset  = "4"
	MsgTypeLogout         = "5"
	MsgTypeLogon          = "A"
	MsgTypeNewOrderSingle = "D"
)

var (
	// ErrChecksumMismatch reports a tag-10 checksum that does not match the
	// modulo-256 sum of preceding bytes; fatal, the connection is torn down.
	ErrChecksumMismatch = errors.New("fix: checksum mismatch")
	// ErrMalformedLength reports a tag-9 body length that does not match the
	// actual number of bytes up to (excluding) tag 10.
	ErrMalformedLength = errors.New("fix: malformed body length")
	// ErrTruncated reports a message missing its checksum trailer.
	ErrTruncated = errors.New("fix: truncated message")
	// ErrUnknownMsgType reports a tag-35 value with no registered decoder.
	ErrUnknownMsgType = errors.New("fix: unknown message type")
)

// field is a zero-copy index into the raw buffer: [valueStart, valueEnd).
type field struct {
	tag        int
	start, end int
}

// Message is a parsed-in-place, read-only view over one tag=value<SOH>...
// FIX message. Parsing never copies field values, it only records their
// boundaries; Get* accessors build their result from a slice of the
// wrapped buffer.
type Message struct {
	raw    []byte
	fields []field
}

// ExpectedLength inspects data, starting at data[0], and returns the
// total framed length of one FIX message (including the trailing
// tag-10 SOH), or -1 if more bytes are needed.
func ExpectedLength(data []byte) (int, error) {
	// Need at least "8=X" SOH "9=N" SOH to find body length.
	bodyLenStart := -1
	i := 0
	for i < len(data) {
		tagEnd := indexByte(data[i:], '=')
		if tagEnd < 0 {
			return -1, nil
		}
		tagEnd += i
		tag, err := strconv.Atoi(string(data[i:tagEnd]))
		if err != nil {
			return 0, fmt.Errorf("fix: invalid tag at %d: %w", i, err)
		}
		valStart := tagEnd + 1
		valEnd := indexByte(data[valStart:], SOH)
		if valEnd < 0 {
			return -1, nil
		}
		valEnd += valStart
		if tag == TagBodyLength {
			bodyLen, err := strconv.Atoi(string(data[valStart:valEnd]))
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrMalformedLength, err)
			}
			bodyLenStart = valEnd + 1
			total := bodyLenStart + bodyLen + len("10=000") + 1
			if total > len(data) {
				return -1, nil
			}
			return total, nil
		}
		i = valEnd + 1
	}
	return -1, nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// WrapForReading parses data (exactly one framed FIX message, as returned by
// ExpectedLength) into a read-only Message view.
func WrapForReading(data []byte) (*Message, error) {
	m := &Message{raw: data}
	i := 0
	for i < len(data) {
		eq := indexByte(data[i:], '=')
		if eq < 0 {
			return nil, ErrTruncated
		}
		eq += i
		tag, err := strconv.Atoi(string(data[i:eq]))
		if err != nil {
			return nil, fmt.Errorf("fix: invalid tag: %w", err)
		}
		valStart := eq + 1
		soh := indexByte(data[valStart:], SOH)
		if soh < 0 {
			return nil, ErrTruncated
		}
		soh += valStart
		m.fields = append(m.fields, field{tag: tag, start: valStart, end: soh})
		i = soh + 1
		if tag == TagCheckSum {
			break
		}
	}
	if err := verifyChecksum(data, m); err != nil {
		return nil, err
	}
	// Tag 9 comes second and counts the bytes after its own SOH up to,
	// but excluding, the "10=" of the trailer.
	if len(m.fields) < 2 || m.fields[1].tag != TagBodyLength {
		return nil, ErrMalformedLength
	}
	declared, err := strconv.Atoi(string(data[m.fields[1].start:m.fields[1].end]))
	actual := m.fields[len(m.fields)-1].start - len("10=") - (m.fields[1].end + 1)
	if err != nil || declared != actual {
		return nil, fmt.Errorf("%w: declared %d, actual %d", ErrMalformedLength, declared, actual)
	}
	return m, nil
}

func verifyChecksum(data []byte, m *Message) error {
	last := m.fields[len(m.fields)-1]
	if last.tag != TagCheckSum {
		return ErrTruncated
	}
	want, err := strconv.Atoi(string(data[last.start:last.end]))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrChecksumMismatch, err)
	}
	sum := Checksum(data[:last.start-len("10=")])
	if int(sum) != want {
		return ErrChecksumMismatch
	}
	return nil
}

// Checksum computes the FIX trailer checksum: the modulo-256 sum of all
// bytes up to (but excluding) tag 10.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// Get returns the raw string value for tag, and whether it was present.
func (m *Message) Get(tag int) (string, bool) {
	for _, f := range m.fields {
		if f.tag == tag {
			return string(m.raw[f.start:f.end]), true
		}
	}
	return "", false
}

// GetInt returns tag's value parsed as an int.
func (m *Message) GetInt(tag int) (int, bool) {
	v, ok := m.Get(tag)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// MsgType returns tag 35.
func (m *Message) MsgType() string { v, _ := m.Get(TagMsgType); return v }

// MsgSeqNum returns tag 34.
func (m *Message) MsgSeqNum() int { n, _ := m.GetInt(TagMsgSeqNum); return n }

// PossDup reports whether tag 43 is "Y".
func (m *Message) PossDup() bool { v, _ := m.Get(TagPossDupFlag); return v == "Y" }

// Builder composes a FIX message for writing: fields are appended in
// order, then Build stamps the tag-9 body length and tag-10 checksum
// trailer.
type Builder struct {
	beginString string
	body        []byte
}

// NewBuilder starts a message with the given begin-string (tag 8) and
// msg-type (tag 35); both are required header fields and always come first.
func NewBuilder(beginString, msgType string) *Builder {
	b := &Builder{beginString: beginString}
	b.appendTag(TagMsgType, msgType)
	return b
}

func (b *Builder) appendTag(tag int, value string) *Builder {
	b.body = append(b.body, strconv.Itoa(tag)...)
	b.body = append(b.body, '=')
	b.body = append(b.body, value...)
	b.body = append(b.body, SOH)
	return b
}

// Set appends an arbitrary tag=value field in the body (after tag 35).
func (b *Builder) Set(tag int, value string) *Builder { return b.appendTag(tag, value) }

// SetInt appends an integer-valued field.
func (b *Builder) SetInt(tag int, value int) *Builder {
	return b.appendTag(tag, strconv.Itoa(value))
}

// Build assembles the final wire bytes: tag 8, tag 9 (computed), the body
// (including tag 35 and every Set field), and the tag-10 checksum trailer.
func (b *Builder) Build() []byte {
	var out []byte
	out = append(out, "8="...)
	out = append(out, b.beginString...)
	out = append(out, SOH)
	bodyLenStr := strconv.Itoa(len(b.body))
	out = append(out, "9="...)
	out = append(out, bodyLenStr...)
	out = append(out, SOH)
	out = append(out, b.body...)
	sum := Checksum(out)
	out = append(out, "10="...)
	out = append(out, fmt.Sprintf("%03d", sum)...)
	out = append(out, SOH)
	return out
}
