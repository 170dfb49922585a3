// Package buf provides endianness-aware, bounds-checked accessors over a
// fixed-layout byte region. It is the codec substrate shared by every wire
// protocol (tag-based FIX, binary OUCH, SBE): flyweight message types in
// wire/fix, wire/ouch, and wire/sbe wrap a Buffer at a fixed offset and read
// or write fields directly through it, never allocating or copying.
//
// HostOrder (in the architecture-specific hostorder_*.go files) exposes
// this process's native byte order for callers that need one tied to their
// own host rather than a wire format's mandated endianness — every field
// accessor above always takes an explicit binary.ByteOrder instead of
// assuming HostOrder, since trading-protocol fields are never host-order.
package buf

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrBoundsExceeded is returned whenever an accessor would read or write
// past the buffer's configured (offset, length) region.
var ErrBoundsExceeded = errors.New("buf: bounds exceeded")

// BoundsError carries the offset/length context for ErrBoundsExceeded.
type BoundsError struct {
	Op     string
	Offset int
	Length int
	Cap    int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("buf: %s out of bounds: offset=%d length=%d cap=%d", e.Op, e.Offset, e.Length, e.Cap)
}

func (e *BoundsError) Unwrap() error { return ErrBoundsExceeded }

// Buffer is a contiguous mutable byte region (base, offset, length). It owns
// no lifecycle of its own: callers (message flyweights) slice a Buffer at
// whatever (offset, length) their wire template needs and it never retains
// state between calls, matching the "never owns its buffer" invariant of
// the message flyweight model.
type Buffer struct {
	base   []byte
	offset int
	length int
}

// Wrap returns a Buffer viewing base[offset : offset+length].
func Wrap(base []byte, offset, length int) Buffer {
	return Buffer{base: base, offset: offset, length: length}
}

// Bytes returns the raw byte slice underlying this buffer's region.
func (b Buffer) Bytes() []byte { return b.base[b.offset : b.offset+b.length] }

// Len returns the configured region length.
func (b Buffer) Len() int { return b.length }

// Offset returns the region's starting offset within base.
func (b Buffer) Offset() int { return b.offset }

// Slice returns a sub-region, relative to this buffer's own offset.
func (b Buffer) Slice(offset, length int) Buffer {
	return Buffer{base: b.base, offset: b.offset + offset, length: length}
}

func (b Buffer) check(op string, at, n int) error {
	if at < 0 || n < 0 || at+n > b.length {
		return &BoundsError{Op: op, Offset: b.offset + at, Length: n, Cap: b.length}
	}
	return nil
}

// GetUint8 reads an unsigned byte at the given offset.
func (b Buffer) GetUint8(at int) (byte, error) {
	if err := b.check("GetUint8", at, 1); err != nil {
		return 0, err
	}
	return b.base[b.offset+at], nil
}

// PutUint8 writes an unsigned byte at the given offset.
func (b Buffer) PutUint8(at int, v byte) error {
	if err := b.check("PutUint8", at, 1); err != nil {
		return err
	}
	b.base[b.offset+at] = v
	return nil
}

// GetUint16 reads a 2-byte unsigned integer using the given byte order.
func (b Buffer) GetUint16(at int, order binary.ByteOrder) (uint16, error) {
	if err := b.check("GetUint16", at, 2); err != nil {
		return 0, err
	}
	return order.Uint16(b.base[b.offset+at:]), nil
}

// PutUint16 writes a 2-byte unsigned integer using the given byte order.
func (b Buffer) PutUint16(at int, v uint16, order binary.ByteOrder) error {
	if err := b.check("PutUint16", at, 2); err != nil {
		return err
	}
	order.PutUint16(b.base[b.offset+at:], v)
	return nil
}

// GetUint32 reads a 4-byte unsigned integer using the given byte order.
func (b Buffer) GetUint32(at int, order binary.ByteOrder) (uint32, error) {
	if err := b.check("GetUint32", at, 4); err != nil {
		return 0, err
	}
	return order.Uint32(b.base[b.offset+at:]), nil
}

// PutUint32 writes a 4-byte unsigned integer using the given byte order.
func (b Buffer) PutUint32(at int, v uint32, order binary.ByteOrder) error {
	if err := b.check("PutUint32", at, 4); err != nil {
		return err
	}
	order.PutUint32(b.base[b.offset+at:], v)
	return nil
}

// GetInt32 reads a 4-byte signed integer using the given byte order.
func (b Buffer) GetInt32(at int, order binary.ByteOrder) (int32, error) {
	v, err := b.GetUint32(at, order)
	return int32(v), err
}

// PutInt32 writes a 4-byte signed integer using the given byte order.
func (b Buffer) PutInt32(at int, v int32, order binary.ByteOrder) error {
	return b.PutUint32(at, uint32(v), order)
}

// GetUint64 reads an 8-byte unsigned integer using the given byte order.
func (b Buffer) GetUint64(at int, order binary.ByteOrder) (uint64, error) {
	if err := b.check("GetUint64", at, 8); err != nil {
		return 0, err
	}
	return order.Uint64(b.base[b.offset+at:]), nil
}

// PutUint64 writes an 8-byte unsigned integer using the given byte order.
func (b Buffer) PutUint64(at int, v uint64, order binary.ByteOrder) error {
	if err := b.check("PutUint64", at, 8); err != nil {
		return err
	}
	order.PutUint64(b.base[b.offset+at:], v)
	return nil
}

// GetInt64 reads an 8-byte signed integer using the given byte order.
func (b Buffer) GetInt64(at int, order binary.ByteOrder) (int64, error) {
	v, err := b.GetUint64(at, order)
	return int64(v), err
}

// PutInt64 writes an 8-byte signed integer using the given byte order.
func (b Buffer) PutInt64(at int, v int64, order binary.ByteOrder) error {
	return b.PutUint64(at, uint64(v), order)
}

// GetAlpha reads a fixed-width ASCII field and trims trailing spaces, the
// right-space-padding convention used by OUCH and SBE alpha fields.
func (b Buffer) GetAlpha(at, width int) (string, error) {
	if err := b.check("GetAlpha", at, width); err != nil {
		return "", err
	}
	raw := b.base[b.offset+at : b.offset+at+width]
	end := width
	for end > 0 && raw[end-1] == ' ' {
		end--
	}
	return string(raw[:end]), nil
}

// PutAlpha writes s into a fixed-width ASCII field, right-space-padded.
// It returns ErrBoundsExceeded if s is longer than width.
func (b Buffer) PutAlpha(at, width int, s string) error {
	if err := b.check("PutAlpha", at, width); err != nil {
		return err
	}
	if len(s) > width {
		return &BoundsError{Op: "PutAlpha", Offset: b.offset + at, Length: len(s), Cap: width}
	}
	dst := b.base[b.offset+at : b.offset+at+width]
	n := copy(dst, s)
	for i := n; i < width; i++ {
		dst[i] = ' '
	}
	return nil
}

// Scale is the decimal scaling factor applied to a fixed-point price field.
type Scale int64

const (
	// ScaleOUCH is the ×10^4 scale used by OUCH and Pillar price fields.
	ScaleOUCH Scale = 10_000
	// ScaleOptiq is the ×10^8 scale used by certain Optiq message price fields.
	ScaleOptiq Scale = 100_000_000
)

// GetPrice32 reads a signed 32-bit fixed-point price and returns it scaled
// to a float64 by dividing by scale, per the OUCH/Pillar price × 10^4
// convention.
func (b Buffer) GetPrice32(at int, order binary.ByteOrder, scale Scale) (float64, error) {
	raw, err := b.GetInt32(at, order)
	if err != nil {
		return 0, err
	}
	return float64(raw) / float64(scale), nil
}

// PutPrice32 writes price × scale, rounded to the nearest integer, as a
// signed 32-bit fixed-point field.
func (b Buffer) PutPrice32(at int, price float64, order binary.ByteOrder, scale Scale) error {
	scaled := price * float64(scale)
	rounded := int32(scaled + signOf(scaled)*0.5)
	return b.PutInt32(at, rounded, order)
}

func signOf(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
