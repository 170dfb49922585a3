package ouch

import "encoding/binary"

// Appendage is one (tag, length, data) entry in an OUCH 5.0 appendage
// chain.
type Appendage struct {
	Tag  byte
	Data []byte
}

// ParseAppendages walks a tag-length-value chain starting at data[0],
// returning ErrTruncatedAppendage if any entry's declared length runs past
// the end of data.
func ParseAppendages(data []byte) ([]Appendage, error) {
	var out []Appendage
	i := 0
	for i < len(data) {
		if i+3 > len(data) {
			return nil, ErrTruncatedAppendage
		}
		tag := data[i]
		length := int(binary.BigEndian.Uint16(data[i+1 : i+3]))
		start := i + 3
		end := start + length
		if end > len(data) {
			return nil, ErrTruncatedAppendage
		}
		out = append(out, Appendage{Tag: tag, Data: data[start:end]})
		i = end
	}
	return out, nil
}

// EncodeAppendages serializes a TLV chain in the (tag:1, length:2 BE,
// data:length) layout.
func EncodeAppendages(list []Appendage) []byte {
	var out []byte
	for _, a := range list {
		out = append(out, a.Tag)
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(a.Data)))
		out = append(out, lenBuf[:]...)
		out = append(out, a.Data...)
	}
	return out
}
