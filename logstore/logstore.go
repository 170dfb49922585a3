// Package logstore implements the per-stream persistent append-only log:
// a memory-mapped file with a 64-byte header holding (entry_count,
// write_position), followed by length-prefixed entries.
// Mapping and syncing are explicit operations, never implicit on GC, the
// same non-blocking-I/O discipline the control-plane framer applies to its
// own reads and writes, carried here into an explicit sync()/close() pair.
package logstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const (
	headerSize          = 64
	entryCountOffset    = 0
	writePositionOffset = 8
)

var (
	// ErrLogFull reports that appending an entry would overflow the
	// store's configured maximum size.
	ErrLogFull = errors.New("logstore: log full")
	// ErrClosed reports use of a Store after Close.
	ErrClosed = errors.New("logstore: store closed")
	// ErrCorrupt reports a header or entry that fails its length
	// invariant: entry count and write position are updated together.
	ErrCorrupt = errors.New("logstore: corrupt entry")
)

// Direction marks whether an entry was sent (OUT) or received (IN) by the
// owning session.
type Direction uint8

const (
	In  Direction = 1
	Out Direction = 2
)

// Entry is one persisted message record.
type Entry struct {
	Timestamp int64
	Seq       uint32
	Direction Direction
	TxnID     uint64
	MsgType   string
	Metadata  []byte
	Raw       []byte
}

// encodedLen returns the on-disk size of e including its own 4-byte length
// prefix: 4 + 8 + 4 + 1 + 8 + 2 + |msg_type| + 2 + |metadata| + 4 + |raw|.
func encodedLen(e Entry) int {
	return 4 + 8 + 4 + 1 + 8 + 2 + len(e.MsgType) + 2 + len(e.Metadata) + 4 + len(e.Raw)
}

// Store is one stream's memory-mapped append-only log file.
type Store struct {
	file        *os.File
	data        []byte // mmap'd region, header + entries
	maxSize     int
	syncOnWrite bool
	closed      bool
}

// Open maps or creates the file at path, sized up to maxSize bytes. An
// existing file's header is trusted as-is; a new file gets a zeroed
// 64-byte header.
func Open(path string, maxSize int, syncOnWrite bool) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logstore: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.Size() < int64(maxSize) {
		if err := f.Truncate(int64(maxSize)); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	data, err := unix.Mmap(int(f.Fd()), 0, maxSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("logstore: mmap %s: %w", path, err)
	}
	return &Store{file: f, data: data, maxSize: maxSize, syncOnWrite: syncOnWrite}, nil
}

func (s *Store) entryCount() uint64 {
	return binary.LittleEndian.Uint64(s.data[entryCountOffset : entryCountOffset+8])
}

func (s *Store) writePosition() uint64 {
	return binary.LittleEndian.Uint64(s.data[writePositionOffset : writePositionOffset+8])
}

func (s *Store) setHeader(count, pos uint64) {
	binary.LittleEndian.PutUint64(s.data[entryCountOffset:entryCountOffset+8], count)
	binary.LittleEndian.PutUint64(s.data[writePositionOffset:writePositionOffset+8], pos)
}

// Write appends e at the current write position. Callers must serialize
// calls per stream themselves (the session owning this stream is already
// single-threaded).
func (s *Store) Write(e Entry) error {
	if s.closed {
		return ErrClosed
	}
	size := encodedLen(e)
	pos := s.writePosition()
	if pos < headerSize {
		// A fresh file's zeroed header: entries start right after it.
		pos = headerSize
	}
	if int(pos)+size > s.maxSize {
		return ErrLogFull
	}

	buf := s.data[int(pos) : int(pos)+size]
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], uint32(size-4))
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], uint64(e.Timestamp))
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], e.Seq)
	off += 4
	buf[off] = byte(e.Direction)
	off++
	binary.LittleEndian.PutUint64(buf[off:], e.TxnID)
	off += 8
	binary.LittleEndian.PutUint16(buf[off:], uint16(len(e.MsgType)))
	off += 2
	off += copy(buf[off:], e.MsgType)
	binary.LittleEndian.PutUint16(buf[off:], uint16(len(e.Metadata)))
	off += 2
	off += copy(buf[off:], e.Metadata)
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(e.Raw)))
	off += 4
	off += copy(buf[off:], e.Raw)

	// Entry count and write position are committed together, never
	// independently.
	s.setHeader(s.entryCount()+1, pos+uint64(size))

	if s.syncOnWrite {
		return s.Sync()
	}
	return nil
}

// Sync flushes the mapped region to the backing file.
func (s *Store) Sync() error {
	if s.closed {
		return ErrClosed
	}
	return unix.Msync(s.data, unix.MS_SYNC)
}

// Close unmaps and closes the underlying file. Safe to call once; a second
// call returns ErrClosed.
func (s *Store) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	if err := unix.Munmap(s.data); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// Filter narrows a Replay/GetLatest scan. A zero-value field means "don't
// filter on this dimension."
type Filter struct {
	Direction Direction // 0 = either
	SeqMin    uint32
	SeqMax    uint32 // 0 = no upper bound
	TimeMin   int64
	TimeMax   int64 // 0 = no upper bound
}

func (f Filter) matches(e Entry) bool {
	if f.Direction != 0 && e.Direction != f.Direction {
		return false
	}
	if e.Seq < f.SeqMin {
		return false
	}
	if f.SeqMax != 0 && e.Seq > f.SeqMax {
		return false
	}
	if e.Timestamp < f.TimeMin {
		return false
	}
	if f.TimeMax != 0 && e.Timestamp > f.TimeMax {
		return false
	}
	return true
}

// Replay walks entries forward from the start of the log, invoking cb for
// each entry matching filter in append order; it stops early if cb returns
// false.
func (s *Store) Replay(filter Filter, cb func(Entry) bool) error {
	if s.closed {
		return ErrClosed
	}
	pos := uint64(headerSize)
	end := s.writePosition()
	for pos < end {
		e, next, err := s.decodeAt(pos)
		if err != nil {
			return err
		}
		if filter.matches(e) {
			if !cb(e) {
				return nil
			}
		}
		pos = next
	}
	return nil
}

// GetLatest returns the most recent entry matching direction (0 = either),
// or ok=false if none exist. A linear scan is acceptable since replay and
// latest-lookup are rare relative to writes.
func (s *Store) GetLatest(direction Direction) (e Entry, ok bool, err error) {
	err = s.Replay(Filter{Direction: direction}, func(found Entry) bool {
		e, ok = found, true
		return true // keep scanning; we want the last match
	})
	return e, ok, err
}

func (s *Store) decodeAt(pos uint64) (Entry, uint64, error) {
	if int(pos)+4 > len(s.data) {
		return Entry{}, 0, ErrCorrupt
	}
	payloadLen := binary.LittleEndian.Uint32(s.data[pos : pos+4])
	start := pos + 4
	end := start + uint64(payloadLen)
	if int(end) > len(s.data) {
		return Entry{}, 0, ErrCorrupt
	}
	buf := s.data[start:end]
	off := 0
	var e Entry
	e.Timestamp = int64(binary.LittleEndian.Uint64(buf[off:]))
	off += 8
	e.Seq = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	e.Direction = Direction(buf[off])
	off++
	e.TxnID = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	msgTypeLen := int(binary.LittleEndian.Uint16(buf[off:]))
	off += 2
	e.MsgType = string(buf[off : off+msgTypeLen])
	off += msgTypeLen
	metaLen := int(binary.LittleEndian.Uint16(buf[off:]))
	off += 2
	e.Metadata = append([]byte(nil), buf[off:off+metaLen]...)
	off += metaLen
	rawLen := int(binary.LittleEndian.Uint32(buf[off:]))
	off += 4
	e.Raw = append([]byte(nil), buf[off:off+rawLen]...)
	off += rawLen
	if off != len(buf) {
		return Entry{}, 0, ErrCorrupt
	}
	return e, end, nil
}
