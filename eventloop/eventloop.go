// Package eventloop implements the single-threaded, epoll-driven readiness
// loop that multiplexes acceptors, connectors, and connected channels onto
// one goroutine with no per-event allocation.
//
// Framing lives entirely in the caller-supplied Handler: OnDataReceived must
// consume only whole messages and return how many bytes it consumed;
// unconsumed bytes are compacted to the front of the channel's fixed read
// buffer and presented again with the next chunk. This mirrors
// internal/ctrlwire's partial-progress discipline (readStream/writeStream
// resuming from saved offset state across iox.ErrWouldBlock) turned inside
// out: instead of a framer pulling bytes until one self-describing message
// completes, the loop pushes whatever arrived and lets the handler decide
// how much of it forms a message.
package eventloop

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/sys/unix"

	"code.hybscloud.com/iox"
)

// Channel is one connected, non-blocking socket the loop is multiplexing.
type Channel struct {
	fd       int
	remote   string
	readBuf  []byte
	readLen  int
	writeBuf []byte
	writeOff int
	closed   bool
}

// RemoteAddr is the channel's peer address, as recorded at accept/connect
// time.
func (ch *Channel) RemoteAddr() string { return ch.remote }

// Handler is the set of callbacks the loop drives. Implementations must not
// block: every method runs on the loop's single goroutine.
type Handler interface {
	OnConnected(ch *Channel)
	OnDataReceived(ch *Channel, buf []byte, offset, available int) int
	OnDisconnected(ch *Channel, cause error)
	OnConnectFailed(remote string, cause error)
	OnAcceptFailed(cause error)
	NumBytesToRead(ch *Channel) int
}

// Loop owns one epoll instance and every channel registered against it.
// All methods except Close must be called from the goroutine running Run.
type Loop struct {
	epfd        int
	handler     Handler
	readBufSize int
	writeBufCap int

	mu         sync.Mutex
	listeners  map[int]struct{}
	connecting map[int]string
	channels   map[int]*Channel
}

// New creates a Loop backed by a fresh epoll instance. readBufSize bounds
// each channel's fixed read buffer; writeBufCap bounds how much unsent
// outbound data a channel may queue before Send reports backpressure.
func New(handler Handler, readBufSize, writeBufCap int) (*Loop, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("eventloop: epoll_create1: %w", err)
	}
	return &Loop{
		epfd:        epfd,
		handler:     handler,
		readBufSize: readBufSize,
		writeBufCap: writeBufCap,
		listeners:   make(map[int]struct{}),
		connecting:  make(map[int]string),
		channels:    make(map[int]*Channel),
	}, nil
}

// Listen opens a non-blocking TCP listening socket at address and
// registers it as an acceptor.
func (l *Loop) Listen(address string) error {
	addr, err := net.ResolveTCPAddr("tcp4", address)
	if err != nil {
		return fmt.Errorf("eventloop: resolve %s: %w", address, err)
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("eventloop: socket: %w", err)
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	sa := &unix.SockaddrInet4{Port: addr.Port}
	if ip := addr.IP.To4(); ip != nil {
		copy(sa.Addr[:], ip)
	}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("eventloop: bind %s: %w", address, err)
	}
	if err := unix.Listen(fd, 128); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("eventloop: listen %s: %w", address, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("eventloop: set nonblock: %w", err)
	}
	if err := l.registerEvents(fd, unix.EPOLLIN); err != nil {
		_ = unix.Close(fd)
		return err
	}
	l.mu.Lock()
	l.listeners[fd] = struct{}{}
	l.mu.Unlock()
	return nil
}

// Connect opens a non-blocking outbound TCP connection to address. Success
// or failure is reported asynchronously through OnConnected or
// OnConnectFailed once the connect attempt resolves.
func (l *Loop) Connect(address string) error {
	addr, err := net.ResolveTCPAddr("tcp4", address)
	if err != nil {
		return fmt.Errorf("eventloop: resolve %s: %w", address, err)
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("eventloop: socket: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("eventloop: set nonblock: %w", err)
	}
	sa := &unix.SockaddrInet4{Port: addr.Port}
	if ip := addr.IP.To4(); ip != nil {
		copy(sa.Addr[:], ip)
	}
	err = unix.Connect(fd, sa)
	if err != nil && !errors.Is(err, unix.EINPROGRESS) {
		_ = unix.Close(fd)
		l.handler.OnConnectFailed(address, err)
		return err
	}
	l.mu.Lock()
	l.connecting[fd] = address
	l.mu.Unlock()
	return l.registerEvents(fd, unix.EPOLLOUT)
}

// Run drives the loop until stop is closed or EpollWait returns a
// non-retryable error.
func (l *Loop) Run(stop <-chan struct{}) error {
	events := make([]unix.EpollEvent, 64)
	for {
		select {
		case <-stop:
			return nil
		default:
		}
		n, err := unix.EpollWait(l.epfd, events, 100)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("eventloop: epoll_wait: %w", err)
		}
		for i := 0; i < n; i++ {
			l.dispatch(int(events[i].Fd), events[i].Events)
		}
	}
}

// Close releases the loop's epoll instance. It does not close registered
// channels; callers should stop Run first.
func (l *Loop) Close() error {
	return unix.Close(l.epfd)
}

func (l *Loop) dispatch(fd int, ev uint32) {
	l.mu.Lock()
	_, isListener := l.listeners[fd]
	remote, isConnecting := l.connecting[fd]
	ch := l.channels[fd]
	l.mu.Unlock()

	switch {
	case isListener:
		if ev&unix.EPOLLIN != 0 {
			l.acceptLoop(fd)
		}
	case isConnecting:
		l.completeConnect(fd, remote, ev)
	case ch != nil:
		if ev&(unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			l.closeChannel(ch, errors.New("eventloop: socket error or hangup"))
			return
		}
		if ev&unix.EPOLLIN != 0 {
			l.handleReadable(ch)
		}
		if !ch.closed && ev&unix.EPOLLOUT != 0 {
			_ = l.flush(ch)
		}
	}
}

func (l *Loop) acceptLoop(listenFd int) {
	for {
		nfd, sa, err := unix.Accept4(listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return
			}
			l.handler.OnAcceptFailed(fmt.Errorf("eventloop: accept: %w", err))
			return
		}
		ch := l.newChannel(nfd, sockaddrString(sa))
		if err := l.registerEvents(nfd, unix.EPOLLIN); err != nil {
			l.closeChannel(ch, err)
			continue
		}
		l.handler.OnConnected(ch)
	}
}

func (l *Loop) completeConnect(fd int, remote string, ev uint32) {
	l.mu.Lock()
	delete(l.connecting, fd)
	l.mu.Unlock()

	if ev&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		_ = unix.Close(fd)
		l.handler.OnConnectFailed(remote, errors.New("eventloop: connect failed"))
		return
	}
	soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		_ = unix.Close(fd)
		l.handler.OnConnectFailed(remote, err)
		return
	}
	if soErr != 0 {
		_ = unix.Close(fd)
		l.handler.OnConnectFailed(remote, unix.Errno(soErr))
		return
	}
	ch := l.newChannel(fd, remote)
	if err := l.registerEvents(fd, unix.EPOLLIN); err != nil {
		l.closeChannel(ch, err)
		return
	}
	l.handler.OnConnected(ch)
}

func (l *Loop) newChannel(fd int, remote string) *Channel {
	ch := &Channel{fd: fd, remote: remote, readBuf: make([]byte, l.readBufSize)}
	l.mu.Lock()
	l.channels[fd] = ch
	l.mu.Unlock()
	return ch
}

func (l *Loop) registerEvents(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("eventloop: epoll_ctl add: %w", err)
	}
	return nil
}

func (l *Loop) modifyEvents(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(l.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("eventloop: epoll_ctl mod: %w", err)
	}
	return nil
}

// readLimit bounds how much of a channel's fixed read buffer a single
// Read(2) call should target, honoring the handler's NumBytesToRead hint
// when it is smaller than the remaining capacity.
func readLimit(bufCap, readLen, hint int) int {
	if hint <= 0 || readLen+hint > bufCap {
		return bufCap
	}
	return readLen + hint
}

func (l *Loop) handleReadable(ch *Channel) {
	for {
		limit := readLimit(len(ch.readBuf), ch.readLen, l.handler.NumBytesToRead(ch))
		if ch.readLen == limit {
			if limit == len(ch.readBuf) {
				l.closeChannel(ch, errors.New("eventloop: read buffer full with no message boundary"))
			}
			return
		}
		n, err := unix.Read(ch.fd, ch.readBuf[ch.readLen:limit])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return
			}
			l.closeChannel(ch, err)
			return
		}
		if n == 0 {
			l.closeChannel(ch, io.EOF)
			return
		}
		ch.readLen += n
		ch.readLen = l.drainFrames(ch)
	}
}

// drain feeds onData repeatedly, compacting buf after each whole message
// it reports consuming, until onData reports 0 consumed (not enough bytes
// for the next message yet) or the buffer empties. It returns the number
// of still-unconsumed bytes, left at the front of buf.
func drain(buf []byte, available int, onData func(b []byte, offset, avail int) int) int {
	for available > 0 {
		consumed := onData(buf, 0, available)
		if consumed <= 0 {
			return available
		}
		if consumed > available {
			panic("eventloop: handler consumed more bytes than available")
		}
		copy(buf, buf[consumed:available])
		available -= consumed
	}
	return available
}

func (l *Loop) drainFrames(ch *Channel) int {
	return drain(ch.readBuf, ch.readLen, func(b []byte, offset, avail int) int {
		return l.handler.OnDataReceived(ch, b, offset, avail)
	})
}

// Send queues p for writing to ch and attempts to flush immediately.
// ErrWouldBlock is returned if ch's pending write buffer is already at
// capacity; the caller must retry once OnDisconnected has not fired and
// some time has passed.
func (l *Loop) Send(ch *Channel, p []byte) error {
	if ch.closed {
		return errors.New("eventloop: channel closed")
	}
	pending := len(ch.writeBuf) - ch.writeOff
	if pending+len(p) > l.writeBufCap {
		return iox.ErrWouldBlock
	}
	ch.writeBuf = append(ch.writeBuf, p...)
	return l.flush(ch)
}

func (l *Loop) flush(ch *Channel) error {
	for ch.writeOff < len(ch.writeBuf) {
		n, err := unix.Write(ch.fd, ch.writeBuf[ch.writeOff:])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				return l.modifyEvents(ch.fd, unix.EPOLLIN|unix.EPOLLOUT)
			}
			l.closeChannel(ch, err)
			return err
		}
		ch.writeOff += n
	}
	ch.writeBuf = ch.writeBuf[:0]
	ch.writeOff = 0
	return l.modifyEvents(ch.fd, unix.EPOLLIN)
}

func (l *Loop) closeChannel(ch *Channel, cause error) {
	if ch.closed {
		return
	}
	ch.closed = true
	_ = unix.EpollCtl(l.epfd, unix.EPOLL_CTL_DEL, ch.fd, nil)
	_ = unix.Close(ch.fd)
	l.mu.Lock()
	delete(l.channels, ch.fd)
	l.mu.Unlock()
	l.handler.OnDisconnected(ch, cause)
}

func sockaddrString(sa unix.Sockaddr) string {
	a, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d.%d:%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3], a.Port)
}
