// Package pool provides reusable message buffers and template-id dispatch
// for wire decoding. Concrete message types live in wire/fix,
// wire/ouch, wire/sbe; this package only manages their backing byte slices
// so the event loop and session layer never allocate per message on the
// steady-state path, the same instance-reuse discipline the control-plane
// framer applies to its own rbuf/wbuf scratch buffers, generalized from "one
// scratch slice per framer" to "a typed registry of reusable slots."
package pool

import "sync"

// Kind identifies a reusable buffer class: one entry per (protocol, message
// type) pair that the session layer decodes or builds repeatedly.
type Kind string

// Registry hands out and reclaims fixed-capacity byte buffers keyed by
// Kind. It is safe for concurrent use; each Kind gets its own sync.Pool so
// buffers of different sizes never cross-pollinate.
type Registry struct {
	mu    sync.Mutex
	pools map[Kind]*sync.Pool
}

// NewRegistry returns an empty Registry. Call Register for every Kind
// before the first Get to fix its buffer capacity.
func NewRegistry() *Registry {
	return &Registry{pools: make(map[Kind]*sync.Pool)}
}

// Register declares a Kind with the given buffer capacity. Calling
// Register again for the same Kind always replaces its pool, whether or not
// the capacity matches (buffers pooled under the old one are simply
// dropped, not resized).
func (r *Registry) Register(k Kind, capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[k] = &sync.Pool{
		New: func() any {
			buf := make([]byte, capacity)
			return &buf
		},
	}
}

// Get returns a reset buffer for the given Kind: zero-length bytes beyond
// what New produced, truncated to zero length and ready for the caller to
// append into. Panics if Kind was never Registered, since an un-registered
// Kind means a decoder is about to allocate unboundedly.
func (r *Registry) Get(k Kind) *[]byte {
	r.mu.Lock()
	p, ok := r.pools[k]
	r.mu.Unlock()
	if !ok {
		panic("pool: Get of unregistered kind " + string(k))
	}
	buf := p.Get().(*[]byte)
	*buf = (*buf)[:0]
	return buf
}

// Put returns a buffer to its Kind's pool for reuse. The buffer must have
// been obtained from Get with the same Kind.
func (r *Registry) Put(k Kind, buf *[]byte) {
	r.mu.Lock()
	p, ok := r.pools[k]
	r.mu.Unlock()
	if !ok {
		return
	}
	p.Put(buf)
}

// Create allocates a fresh, unpooled buffer of the given capacity for the
// rare long-lived hold that must outlive a Put/Get cycle.
func Create(capacity int) []byte {
	return make([]byte, 0, capacity)
}
