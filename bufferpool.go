package webrtcdc

import "sync"

// BufferPool is the external collaborator spec §1/§5 names but leaves
// unspecified: "an allocator of reusable byte buffers with scoped
// release". The Client only ever calls Acquire; ownership of the returned
// buffer transfers to the caller until Release is called.
type BufferPool interface {
	Acquire() *PooledBuffer
}

// PooledBuffer is a byte slice borrowed from a BufferPool. Release must be
// called when the caller is done with it (later calls are no-ops), after
// which the buffer must not be read or written.
type PooledBuffer struct {
	buf      *[]byte
	pool     *sync.Pool
	released bool
}

// Bytes returns the buffer's current contents.
func (b *PooledBuffer) Bytes() []byte { return *b.buf }

// Append grows the buffer by p.
func (b *PooledBuffer) Append(p []byte) { *b.buf = append(*b.buf, p...) }

// Release returns the buffer to its pool. Safe to call more than once.
func (b *PooledBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	*b.buf = (*b.buf)[:0]
	b.pool.Put(b.buf)
}

type syncBufferPool struct {
	pool *sync.Pool
}

// NewBufferPool returns a BufferPool backed by sync.Pool. No third-party
// library in the retrieval pack implements a reusable byte-buffer pool
// (the closest, nabbar-golib's ioutils/bufferReadCloser, wraps a single
// bytes.Buffer rather than pooling many); see DESIGN.md.
func NewBufferPool() BufferPool {
	pool := &sync.Pool{
		New: func() interface{} {
			b := make([]byte, 0, MaxUDPPayloadSize)
			return &b
		},
	}
	return &syncBufferPool{pool: pool}
}

func (s *syncBufferPool) Acquire() *PooledBuffer {
	buf := s.pool.Get().(*[]byte)
	return &PooledBuffer{buf: buf, pool: s.pool}
}
