// ABOUTME: Byte ring buffer backing the playback streams
// ABOUTME: Tracks queued versus free bytes under a single mutex
package output

import "sync"

// ring is a fixed-capacity circular byte buffer. Writers queue PCM for
// the device side to read; both ends may run concurrently.
type ring struct {
	mu       sync.Mutex
	buf      []byte
	readPos  int
	writePos int
	count    int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]byte, capacity)}
}

// WriteBytes queues up to len(p) bytes and returns how many fit.
func (r *ring) WriteBytes(p []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	written := 0
	for written < len(p) && r.count < len(r.buf) {
		chunk := len(r.buf) - r.writePos
		if free := len(r.buf) - r.count; chunk > free {
			chunk = free
		}
		if chunk > len(p)-written {
			chunk = len(p) - written
		}
		copy(r.buf[r.writePos:], p[written:written+chunk])
		r.writePos = (r.writePos + chunk) % len(r.buf)
		r.count += chunk
		written += chunk
	}
	return written
}

// ReadBytes dequeues up to len(p) bytes and returns how many were
// available. It never blocks and never zero-fills; callers decide what
// an underrun means.
func (r *ring) ReadBytes(p []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.discardInto(p, len(p))
}

// Discard drops up to n queued bytes and returns how many were dropped.
func (r *ring) Discard(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.discardInto(nil, n)
}

// discardInto removes up to n bytes, copying them into p when p is not
// nil. Callers hold mu.
func (r *ring) discardInto(p []byte, n int) int {
	read := 0
	for read < n && r.count > 0 {
		chunk := len(r.buf) - r.readPos
		if chunk > r.count {
			chunk = r.count
		}
		if chunk > n-read {
			chunk = n - read
		}
		if p != nil {
			copy(p[read:], r.buf[r.readPos:r.readPos+chunk])
		}
		r.readPos = (r.readPos + chunk) % len(r.buf)
		r.count -= chunk
		read += chunk
	}
	return read
}

// Buffered returns the queued byte count.
func (r *ring) Buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Free returns the remaining capacity.
func (r *ring) Free() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf) - r.count
}

// Clear drops everything queued.
func (r *ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readPos = 0
	r.writePos = 0
	r.count = 0
}
