// Package fifo implements the bounded byte buffer used by the SLCANX
// port for outbound (encoded, not-yet-written) bytes.
//
// Unlike a circular queue, the buffer is linear: bytes accumulate at the
// tail, the transport consumes them from the head, and the buffer is
// rewound to offset zero once every queued byte has been written. This
// mirrors the xhead/xleft bookkeeping of the line discipline this package
// models. A partially drained buffer never wraps around: when an Append
// would run past the end of the backing array, the remaining bytes are
// first moved back to offset zero.
package fifo

// TxBuffer is a bounded, singly-linear outbound byte buffer.
//
// Head is the offset of the first unsent byte; Left is the number of
// unsent bytes. The buffer is empty iff Len() == 0, at which point the
// next Append rewinds Head to zero.
type TxBuffer struct {
	buf  []byte
	head int
	left int
}

// NewTxBuffer allocates a TxBuffer with the given capacity.
func NewTxBuffer(capacity int) *TxBuffer {
	return &TxBuffer{buf: make([]byte, capacity)}
}

// Cap returns the buffer's total capacity.
func (t *TxBuffer) Cap() int { return len(t.buf) }

// Len returns the number of unsent bytes currently queued.
func (t *TxBuffer) Len() int { return t.left }

// Space returns the number of bytes that could still be appended without
// exceeding the buffer's capacity.
func (t *TxBuffer) Space() int { return len(t.buf) - t.left }

// Empty reports whether every queued byte has been consumed.
func (t *TxBuffer) Empty() bool { return t.left == 0 }

// Reset drops any queued bytes and rewinds the buffer.
func (t *TxBuffer) Reset() {
	t.head = 0
	t.left = 0
}

// Append queues p at the tail of the buffer. It reports false, leaving the
// buffer unmodified, if p would not fit in the remaining capacity.
func (t *TxBuffer) Append(p []byte) bool {
	if len(p) > t.Space() {
		return false
	}
	if t.left == 0 {
		t.head = 0
	} else if t.head+t.left+len(p) > len(t.buf) {
		// The unsent tail has crept toward the end of the backing array
		// from earlier partial writes; compact it back to offset zero so
		// the append below cannot run past the array bounds. Observable
		// semantics (Len/Space/the bytes themselves) are unchanged.
		copy(t.buf, t.buf[t.head:t.head+t.left])
		t.head = 0
	}
	copy(t.buf[t.head+t.left:], p)
	t.left += len(p)
	return true
}

// Pending returns the slice of not-yet-written bytes currently queued.
// The returned slice is only valid until the next Append or Advance call.
func (t *TxBuffer) Pending() []byte {
	return t.buf[t.head : t.head+t.left]
}

// Advance marks n bytes as having been accepted by the transport.
func (t *TxBuffer) Advance(n int) {
	t.head += n
	t.left -= n
	if t.left == 0 {
		t.head = 0
	}
}
