package slcanx

import (
	"log/slog"
	"sync"
	"time"

	"github.com/weifengdq/slcanx-go/internal/fifo"
)

// Transport is the byte-stream the Port is layered on top of. It is the
// only interface this package requires from its environment; opening and
// configuring the underlying device (serial port, pty, ...) is out of
// scope here and lives in pkg/transport.
type Transport interface {
	// Write writes as many of p's leading bytes as it can without
	// blocking and returns how many were accepted.
	Write(p []byte) (n int, err error)
	// SetWriteWakeup arms or disarms a callback to Port.Writable. While
	// armed, the transport calls Writable asynchronously whenever it has
	// room for more bytes.
	SetWriteWakeup(wake bool)
}

// Port is the shared state multiplexing up to MaxChannels logical CAN
// interfaces over one Transport.
type Port struct {
	logger *slog.Logger

	mu          sync.Mutex
	transport   Transport
	out         *fifo.TxBuffer
	slots       [MaxChannels]*Channel
	txChan      *Channel
	inboundErr  bool
	commandInFl bool
	cmdWake     chan struct{} // non-nil only while commandInFl

	batchWindow time.Duration
	batchTimer  *time.Timer

	notifyMu   sync.Mutex
	writableCh chan struct{}

	queryWait *pendingQuery

	registrar Registrar

	line    [RecordCapacity]byte
	lineLen int
}

// NewPort creates an unattached Port: no logical interfaces exist and no
// transport is bound. Use Attach to bind it to a transport and register
// its channels.
func NewPort(logger *slog.Logger) *Port {
	if logger == nil {
		logger = slog.Default()
	}
	return &Port{
		logger: logger,
		out:    fifo.NewTxBuffer(RecordCapacity),
	}
}

// Channel returns the logical interface at idx, or nil if idx is out of
// range or the slot is empty.
func (p *Port) Channel(idx int) *Channel {
	if idx < 0 || idx >= MaxChannels {
		return nil
	}
	return p.slots[idx]
}

// SetBatchWindow sets the tx_batch_us coalescing window (spec.md §4.3,
// §6). A zero duration disables batching.
func (p *Port) SetBatchWindow(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batchWindow = d
}

// firstChannel returns the lowest-index registered channel. Only called
// from the single-threaded receive path, so it needs no lock even though
// the slot table is otherwise protected by mu.
func (p *Port) firstChannel() *Channel {
	for _, ch := range p.slots {
		if ch != nil {
			return ch
		}
	}
	return nil
}
