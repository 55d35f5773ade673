package slcanx

import "sync/atomic"

// Counters holds the per-channel packet/byte/error statistics named in
// spec.md §3. Fields are updated from a single writer (either the receive
// parser or the encoder, never both concurrently for the same counter)
// and may be read concurrently, so plain atomics are sufficient.
type Counters struct {
	RxPackets   atomic.Uint64
	RxBytes     atomic.Uint64
	TxPackets   atomic.Uint64
	TxBytes     atomic.Uint64
	RxErrors    atomic.Uint64
	RxOverflows atomic.Uint64
	TxErrors    atomic.Uint64
}

// Channel is one logical CAN interface multiplexed over a Port.
type Channel struct {
	port  *Port
	index int

	nominal BitTiming
	data    BitTiming
	mode    ControlMode

	errRstOnOpen atomic.Bool
	open         atomic.Bool
	state        atomic.Uint32 // BusState

	Counters Counters

	// Sink receives decoded frames, state transitions and bus-off
	// notifications for this channel. Must be set before the channel
	// starts receiving traffic.
	Sink NetSink
}

func newChannel(port *Port, index int) *Channel {
	ch := &Channel{port: port, index: index}
	ch.state.Store(uint32(StateStopped))
	return ch
}

// Index returns the channel's index in [0, MaxChannels).
func (c *Channel) Index() int { return c.index }

// State returns the channel's current bus state.
func (c *Channel) State() BusState { return BusState(c.state.Load()) }

func (c *Channel) setState(s BusState) { c.state.Store(uint32(s)) }

// IsOpen reports whether the channel is bus-on.
func (c *Channel) IsOpen() bool { return c.open.Load() }

// ErrorResetOnOpen reports the CF_ERR_RST latch.
func (c *Channel) ErrorResetOnOpen() bool { return c.errRstOnOpen.Load() }

// SetErrorResetOnOpen sets the CF_ERR_RST latch controlling whether Open
// issues an "F\r" (read-and-clear status) command. It must not be called
// while the channel is open.
func (c *Channel) SetErrorResetOnOpen(on bool) error {
	if c.IsOpen() {
		return ErrInvalidConfig
	}
	c.errRstOnOpen.Store(on)
	return nil
}

// Configure sets the nominal and data bit timing and control mode to use
// on the next Open. It must not be called while the channel is open.
func (c *Channel) Configure(nominal BitTiming, data BitTiming, mode ControlMode) error {
	if c.IsOpen() {
		return ErrInvalidConfig
	}
	c.nominal = nominal
	c.data = data
	c.mode = mode
	return nil
}

// NetSink is the consumer of decoded inbound traffic for one channel: the
// "OS networking layer" spec.md treats as an external collaborator.
type NetSink interface {
	// HandleFrame delivers one decoded CAN/CAN-FD data or remote frame.
	HandleFrame(f Frame)
	// HandleErrorFrame delivers a synthesized error/status frame, as
	// produced by the 's', 'e' and 'E' record decoders (spec.md §4.5).
	HandleErrorFrame(ef ErrorFrame)
	// HandleStateChange delivers the per-direction derived state spec.md
	// §4.5 computes from a bus-state record. A nil argument means "no
	// change" for that direction.
	HandleStateChange(tx, rx *BusState)
	// HandleBusOff is invoked exactly once per bus-off entry.
	HandleBusOff()
}
