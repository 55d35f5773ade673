package slcanx

import "context"

// Registrar is the "OS networking layer" collaborator that a logical
// interface is registered with and unregistered from (spec.md §4.6). A
// nil Registrar makes Attach skip registration.
type Registrar interface {
	RegisterChannel(ch *Channel) error
	UnregisterChannel(ch *Channel)
}

// Attach binds the port to a transport and allocates its MaxChannels
// logical interfaces, registering each with reg in turn. If any
// registration fails, every interface registered so far is unregistered
// and the attach fails as a whole (spec.md §4.6).
func (p *Port) Attach(transport Transport, reg Registrar) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.transport != nil {
		return ErrBusy
	}
	transport.SetWriteWakeup(false)

	registered := make([]*Channel, 0, MaxChannels)
	for i := 0; i < MaxChannels; i++ {
		ch := newChannel(p, i)
		if reg != nil {
			if err := reg.RegisterChannel(ch); err != nil {
				for _, rc := range registered {
					reg.UnregisterChannel(rc)
				}
				p.slots = [MaxChannels]*Channel{}
				return err
			}
		}
		p.slots[i] = ch
		registered = append(registered, ch)
	}

	p.transport = transport
	p.registrar = reg
	return nil
}

// Detach cancels the batch timer, flushes the drain task, unregisters
// every logical interface, flushes again for any work that unregistering
// scheduled, and clears the port's transport and channel state (spec.md
// §4.6).
func (p *Port) Detach() {
	p.mu.Lock()
	if p.batchTimer != nil {
		p.batchTimer.Stop()
	}
	p.mu.Unlock()
	p.drain()

	p.mu.Lock()
	reg := p.registrar
	chans := p.slots
	p.slots = [MaxChannels]*Channel{}
	p.registrar = nil
	p.mu.Unlock()

	if reg != nil {
		for _, ch := range chans {
			if ch != nil {
				reg.UnregisterChannel(ch)
			}
		}
	}
	p.drain()

	p.mu.Lock()
	p.transport = nil
	p.mu.Unlock()
}

// nominalBitrateIndex maps a nominal bitrate in bit/s to its S<idx>
// table entry (spec.md §6), if it matches one exactly.
func nominalBitrateIndex(bps uint32) (int, bool) {
	table := [...]uint32{10_000, 20_000, 50_000, 100_000, 125_000, 250_000, 500_000, 800_000, 1_000_000}
	for i, v := range table {
		if v == bps {
			return i, true
		}
	}
	return 0, false
}

// dataRateDigit maps a data-phase bitrate in bit/s to its Y<digit> table
// entry, per spec.md §6: digits 1..F step 1..15 MHz, with 'F' overloaded
// to also mean 16 MHz (spec.md §9's documented non-monotonicity). bps
// must be an exact multiple of 1 MHz in 1..16 MHz; ok is false otherwise,
// including bps == 0 — "disable FD" is the literal "Y0" chunk Open sends
// when FD is not requested, not a table entry.
func dataRateDigit(bps uint32) (digit byte, ok bool) {
	if bps == 0 || bps%1_000_000 != 0 {
		return 0, false
	}
	mhz := bps / 1_000_000
	switch {
	case mhz == 15, mhz == 16:
		return 'F', true
	case mhz >= 1 && mhz <= 14:
		return hexUpper[mhz], true
	default:
		return 0, false
	}
}

// Open runs the bus-on command sequence of spec.md §4.6: bitrate and
// sample-point configuration (if a nominal bitrate is set), the
// error-reset-on-open flag, and finally listen-only or normal mode.
//
// A nominal bitrate that does not match the S0..S8 table, or an FD data
// bitrate that does not match the Y1..YF table, fails Open with
// ErrInvalidConfig and leaves the interface down (spec.md §7,
// ConfigurationInvalid) rather than falling back to the separate
// y/a/A commands, which Open never issues on its own.
func (c *Channel) Open(ctx context.Context) error {
	if c.IsOpen() {
		return nil
	}

	fd := c.mode&ModeFD != 0
	var dataDigit byte
	if fd {
		digit, ok := dataRateDigit(c.data.BitrateBPS)
		if !ok {
			return ErrInvalidConfig
		}
		dataDigit = digit
	}

	var chunks []string
	if c.nominal.BitrateBPS != 0 {
		idx, ok := nominalBitrateIndex(c.nominal.BitrateBPS)
		if !ok {
			return ErrInvalidConfig
		}
		chunks = append(chunks, "C", sprintChunk('S', idx))
		if c.nominal.SamplePoint != 0 {
			chunks = append(chunks, sprintDecChunk('p', uint32(c.nominal.SamplePoint)))
		}
		if fd {
			chunks = append(chunks, string([]byte{'Y', dataDigit}))
			if c.data.SamplePoint != 0 {
				chunks = append(chunks, sprintDecChunk('P', uint32(c.data.SamplePoint)))
			}
		} else {
			chunks = append(chunks, "Y0")
		}
	} else if fd {
		// FD mode has nothing to enable without the nominal bitrate
		// sequence to carry the Y<digit> chunk.
		return ErrInvalidConfig
	}
	if c.ErrorResetOnOpen() {
		chunks = append(chunks, "F")
	}
	if c.mode&ModeListenOnly != 0 {
		chunks = append(chunks, "L")
	} else {
		chunks = append(chunks, "O")
	}

	if err := c.sendCommand(ctx, buildCommand(c.index, chunks...)); err != nil {
		return err
	}
	c.open.Store(true)
	c.setState(StateErrorActive)
	return nil
}

// Close runs the bus-off command sequence: "C\r", flushed through the
// command rendezvous, then marks the interface down.
func (c *Channel) Close(ctx context.Context) error {
	if !c.IsOpen() {
		return nil
	}
	err := c.sendCommand(ctx, buildCommand(c.index, "C"))
	c.open.Store(false)
	c.setState(StateStopped)
	return err
}
