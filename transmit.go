package slcanx

import "time"

// txHeadroom is the free space a Send must see in the
// outbound buffer before it is allowed to proceed (spec.md §4.3). It
// absorbs the size of one worst-case encoded record so the buffer never
// needs mid-record growth.
const txHeadroom = 100

// Send encodes f and queues it for transmission on c. It returns ErrBusy
// if the outbound buffer does not have enough headroom, matching the
// "busy" signal the networking layer would see (spec.md §4.3 step 1).
func (c *Channel) Send(f Frame) error {
	p := c.port
	if p == nil {
		return ErrNoDevice
	}

	p.mu.Lock()
	if p.transport == nil {
		p.mu.Unlock()
		return ErrNoDevice
	}
	if p.commandInFl {
		p.mu.Unlock()
		return ErrBusy
	}
	if p.out.Space() < txHeadroom {
		p.mu.Unlock()
		return ErrBusy
	}

	buf, err := EncodeFrame(make([]byte, 0, 2*len(f.Data)+16), c.index, f)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if !p.out.Append(buf) {
		p.mu.Unlock()
		return ErrBusy
	}
	p.txChan = c
	c.Counters.TxPackets.Add(1)
	if !f.Kind.remote() {
		c.Counters.TxBytes.Add(uint64(f.Length))
	}

	if p.batchWindow > 0 && p.out.Len() < p.out.Cap()-txHeadroom {
		if p.batchTimer == nil {
			p.batchTimer = time.AfterFunc(p.batchWindow, p.onBatchTimer)
		} else {
			p.batchTimer.Reset(p.batchWindow)
		}
		p.mu.Unlock()
		return nil
	}

	if p.batchTimer != nil {
		p.batchTimer.Stop()
	}
	if p.transport != nil {
		p.transport.SetWriteWakeup(true)
	}
	_, wakeCh := p.drainLocked()
	p.mu.Unlock()
	signalCommandDone(wakeCh)
	p.notifyWritable()
	return nil
}

func (p *Port) onBatchTimer() {
	p.mu.Lock()
	if p.transport != nil {
		p.transport.SetWriteWakeup(true)
	}
	_, wakeCh := p.drainLocked()
	p.mu.Unlock()
	signalCommandDone(wakeCh)
	p.notifyWritable()
}

// Writable is invoked by the transport, asynchronously, whenever it has
// room to accept more bytes while a SetWriteWakeup(true) is in effect.
func (p *Port) Writable() {
	p.mu.Lock()
	_, wakeCh := p.drainLocked()
	p.mu.Unlock()
	signalCommandDone(wakeCh)
	p.notifyWritable()
}

// drainLocked is the drain task of spec.md §4.3, run with p.mu held. It
// performs one write attempt and, if the buffer emptied as a result,
// clears the write-wakeup flag so the next Send arms it again and, if a
// command is pending, completes it (returning its wake channel).
func (p *Port) drainLocked() (commandDone bool, wakeCh chan struct{}) {
	if p.transport == nil {
		return false, nil
	}
	if !p.out.Empty() {
		n, err := p.transport.Write(p.out.Pending())
		if err != nil {
			p.logger.Error("transport write failed", "error", err)
		}
		if n > 0 {
			p.out.Advance(n)
		}
	}
	if !p.out.Empty() {
		return false, nil
	}

	p.transport.SetWriteWakeup(false)
	if p.commandInFl {
		p.commandInFl = false
		wakeCh = p.cmdWake
		p.cmdWake = nil
		return true, wakeCh
	}
	return false, nil
}

// drain performs one locked drain attempt and resolves any command that
// completes as a result. Used by Detach to flush the outbound buffer
// without going through Send's batching or wakeup-arming logic.
func (p *Port) drain() {
	p.mu.Lock()
	_, wakeCh := p.drainLocked()
	p.mu.Unlock()
	signalCommandDone(wakeCh)
}

func signalCommandDone(wakeCh chan struct{}) {
	if wakeCh != nil {
		close(wakeCh)
	}
}

// WaitWritable returns a channel that is closed after the next drain
// attempt made by Send, the batch timer or Writable. It is closed whether
// or not that attempt emptied the outbound buffer, so a Send retried after
// it can still return ErrBusy. It stands in for "wake every logical
// interface's send queue" (spec.md §4.3): a Send that returned ErrBusy can
// select on it before retrying.
func (p *Port) WaitWritable() <-chan struct{} {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	if p.writableCh == nil {
		p.writableCh = make(chan struct{})
	}
	return p.writableCh
}

func (p *Port) notifyWritable() {
	p.notifyMu.Lock()
	ch := p.writableCh
	p.writableCh = nil
	p.notifyMu.Unlock()
	if ch != nil {
		close(ch)
	}
}
