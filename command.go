package slcanx

import (
	"bytes"
	"context"
	"time"
)

const commandTimeout = 1 * time.Second

// buildCommand assembles the byte sequence for a \r-separated command,
// prefixing each chunk with the channel digit when idx is nonzero
// (spec.md §4.4 step 1).
func buildCommand(idx int, chunks ...string) []byte {
	var buf bytes.Buffer
	for _, chunk := range chunks {
		if idx != 0 {
			buf.WriteByte(byte('0' + idx))
		}
		buf.WriteString(chunk)
		buf.WriteByte('\r')
	}
	return buf.Bytes()
}

// sendCommand runs one command rendezvous on c's port: it writes cmd to
// the outbound buffer after anything already queued for frames,
// blocks until the drain task reports completion, and returns
// ErrCommandTimeout or ErrCommandInterrupted if it does not (spec.md
// §4.4). Only one command may be in flight per port at a time.
func (c *Channel) sendCommand(ctx context.Context, cmd []byte) error {
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
	if len(cmd) > p.out.Space() {
		p.mu.Unlock()
		return ErrBusy
	}
	if p.batchTimer != nil {
		p.batchTimer.Stop()
	}
	if !p.out.Append(cmd) {
		p.mu.Unlock()
		return ErrBusy
	}
	p.txChan = c
	wake := make(chan struct{})
	p.cmdWake = wake
	p.commandInFl = true
	if p.transport != nil {
		p.transport.SetWriteWakeup(true)
	}
	doneNow, _ := p.drainLocked()
	p.mu.Unlock()

	if doneNow {
		return nil
	}

	timer := time.NewTimer(commandTimeout)
	defer timer.Stop()
	select {
	case <-wake:
		return nil
	case <-ctx.Done():
		p.mu.Lock()
		interrupted := p.commandInFl
		if interrupted {
			p.commandInFl = false
			p.cmdWake = nil
		}
		p.mu.Unlock()
		if interrupted {
			return ErrCommandInterrupted
		}
		return nil
	case <-timer.C:
		p.mu.Lock()
		timedOut := p.commandInFl
		if timedOut {
			p.commandInFl = false
			p.cmdWake = nil
		}
		p.mu.Unlock()
		if timedOut {
			return ErrCommandTimeout
		}
		// the drain task completed the command between the timer firing
		// and us acquiring the lock
		return nil
	}
}

// pendingQuery tracks a query command (q/Q/N) awaiting its reply line.
// Only one may be outstanding per port, same as the command rendezvous
// it rides on.
type pendingQuery struct {
	letter byte
	result chan string
}

// dispatchQueryReply delivers a decoded query-reply line to the
// outstanding pendingQuery, if its leading letter matches.
func (p *Port) dispatchQueryReply(line []byte) {
	p.mu.Lock()
	pq := p.queryWait
	if pq == nil || len(line) == 0 || line[0] != pq.letter {
		p.mu.Unlock()
		return
	}
	p.queryWait = nil
	p.mu.Unlock()
	select {
	case pq.result <- string(line):
	default:
	}
}

// query sends a query command and waits for its reply line, verbatim,
// as spec.md §6 describes for q/Q/N.
func (c *Channel) query(ctx context.Context, letter byte, chunk string) (string, error) {
	p := c.port
	if p == nil {
		return "", ErrNoDevice
	}

	p.mu.Lock()
	if p.queryWait != nil {
		p.mu.Unlock()
		return "", ErrBusy
	}
	result := make(chan string, 1)
	p.queryWait = &pendingQuery{letter: letter, result: result}
	p.mu.Unlock()

	cmd := buildCommand(c.index, chunk)
	if err := c.sendCommand(ctx, cmd); err != nil {
		p.mu.Lock()
		if p.queryWait != nil && p.queryWait.result == result {
			p.queryWait = nil
		}
		p.mu.Unlock()
		return "", err
	}

	timer := time.NewTimer(commandTimeout)
	defer timer.Stop()
	select {
	case reply := <-result:
		return reply, nil
	case <-ctx.Done():
		p.mu.Lock()
		if p.queryWait != nil && p.queryWait.result == result {
			p.queryWait = nil
		}
		p.mu.Unlock()
		return "", ErrCommandInterrupted
	case <-timer.C:
		p.mu.Lock()
		if p.queryWait != nil && p.queryWait.result == result {
			p.queryWait = nil
		}
		p.mu.Unlock()
		return "", ErrCommandTimeout
	}
}
