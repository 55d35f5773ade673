package slcanx

// ReceiveBytes feeds raw bytes from the transport through the de-escape
// state machine (spec.md §4.2). corrupt, if non-nil, must be the same
// length as data; a true at index i marks data[i] as reported corrupt by
// the transport.
func (p *Port) ReceiveBytes(data []byte, corrupt []bool) {
	for i, b := range data {
		if corrupt != nil && corrupt[i] {
			p.receiveCorruptByte()
			continue
		}
		p.receiveByte(b)
	}
}

func (p *Port) receiveCorruptByte() {
	if !p.inboundErr {
		p.inboundErr = true
		if ch := p.firstChannel(); ch != nil {
			ch.Counters.RxErrors.Add(1)
		}
	}
}

func (p *Port) receiveByte(b byte) {
	if b == '\r' || b == '\a' {
		hadError := p.inboundErr
		p.inboundErr = false
		n := p.lineLen
		p.lineLen = 0
		if !hadError && n > 4 {
			p.dispatchLine(p.line[:n])
		}
		return
	}

	if p.inboundErr {
		return
	}
	if p.lineLen >= len(p.line) {
		p.inboundErr = true
		if ch := p.firstChannel(); ch != nil {
			ch.Counters.RxOverflows.Add(1)
		}
		return
	}
	p.line[p.lineLen] = b
	p.lineLen++
}

// selectChannel implements spec.md §4.2's channel-selection rule,
// returning the selected channel and the number of leading bytes of line
// that were consumed as a channel prefix.
func (p *Port) selectChannel(line []byte) (*Channel, int) {
	var ch *Channel
	prefixLen := 0
	if line[0] >= '0' && line[0] < byte('0'+MaxChannels) {
		prefixLen = 1
		ch = p.slots[line[0]-'0']
	} else {
		ch = p.firstChannel()
	}
	if ch == nil {
		ch = p.firstChannel()
	}
	return ch, prefixLen
}

func (p *Port) dispatchLine(line []byte) {
	ch, prefixLen := p.selectChannel(line)
	if ch == nil {
		return
	}
	if prefixLen > 0 {
		line = line[prefixLen:]
	}
	if len(line) == 0 {
		return
	}

	switch line[0] {
	case 't', 'T', 'r', 'R', 'd', 'D', 'b', 'B':
		p.dispatchFrame(ch, line)
	case 's':
		p.dispatchState(ch, line)
	case 'e':
		p.dispatchLegacyError(ch, line)
	case 'E':
		p.dispatchStructuredError(ch, line)
	case 'q', 'Q', 'N':
		p.dispatchQueryReply(line)
	default:
		// unknown record kind, dropped silently
	}
}

func (p *Port) dispatchFrame(ch *Channel, line []byte) {
	f, err := DecodeFrame(line)
	if err != nil {
		ch.Counters.RxErrors.Add(1)
		return
	}
	ch.Counters.RxPackets.Add(1)
	if !f.Kind.remote() {
		ch.Counters.RxBytes.Add(uint64(f.Length))
	}
	if ch.Sink != nil {
		ch.Sink.HandleFrame(f)
	}
}
