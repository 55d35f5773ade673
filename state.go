package slcanx

// stateFromChar maps a bus-state record's state character to a BusState,
// per spec.md §4.5.
func stateFromChar(c byte) (BusState, bool) {
	switch c {
	case 'a':
		return StateErrorActive, true
	case 'w':
		return StateErrorWarning, true
	case 'p':
		return StateErrorPassive, true
	case 'b':
		return StateBusOff, true
	default:
		return 0, false
	}
}

func parseDec3(b []byte) (int, bool) {
	if len(b) != 3 {
		return 0, false
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// dispatchState decodes a bus-state record ("s<state><rxcnt:3><txcnt:3>").
func (p *Port) dispatchState(ch *Channel, line []byte) {
	if len(line) < 8 {
		return
	}
	newState, ok := stateFromChar(line[1])
	if !ok {
		return
	}
	rxcount, ok := parseDec3(line[2:5])
	if !ok {
		return
	}
	txcount, ok := parseDec3(line[5:8])
	if !ok {
		return
	}

	if newState == ch.State() {
		return
	}

	var txs, rxs *BusState
	if txcount >= rxcount {
		s := newState
		txs = &s
	}
	if txcount <= rxcount {
		s := newState
		rxs = &s
	}
	ch.setState(newState)

	ef := ErrorFrame{Flags: ErrCnt}
	ef.Data[6] = byte(txcount)
	ef.Data[7] = byte(rxcount)

	if ch.Sink != nil {
		ch.Sink.HandleErrorFrame(ef)
		ch.Sink.HandleStateChange(txs, rxs)
		if newState == StateBusOff {
			ch.Sink.HandleBusOff()
		}
	}
}

// dispatchLegacyError decodes a legacy error record ("e<n><tag>...<tag>").
// The overflow tags 'o'/'O' overwrite Data[1] rather than OR it in,
// mirroring the imprecision of the original decoder (spec.md §9).
func (p *Port) dispatchLegacyError(ch *Channel, line []byte) {
	if len(line) < 2 {
		return
	}
	lenDigit := line[1]
	if lenDigit < '0' || lenDigit >= '9' {
		return
	}
	n := int(lenDigit - '0')
	if len(line) < 2+n {
		return
	}

	ef := ErrorFrame{Flags: ErrProt | ErrBusError}
	var rxErr, rxOver, txErr bool

	for i := 0; i < n; i++ {
		switch line[2+i] {
		case 'a':
			txErr = true
			ef.Flags |= ErrAck
			ef.Data[3] = ProtLocACK
		case 'b':
			txErr = true
			ef.Data[2] |= ProtBit0
		case 'B':
			txErr = true
			ef.Data[2] |= ProtBit1
		case 'c':
			rxErr = true
			ef.Data[2] |= ProtBit
			ef.Data[3] = ProtLocCRCSeq
		case 'f':
			rxErr = true
			ef.Data[2] |= ProtForm
		case 'o':
			rxErr = true
			rxOver = true
			ef.Flags |= ErrCtrl
			ef.Data[1] = CtrlRxOverflow
		case 'O':
			txErr = true
			ef.Flags |= ErrCtrl
			ef.Data[1] = CtrlTxOverflow
		case 's':
			rxErr = true
			ef.Data[2] |= ProtStuff
		default:
			return
		}
	}

	if rxErr {
		ch.Counters.RxErrors.Add(1)
	}
	if rxOver {
		ch.Counters.RxOverflows.Add(1)
	}
	if txErr {
		ch.Counters.TxErrors.Add(1)
	}
	if ch.Sink != nil {
		ch.Sink.HandleErrorFrame(ef)
	}
}

// dispatchStructuredError decodes a structured error record
// ("E<status><protoerr><fw:2hex><txcnt:2hex><rxcnt:2hex>"), 9 characters
// including the leading 'E'.
func (p *Port) dispatchStructuredError(ch *Channel, line []byte) {
	if len(line) < 9 {
		return
	}

	var newState BusState
	switch line[1] {
	case '0':
		newState = StateErrorActive
	case '1':
		newState = StateErrorWarning
	case '2':
		newState = StateErrorPassive
	case '3':
		newState = StateBusOff
	default:
		return
	}

	var ef ErrorFrame
	switch line[2] {
	case '0':
		// no protocol error
	case '1':
		ef.Flags |= ErrProt
		ef.Data[2] |= ProtStuff
	case '2':
		ef.Flags |= ErrProt
		ef.Data[2] |= ProtForm
	case '3':
		ef.Flags |= ErrProt | ErrAck
		ef.Data[3] = ProtLocACK
	case '4':
		ef.Flags |= ErrProt
		ef.Data[2] |= ProtBit1
	case '5':
		ef.Flags |= ErrProt
		ef.Data[2] |= ProtBit0
	case '6':
		ef.Flags |= ErrProt
		ef.Data[2] |= ProtBit
		ef.Data[3] = ProtLocCRCSeq
	default:
		return
	}

	fw, ok := hexByte(line[3], line[4])
	if !ok {
		return
	}
	tx, ok := hexByte(line[5], line[6])
	if !ok {
		return
	}
	rx, ok := hexByte(line[7], line[8])
	if !ok {
		return
	}

	var rxOverflows, txOverflows int
	if fw&0x01 != 0 {
		ef.Flags |= ErrCtrl
		ef.Data[1] |= CtrlRxOverflow
		rxOverflows++
	}
	if fw&0x04 != 0 {
		ef.Flags |= ErrCtrl
		ef.Data[1] |= CtrlTxOverflow
		txOverflows++
	}
	if fw&0x08 != 0 {
		ef.Flags |= ErrCtrl
		ef.Data[1] |= CtrlRxOverflow
		rxOverflows++
	}

	ef.Flags |= ErrCnt
	ef.Data[6] = tx
	ef.Data[7] = rx

	for i := 0; i < rxOverflows; i++ {
		ch.Counters.RxOverflows.Add(1)
	}
	for i := 0; i < txOverflows; i++ {
		ch.Counters.TxErrors.Add(1)
	}

	changed := newState != ch.State()
	if changed {
		ch.setState(newState)
	}

	if ch.Sink != nil {
		ch.Sink.HandleErrorFrame(ef)
		if changed {
			s := newState
			ch.Sink.HandleStateChange(&s, &s)
		}
		if changed && newState == StateBusOff {
			ch.Sink.HandleBusOff()
		}
	}
}
