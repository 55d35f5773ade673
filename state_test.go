package slcanx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchStateTransition(t *testing.T) {
	p, _ := newTestPort()
	ch := p.slots[0]
	sink := &recordingSink{}
	ch.Sink = sink

	p.dispatchState(ch, []byte("sa057033"))

	assert.Equal(t, StateErrorActive, ch.State())
	require.Len(t, sink.errorFrames, 1)
	assert.EqualValues(t, 33, sink.errorFrames[0].Data[6])
	assert.EqualValues(t, 57, sink.errorFrames[0].Data[7])
	require.Len(t, sink.stateChanges, 1)
	// txcount(33) < rxcount(57): rx-state changes, tx-state does not.
	assert.Nil(t, sink.stateChanges[0][0])
	require.NotNil(t, sink.stateChanges[0][1])
}

func TestDispatchStateNoOpWhenUnchanged(t *testing.T) {
	p, _ := newTestPort()
	ch := p.slots[0]
	ch.setState(StateErrorActive)
	sink := &recordingSink{}
	ch.Sink = sink

	p.dispatchState(ch, []byte("sa057033"))

	assert.Empty(t, sink.errorFrames)
}

func TestDispatchStateBusOffInvokesHook(t *testing.T) {
	p, _ := newTestPort()
	ch := p.slots[0]
	sink := &recordingSink{}
	ch.Sink = sink

	p.dispatchState(ch, []byte("sb000000"))

	assert.Equal(t, StateBusOff, ch.State())
	assert.Equal(t, 1, sink.busOffs)
}

func TestDispatchLegacyErrorOverwritesOverflowBit(t *testing.T) {
	p, _ := newTestPort()
	ch := p.slots[0]
	sink := &recordingSink{}
	ch.Sink = sink

	p.dispatchLegacyError(ch, []byte("e3aoO"))

	require.Len(t, sink.errorFrames, 1)
	ef := sink.errorFrames[0]
	// 'a' sets ACK, 'o' then 'O' each assign Data[1] directly; the last
	// tag processed ('O', tx overrun) wins.
	assert.Equal(t, CtrlTxOverflow, ef.Data[1])
	assert.NotZero(t, ef.Flags&ErrAck)
	assert.EqualValues(t, 1, ch.Counters.RxOverflows.Load())
	assert.EqualValues(t, 1, ch.Counters.TxErrors.Load())
}

func TestDispatchLegacyErrorRejectsLenDigitNine(t *testing.T) {
	p, _ := newTestPort()
	ch := p.slots[0]
	sink := &recordingSink{}
	ch.Sink = sink

	p.dispatchLegacyError(ch, []byte("e9aaaaaaaaa"))

	assert.Empty(t, sink.errorFrames)
}

func TestDispatchLegacyErrorUnknownTagAbortsRecord(t *testing.T) {
	p, _ := newTestPort()
	ch := p.slots[0]
	sink := &recordingSink{}
	ch.Sink = sink

	p.dispatchLegacyError(ch, []byte("e2az"))

	assert.Empty(t, sink.errorFrames)
	assert.Zero(t, ch.Counters.TxErrors.Load())
}

func TestDispatchStructuredErrorORsOverflowBits(t *testing.T) {
	p, _ := newTestPort()
	ch := p.slots[0]
	sink := &recordingSink{}
	ch.Sink = sink

	// status=1 (warning), protoerr=0, fw=09 (rx-overflow | extra rx-overflow), tx=02, rx=03
	p.dispatchStructuredError(ch, []byte("E10090203"))

	require.Len(t, sink.errorFrames, 1)
	ef := sink.errorFrames[0]
	assert.Equal(t, CtrlRxOverflow, ef.Data[1])
	assert.EqualValues(t, 2, ef.Data[6])
	assert.EqualValues(t, 3, ef.Data[7])
	assert.Equal(t, StateErrorWarning, ch.State())
	assert.EqualValues(t, 2, ch.Counters.RxOverflows.Load())
}

func TestDispatchStructuredErrorBusOff(t *testing.T) {
	p, _ := newTestPort()
	ch := p.slots[0]
	sink := &recordingSink{}
	ch.Sink = sink

	p.dispatchStructuredError(ch, []byte("E30000000"))

	assert.Equal(t, StateBusOff, ch.State())
	assert.Equal(t, 1, sink.busOffs)
}
