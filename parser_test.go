package slcanx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiveBytesDispatchesFrameToSelectedChannel(t *testing.T) {
	p, _ := newTestPort()
	sink1 := &recordingSink{}
	p.slots[1].Sink = sink1

	p.ReceiveBytes([]byte("1t1230\r"), nil)

	require.Len(t, sink1.frames, 1)
	assert.Equal(t, uint32(0x123), sink1.frames[0].ID)
	assert.EqualValues(t, 1, p.slots[1].Counters.RxPackets.Load())
}

func TestReceiveBytesFallsBackToFirstChannelWithoutPrefix(t *testing.T) {
	p, _ := newTestPort()
	sink0 := &recordingSink{}
	p.slots[0].Sink = sink0

	p.ReceiveBytes([]byte("t1230\r"), nil)

	require.Len(t, sink0.frames, 1)
}

func TestReceiveBytesFallsBackToFirstChannelOnUnknownDigit(t *testing.T) {
	p, _ := newTestPort()
	p.slots[2] = nil
	p.slots[3] = nil
	sink0 := &recordingSink{}
	p.slots[0].Sink = sink0

	p.ReceiveBytes([]byte("2t1230\r"), nil)

	require.Len(t, sink0.frames, 1)
}

func TestReceiveBytesDropsShortLines(t *testing.T) {
	p, _ := newTestPort()
	sink0 := &recordingSink{}
	p.slots[0].Sink = sink0

	p.ReceiveBytes([]byte("t1\r"), nil)

	assert.Empty(t, sink0.frames)
}

func TestReceiveBytesOverflowSetsInboundErrAndCounts(t *testing.T) {
	p, _ := newTestPort()
	overflow := make([]byte, len(p.line)+10)
	for i := range overflow {
		overflow[i] = 'A'
	}
	p.ReceiveBytes(overflow, nil)
	assert.EqualValues(t, 1, p.slots[0].Counters.RxOverflows.Load())

	// The terminator after an overflow must not dispatch a line.
	sink0 := &recordingSink{}
	p.slots[0].Sink = sink0
	p.ReceiveBytes([]byte("\rt1230\r"), nil)
	require.Len(t, sink0.frames, 1)
}

func TestReceiveBytesCorruptByteSuppressesLine(t *testing.T) {
	p, _ := newTestPort()
	sink0 := &recordingSink{}
	p.slots[0].Sink = sink0

	data := []byte("t1230\r")
	corrupt := make([]bool, len(data))
	corrupt[1] = true
	p.ReceiveBytes(data, corrupt)

	assert.Empty(t, sink0.frames)
	assert.EqualValues(t, 1, p.slots[0].Counters.RxErrors.Load())
}

func TestDispatchFrameCountsDecodeErrors(t *testing.T) {
	p, _ := newTestPort()
	p.ReceiveBytes([]byte("tZZZZ\r"), nil)
	assert.EqualValues(t, 1, p.slots[0].Counters.RxErrors.Load())
}
