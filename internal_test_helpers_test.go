package slcanx

import "sync"

// fakeTransport is an in-memory Transport used by this package's tests. By
// default it accepts every byte written so command rendezvous and drain
// paths complete synchronously, which keeps tests deterministic without
// waiting on the real timers.
type fakeTransport struct {
	mu          sync.Mutex
	written     []byte
	wakeArmed   bool
	maxPerWrite int
	stall       bool
}

func (f *fakeTransport) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stall {
		return 0, nil
	}
	n := len(p)
	if f.maxPerWrite > 0 && n > f.maxPerWrite {
		n = f.maxPerWrite
	}
	f.written = append(f.written, p[:n]...)
	return n, nil
}

func (f *fakeTransport) SetWriteWakeup(wake bool) {
	f.mu.Lock()
	f.wakeArmed = wake
	f.mu.Unlock()
}

func (f *fakeTransport) Written() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]byte, len(f.written))
	copy(out, f.written)
	return out
}

// recordingSink captures every NetSink callback for assertions.
type recordingSink struct {
	mu           sync.Mutex
	frames       []Frame
	errorFrames  []ErrorFrame
	stateChanges [][2]*BusState
	busOffs      int
}

func (s *recordingSink) HandleFrame(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

func (s *recordingSink) HandleErrorFrame(ef ErrorFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errorFrames = append(s.errorFrames, ef)
}

func (s *recordingSink) HandleStateChange(tx, rx *BusState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateChanges = append(s.stateChanges, [2]*BusState{tx, rx})
}

func (s *recordingSink) HandleBusOff() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busOffs++
}

// newTestPort builds a Port with all MaxChannels channels pre-allocated and a
// fakeTransport attached, bypassing Attach's Registrar machinery for tests
// that only need the channel slots, not interface registration.
func newTestPort() (*Port, *fakeTransport) {
	p := NewPort(nil)
	tr := &fakeTransport{}
	for i := 0; i < MaxChannels; i++ {
		p.slots[i] = newChannel(p, i)
	}
	p.transport = tr
	return p, tr
}
