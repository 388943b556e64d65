// ABOUTME: Simulated playback device with no hardware behind it
// ABOUTME: Drains its buffer from the wall clock or under test control
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/emmef/pcmsink/pkg/audio"
)

// Sim is a playback device without hardware. With Realtime set, open
// streams consume queued bytes at the nominal byte rate while not
// suspended. With Realtime unset nothing drains on its own and the
// owner models device consumption through SimStream.Consume.
type Sim struct {
	Realtime bool
}

// NewSim returns a simulated device that drains in real time.
func NewSim() *Sim {
	return &Sim{Realtime: true}
}

func (d *Sim) Name() string { return "sim" }

// Supports accepts every format in the descriptor table.
func (d *Sim) Supports(desc audio.Descriptor, rate, channels int) bool {
	return desc.Bits > 0 && rate > 0 && channels > 0
}

func (d *Sim) OpenStream(desc audio.Descriptor, rate, channels, bufferBytes int) (Stream, error) {
	if bufferBytes <= 0 {
		return nil, fmt.Errorf("sim: invalid buffer size %d", bufferBytes)
	}
	return &SimStream{
		ring:        newRing(bufferBytes),
		bytesPerSec: desc.FrameSize(channels) * rate,
		realtime:    d.Realtime,
		gain:        1,
		last:        time.Now(),
	}, nil
}

// SimStream is an open stream on a Sim device. It is exported so tests
// and headless tools can model device consumption directly.
type SimStream struct {
	mu          sync.Mutex
	ring        *ring
	bytesPerSec int
	realtime    bool
	suspended   bool
	closed      bool
	gain        float64
	last        time.Time
	carry       float64
}

// advanceLocked drains bytes owed since the last observation. Callers
// hold mu.
func (s *SimStream) advanceLocked() {
	now := time.Now()
	if !s.realtime || s.suspended {
		s.last = now
		return
	}
	owed := now.Sub(s.last).Seconds()*float64(s.bytesPerSec) + s.carry
	s.last = now
	whole := int(owed)
	s.carry = owed - float64(whole)
	s.ring.Discard(whole)
}

func (s *SimStream) BytesFree() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked()
	return s.ring.Free()
}

func (s *SimStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStreamClosed
	}
	s.advanceLocked()
	return s.ring.WriteBytes(p), nil
}

// Consume models the device playing n queued bytes. A suspended device
// consumes nothing. Returns the bytes actually consumed.
func (s *SimStream) Consume(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suspended || s.closed {
		return 0
	}
	return s.ring.Discard(n)
}

// Buffered returns the queued byte count.
func (s *SimStream) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advanceLocked()
	return s.ring.Buffered()
}

// Gain returns the last gain applied through SetVolume.
func (s *SimStream) Gain() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gain
}

func (s *SimStream) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	s.advanceLocked()
	s.suspended = true
	return nil
}

func (s *SimStream) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	s.suspended = false
	s.last = time.Now()
	return nil
}

func (s *SimStream) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	s.ring.Clear()
	s.carry = 0
	s.last = time.Now()
	s.suspended = false
	return nil
}

func (s *SimStream) SetVolume(gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gain = gain
}

func (s *SimStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
