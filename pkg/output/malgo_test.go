// ABOUTME: Tests for the miniaudio-backed stream
// ABOUTME: Covers the data callback running off the stream mutex
package output

import (
	"testing"
	"time"

	"github.com/emmef/pcmsink/pkg/audio"
)

// Stopping a miniaudio device waits for the in-flight data callback,
// so the callback must finish even while another goroutine holds the
// stream mutex (as Suspend and Close do around device.Stop).
func TestMalgoFillRunsWhileStreamLockHeld(t *testing.T) {
	desc, ok := audio.Describe(audio.FormatS16LE)
	if !ok {
		t.Fatal("S16LE not described")
	}
	s := &malgoStream{ring: newRing(16), desc: desc}
	s.gain.Store(0.5)
	s.ring.WriteBytes([]byte{0x00, 0x10, 0x00, 0x10})

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, 8)
	done := make(chan struct{})
	go func() {
		s.fill(buf)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fill blocked on the stream mutex")
	}

	if got := int16(uint16(buf[0]) | uint16(buf[1])<<8); got != 0x0800 {
		t.Fatalf("gain not applied: got %#x, want 0x0800", got)
	}
	for i := 4; i < 8; i++ {
		if buf[i] != 0 {
			t.Fatalf("underrun byte %d not silenced: %#x", i, buf[i])
		}
	}
}

func TestMalgoSetVolumeVisibleToCallback(t *testing.T) {
	desc, _ := audio.Describe(audio.FormatS16LE)
	s := &malgoStream{ring: newRing(16), desc: desc}
	s.gain.Store(1)
	s.SetVolume(0)

	s.ring.WriteBytes([]byte{0x00, 0x10})
	buf := make([]byte, 2)
	s.fill(buf)
	if buf[0] != 0 || buf[1] != 0 {
		t.Fatalf("muted callback produced %#x %#x", buf[0], buf[1])
	}
}
