// ABOUTME: Oto-based playback device
// ABOUTME: Feeds a persistent player from a byte ring, silence on underrun
package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/emmef/pcmsink/pkg/audio"
)

// Oto plays through the ebitengine/oto library. oto allows a single
// context per process, so the first stream pins the sample rate,
// channel count and sample format until the process exits.
type Oto struct{}

// NewOto creates an oto-backed device.
func NewOto() *Oto { return &Oto{} }

var otoShared struct {
	mu       sync.Mutex
	ctx      *oto.Context
	rate     int
	channels int
	format   oto.Format
}

func (d *Oto) Name() string { return "oto" }

// Supports accepts the little-endian formats oto plays natively.
func (d *Oto) Supports(desc audio.Descriptor, rate, channels int) bool {
	if rate <= 0 || channels <= 0 || desc.Order != audio.LittleEndian {
		return false
	}
	switch {
	case desc.Kind == audio.SignedInt && desc.Bits == 16:
		return true
	case desc.Kind == audio.Float && desc.Bits == 32:
		return true
	}
	return false
}

func otoFormat(desc audio.Descriptor) oto.Format {
	if desc.Kind == audio.Float {
		return oto.FormatFloat32LE
	}
	return oto.FormatSignedInt16LE
}

func (d *Oto) OpenStream(desc audio.Descriptor, rate, channels, bufferBytes int) (Stream, error) {
	format := otoFormat(desc)

	otoShared.mu.Lock()
	defer otoShared.mu.Unlock()

	if otoShared.ctx == nil {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: channels,
			Format:       format,
			// A small device-side buffer keeps ring occupancy an
			// honest view of the queue.
			BufferSize: 10 * time.Millisecond,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			return nil, fmt.Errorf("oto context: %w", err)
		}
		<-ready
		otoShared.ctx = ctx
		otoShared.rate = rate
		otoShared.channels = channels
		otoShared.format = format
	} else if otoShared.rate != rate || otoShared.channels != channels || otoShared.format != format {
		return nil, fmt.Errorf("oto allows one context per process: have %dHz/%dch, want %dHz/%dch",
			otoShared.rate, otoShared.channels, rate, channels)
	}

	s := &otoStream{ring: newRing(bufferBytes)}
	s.player = otoShared.ctx.NewPlayer(s)
	s.player.Play()
	return s, nil
}

type otoStream struct {
	mu     sync.Mutex
	ring   *ring
	player *oto.Player
	closed bool
}

// Read feeds the oto player from the ring. Underruns produce silence
// so the player never sees EOF.
func (s *otoStream) Read(p []byte) (int, error) {
	n := s.ring.ReadBytes(p)
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

func (s *otoStream) BytesFree() int {
	return s.ring.Free()
}

func (s *otoStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrStreamClosed
	}
	return s.ring.WriteBytes(p), nil
}

func (s *otoStream) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	s.player.Pause()
	return nil
}

func (s *otoStream) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	s.player.Play()
	return nil
}

// Reset drops the queue. The player's own 10 ms prefetch is not
// recoverable, which stays within the sink's one-buffer flush slack.
func (s *otoStream) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	s.ring.Clear()
	s.player.Play()
	return nil
}

func (s *otoStream) SetVolume(gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.player.SetVolume(gain)
	}
}

func (s *otoStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("oto player close: %w", err)
	}
	return nil
}
