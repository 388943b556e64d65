//go:build portaudio

// ABOUTME: PortAudio playback device behind the portaudio build tag
// ABOUTME: Callback stream drains the ring with software gain
package output

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/emmef/pcmsink/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio plays through the portaudio library. Build with
// -tags portaudio and a system PortAudio installation.
type PortAudio struct {
	initOnce sync.Once
	initErr  error
}

// NewPortAudio creates a PortAudio-backed device.
func NewPortAudio() *PortAudio { return &PortAudio{} }

func (d *PortAudio) Name() string { return "portaudio" }

// Supports accepts the little-endian formats portaudio plays natively.
func (d *PortAudio) Supports(desc audio.Descriptor, rate, channels int) bool {
	if rate <= 0 || channels <= 0 || desc.Order != audio.LittleEndian {
		return false
	}
	switch {
	case desc.Kind == audio.SignedInt && (desc.Bits == 16 || desc.Bits == 32):
		return true
	case desc.Kind == audio.Float && desc.Bits == 32:
		return true
	}
	return false
}

func (d *PortAudio) OpenStream(desc audio.Descriptor, rate, channels, bufferBytes int) (Stream, error) {
	d.initOnce.Do(func() {
		d.initErr = portaudio.Initialize()
	})
	if d.initErr != nil {
		return nil, fmt.Errorf("portaudio initialize: %w", d.initErr)
	}

	s := &portaudioStream{ring: newRing(bufferBytes)}
	s.gain.Store(1)

	var stream *portaudio.Stream
	var err error
	switch {
	case desc.Kind == audio.Float:
		stream, err = portaudio.OpenDefaultStream(0, channels, float64(rate), 0, s.fillF32)
	case desc.Bits == 32:
		stream, err = portaudio.OpenDefaultStream(0, channels, float64(rate), 0, s.fillS32)
	default:
		stream, err = portaudio.OpenDefaultStream(0, channels, float64(rate), 0, s.fillS16)
	}
	if err != nil {
		return nil, fmt.Errorf("portaudio open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("portaudio start stream: %w", err)
	}

	s.stream = stream
	return s, nil
}

type portaudioStream struct {
	mu      sync.Mutex
	ring    *ring
	stream  *portaudio.Stream
	gain    atomicGain
	scratch []byte
	closed  bool
}

// take reads n bytes from the ring into the scratch buffer,
// zero-filling on underrun. Runs on the portaudio callback thread;
// stopping the stream waits for the in-flight callback, so the
// callback path never takes s.mu.
func (s *portaudioStream) take(n int) []byte {
	if cap(s.scratch) < n {
		s.scratch = make([]byte, n)
	}
	buf := s.scratch[:n]
	read := s.ring.ReadBytes(buf)
	for i := read; i < n; i++ {
		buf[i] = 0
	}
	return buf
}

func (s *portaudioStream) fillS16(out []int16) {
	buf := s.take(len(out) * 2)
	gain := s.gain.Load()
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		out[i] = int16(float64(v) * gain)
	}
}

func (s *portaudioStream) fillS32(out []int32) {
	buf := s.take(len(out) * 4)
	gain := s.gain.Load()
	for i := range out {
		v := int32(binary.LittleEndian.Uint32(buf[i*4:]))
		out[i] = int32(float64(v) * gain)
	}
}

func (s *portaudioStream) fillF32(out []float32) {
	buf := s.take(len(out) * 4)
	gain := float32(s.gain.Load())
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])) * gain
	}
}

func (s *portaudioStream) BytesFree() int {
	return s.ring.Free()
}

func (s *portaudioStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, ErrStreamClosed
	}
	return s.ring.WriteBytes(p), nil
}

func (s *portaudioStream) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("portaudio stop: %w", err)
	}
	return nil
}

func (s *portaudioStream) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("portaudio start: %w", err)
	}
	return nil
}

func (s *portaudioStream) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	s.ring.Clear()
	return nil
}

func (s *portaudioStream) SetVolume(gain float64) {
	s.gain.Store(gain)
}

func (s *portaudioStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("portaudio stop: %w", err)
	}
	return s.stream.Close()
}
