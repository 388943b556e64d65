// ABOUTME: Malgo/miniaudio playback device
// ABOUTME: Data callback drains the ring and applies software gain
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/emmef/pcmsink/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo plays through miniaudio. Gain is applied per sample inside the
// data callback since miniaudio exposes no device-level volume.
type Malgo struct{}

// NewMalgo creates a miniaudio-backed device.
func NewMalgo() *Malgo { return &Malgo{} }

func (d *Malgo) Name() string { return "malgo" }

// Supports accepts the little-endian formats miniaudio plays natively.
func (d *Malgo) Supports(desc audio.Descriptor, rate, channels int) bool {
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

func malgoFormat(desc audio.Descriptor) malgo.FormatType {
	switch {
	case desc.Kind == audio.Float:
		return malgo.FormatF32
	case desc.Bits == 32:
		return malgo.FormatS32
	default:
		return malgo.FormatS16
	}
}

func (d *Malgo) OpenStream(desc audio.Descriptor, rate, channels, bufferBytes int) (Stream, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo context: %w", err)
	}

	s := &malgoStream{
		ring: newRing(bufferBytes),
		ctx:  ctx,
		desc: desc,
	}
	s.gain.Store(1)

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgoFormat(desc)
	config.Playback.Channels = uint32(channels)
	config.SampleRate = uint32(rate)
	config.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, pInput []byte, frameCount uint32) {
			s.fill(pOutput)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, config, callbacks)
	if err != nil {
		uninitContext(ctx)
		return nil, fmt.Errorf("malgo device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		uninitContext(ctx)
		return nil, fmt.Errorf("malgo device start: %w", err)
	}

	s.device = device
	return s, nil
}

func uninitContext(ctx *malgo.AllocatedContext) {
	if err := ctx.Uninit(); err != nil {
		log.Printf("malgo context uninit: %v", err)
	}
	ctx.Free()
}

type malgoStream struct {
	mu     sync.Mutex
	ring   *ring
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	desc   audio.Descriptor
	gain   atomicGain
	closed bool
}

// fill runs on miniaudio's playback thread. Stopping the device waits
// for the in-flight callback, so nothing here may take s.mu.
func (s *malgoStream) fill(p []byte) {
	n := s.ring.ReadBytes(p)
	for i := n; i < len(p); i++ {
		p[i] = 0
	}

	gain := s.gain.Load()
	if gain == 1 {
		return
	}

	switch {
	case s.desc.Kind == audio.Float:
		scaleF32LE(p[:n], gain)
	case s.desc.Bits == 32:
		scaleS32LE(p[:n], gain)
	default:
		scaleS16LE(p[:n], gain)
	}
}

func scaleS16LE(p []byte, gain float64) {
	for i := 0; i+1 < len(p); i += 2 {
		v := int16(binary.LittleEndian.Uint16(p[i:]))
		binary.LittleEndian.PutUint16(p[i:], uint16(int16(float64(v)*gain)))
	}
}

func scaleS32LE(p []byte, gain float64) {
	for i := 0; i+3 < len(p); i += 4 {
		v := int32(binary.LittleEndian.Uint32(p[i:]))
		binary.LittleEndian.PutUint32(p[i:], uint32(int32(float64(v)*gain)))
	}
}

func scaleF32LE(p []byte, gain float64) {
	for i := 0; i+3 < len(p); i += 4 {
		v := math.Float32frombits(binary.LittleEndian.Uint32(p[i:]))
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(v*float32(gain)))
	}
}

func (s *malgoStream) BytesFree() int {
	return s.ring.Free()
}

func (s *malgoStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, ErrStreamClosed
	}
	return s.ring.WriteBytes(p), nil
}

func (s *malgoStream) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("malgo device stop: %w", err)
	}
	return nil
}

func (s *malgoStream) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("malgo device start: %w", err)
	}
	return nil
}

func (s *malgoStream) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStreamClosed
	}
	s.ring.Clear()
	if !s.device.IsStarted() {
		if err := s.device.Start(); err != nil {
			return fmt.Errorf("malgo device start: %w", err)
		}
	}
	return nil
}

func (s *malgoStream) SetVolume(gain float64) {
	s.gain.Store(gain)
}

func (s *malgoStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.device.Stop(); err != nil {
		log.Printf("malgo device stop: %v", err)
	}
	s.device.Uninit()
	uninitContext(s.ctx)
	return nil
}
