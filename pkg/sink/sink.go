// ABOUTME: AudioSink entry point: format negotiation and volume surface
// ABOUTME: Opens at most one playback session at a time
package sink

import (
	"fmt"
	"log"
	"sync"

	"github.com/emmef/pcmsink/pkg/audio"
	"github.com/emmef/pcmsink/pkg/output"
	"github.com/google/uuid"
)

const (
	settingsSection = "output"
	keyVolLeft      = "vol_left"
	keyVolRight     = "vol_right"
	keyBufferMs     = "buffer_ms"
)

// DefaultBufferMs sizes the device buffer when settings carry no
// override.
const DefaultBufferMs = 500

// ErrorReporter receives user-visible failure messages. Negotiation
// failures are reported exactly once per failed Open.
type ErrorReporter func(msg string)

// Settings is the persisted-configuration collaborator. The sink reads
// the buffer size and stores the stereo volume through it.
type Settings interface {
	GetInt(section, key string) int
	SetInt(section, key string, value int)
	SetDefault(section, key string, value int)
}

// Sink negotiates formats against a device backend and hands out
// playback sessions.
type Sink struct {
	mu       sync.Mutex
	device   output.Device
	settings Settings
	report   ErrorReporter
	session  *Session
}

// Option configures a Sink.
type Option func(*Sink)

// WithSettings replaces the default in-memory settings store.
func WithSettings(s Settings) Option {
	return func(k *Sink) { k.settings = s }
}

// WithErrorReporter replaces the default log-based reporter.
func WithErrorReporter(r ErrorReporter) Option {
	return func(k *Sink) { k.report = r }
}

// New creates a sink over the given device backend.
func New(device output.Device, opts ...Option) *Sink {
	s := &Sink{
		device:   device,
		settings: newMemorySettings(),
		report: func(msg string) {
			log.Printf("audio error: %s", msg)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.settings.SetDefault(settingsSection, keyVolLeft, 100)
	s.settings.SetDefault(settingsSection, keyVolRight, 100)
	s.settings.SetDefault(settingsSection, keyBufferMs, DefaultBufferMs)
	return s
}

// GetVolume returns the persisted left/right volume on the 0-100 scale.
func (s *Sink) GetVolume() (left, right int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volumeLocked()
}

func (s *Sink) volumeLocked() (left, right int) {
	left = s.settings.GetInt(settingsSection, keyVolLeft)
	right = s.settings.GetInt(settingsSection, keyVolRight)
	return left, right
}

// SetVolume persists the volume and applies the derived linear gain to
// the open session, if any.
func (s *Sink) SetVolume(left, right int) {
	left = audio.ClampVolume(left)
	right = audio.ClampVolume(right)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.SetInt(settingsSection, keyVolLeft, left)
	s.settings.SetInt(settingsSection, keyVolRight, right)
	if s.session != nil {
		s.session.setGain(audio.LinearGain(left, right))
	}
}

// Open negotiates the format, allocates the device stream sized from
// the configured buffer latency and returns the session. Only one
// session may be open at a time.
func (s *Sink) Open(format audio.Format, rate, channels int) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && !s.session.isClosed() {
		return nil, ErrSessionBusy
	}

	desc, ok := audio.Describe(format)
	if !ok {
		s.report(fmt.Sprintf("The requested audio format %s is unsupported.", format))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if !s.device.Supports(desc, rate, channels) {
		s.report(fmt.Sprintf("Format %s %dHz %dch not supported by the %s device.",
			format, rate, channels, s.device.Name()))
		return nil, fmt.Errorf("%w: %s %dHz %dch on %s",
			ErrFormatRejected, format, rate, channels, s.device.Name())
	}

	bufferMs := s.settings.GetInt(settingsSection, keyBufferMs)
	if bufferMs <= 0 {
		bufferMs = DefaultBufferMs
	}
	capacity := desc.BytesPerSample() * channels * (bufferMs * rate / 1000)

	stream, err := s.device.OpenStream(desc, rate, channels, capacity)
	if err != nil {
		s.report(fmt.Sprintf("Cannot open the %s device: %v.", s.device.Name(), err))
		return nil, fmt.Errorf("open %s stream: %w", s.device.Name(), err)
	}

	sess := &Session{
		id:            uuid.New(),
		stream:        stream,
		rate:          rate,
		channels:      channels,
		bytesPerFrame: desc.FrameSize(channels),
		capacity:      capacity,
		wake:          make(chan struct{}),
	}

	left, right := s.volumeLocked()
	stream.SetVolume(audio.LinearGain(left, right))

	s.session = sess
	log.Printf("Opened session %s: %s %dHz %dch, buffer %d bytes (%dms)",
		sess.id, format, rate, channels, capacity, bufferMs)
	return sess, nil
}
