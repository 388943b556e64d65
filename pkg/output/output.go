// ABOUTME: Audio device boundary interfaces
// ABOUTME: Common contract implemented by the playback backends
package output

import (
	"errors"

	"github.com/emmef/pcmsink/pkg/audio"
)

// ErrStreamClosed is returned by stream operations after Close.
var ErrStreamClosed = errors.New("output: stream closed")

// Device is an audio output backend.
type Device interface {
	// Name identifies the backend ("sim", "oto", "malgo", "portaudio").
	Name() string

	// Supports reports whether the device can play the descriptor at
	// the given rate and channel count.
	Supports(desc audio.Descriptor, rate, channels int) bool

	// OpenStream allocates and starts a playback stream holding at
	// most bufferBytes of queued audio.
	OpenStream(desc audio.Descriptor, rate, channels, bufferBytes int) (Stream, error)
}

// Stream is an open playback stream. Queued bytes are consumed by the
// device's own playback thread; the caller tracks headroom through
// BytesFree and must confirm space before writing.
type Stream interface {
	// BytesFree returns the headroom in the stream buffer.
	BytesFree() int

	// Write queues PCM bytes and returns how many were accepted.
	Write(p []byte) (int, error)

	// Suspend pauses device consumption.
	Suspend() error

	// Resume restarts device consumption.
	Resume() error

	// Reset discards all queued audio and restarts the stream.
	Reset() error

	// SetVolume applies a linear gain in [0, 1].
	SetVolume(gain float64)

	// Close stops the stream and releases the device.
	Close() error
}
