//go:build !portaudio

// ABOUTME: PortAudio stub when the library is not available
// ABOUTME: Keeps the constructor compiling when the tag is off
package output

import (
	"fmt"

	"github.com/emmef/pcmsink/pkg/audio"
)

// PortAudio device (stub).
type PortAudio struct{}

// NewPortAudio creates a PortAudio-backed device. Without the
// portaudio build tag every open fails.
func NewPortAudio() *PortAudio { return &PortAudio{} }

func (d *PortAudio) Name() string { return "portaudio" }

func (d *PortAudio) Supports(desc audio.Descriptor, rate, channels int) bool {
	return false
}

func (d *PortAudio) OpenStream(desc audio.Descriptor, rate, channels, bufferBytes int) (Stream, error) {
	return nil, fmt.Errorf("portaudio support not enabled (build with -tags portaudio)")
}
