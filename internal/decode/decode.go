// ABOUTME: File decoding for the demo player
// ABOUTME: Normalizes WAV and MP3 input to raw S16LE PCM
package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// Track is decoded audio ready for the sink: interleaved signed 16-bit
// little-endian PCM.
type Track struct {
	PCM      []byte
	Rate     int
	Channels int
}

// TotalMs returns the track length in milliseconds.
func (t *Track) TotalMs() int {
	frames := len(t.PCM) / (2 * t.Channels)
	return frames * 1000 / t.Rate
}

// Open decodes the file at path by extension. Supported: .wav, .mp3.
func Open(path string) (*Track, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return openWAV(path)
	case ".mp3":
		return openMP3(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

func openWAV(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("decode wav %s: missing format", path)
	}

	return &Track{
		PCM:      intBufferToS16(buf, int(d.BitDepth)),
		Rate:     buf.Format.SampleRate,
		Channels: buf.Format.NumChannels,
	}, nil
}

// intBufferToS16 converts a go-audio integer buffer of any source bit
// depth to interleaved S16LE bytes.
func intBufferToS16(buf *goaudio.IntBuffer, bitDepth int) []byte {
	pcm := make([]byte, len(buf.Data)*2)
	for i, v := range buf.Data {
		switch bitDepth {
		case 8:
			// wav 8-bit is unsigned
			v = (v - 128) << 8
		case 24:
			v >>= 8
		case 32:
			v >>= 16
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(v)))
	}
	return pcm
}

func openMP3(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decode mp3 %s: %w", path, err)
	}
	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("decode mp3 %s: %w", path, err)
	}

	// go-mp3 always outputs 16-bit stereo at the source rate
	return &Track{PCM: pcm, Rate: d.SampleRate(), Channels: 2}, nil
}
