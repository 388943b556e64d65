// ABOUTME: Abstract PCM sample formats and frame arithmetic
// ABOUTME: Maps each format to a device-native descriptor via a fixed table
package audio

import "fmt"

// SampleKind classifies how sample values are encoded.
type SampleKind int

const (
	SignedInt SampleKind = iota
	UnsignedInt
	Float
)

// ByteOrder is the byte order of multi-byte samples.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// Format identifies an abstract PCM sample format as requested by a
// playback engine.
type Format int

const (
	FormatS16LE Format = iota
	FormatS16BE
	FormatU16LE
	FormatU16BE
	FormatS32LE
	FormatS32BE
	FormatU32LE
	FormatU32BE
	FormatF32LE
)

// Descriptor is the device-native description of a sample format.
type Descriptor struct {
	Bits  int
	Kind  SampleKind
	Order ByteOrder
}

// formatTable is the fixed set of formats the sink supports.
var formatTable = map[Format]Descriptor{
	FormatS16LE: {16, SignedInt, LittleEndian},
	FormatS16BE: {16, SignedInt, BigEndian},
	FormatU16LE: {16, UnsignedInt, LittleEndian},
	FormatU16BE: {16, UnsignedInt, BigEndian},
	FormatS32LE: {32, SignedInt, LittleEndian},
	FormatS32BE: {32, SignedInt, BigEndian},
	FormatU32LE: {32, UnsignedInt, LittleEndian},
	FormatU32BE: {32, UnsignedInt, BigEndian},
	FormatF32LE: {32, Float, LittleEndian},
}

// Describe looks up the device descriptor for f. The second return is
// false for formats outside the supported table.
func Describe(f Format) (Descriptor, bool) {
	d, ok := formatTable[f]
	return d, ok
}

// Formats returns every format in the supported table.
func Formats() []Format {
	fs := make([]Format, 0, len(formatTable))
	for f := range formatTable {
		fs = append(fs, f)
	}
	return fs
}

// BytesPerSample returns the storage bytes for one channel sample.
// Widths that are not multiples of 16 bits round down to whole bytes.
func (d Descriptor) BytesPerSample() int {
	return d.Bits/8 + (d.Bits%16)/8
}

// FrameSize returns the bytes in one frame (one sample per channel).
func (d Descriptor) FrameSize(channels int) int {
	return d.BytesPerSample() * channels
}

func (f Format) String() string {
	switch f {
	case FormatS16LE:
		return "S16LE"
	case FormatS16BE:
		return "S16BE"
	case FormatU16LE:
		return "U16LE"
	case FormatU16BE:
		return "U16BE"
	case FormatS32LE:
		return "S32LE"
	case FormatS32BE:
		return "S32BE"
	case FormatU32LE:
		return "U32LE"
	case FormatU32BE:
		return "U32BE"
	case FormatF32LE:
		return "F32LE"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}
