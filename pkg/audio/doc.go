// ABOUTME: Audio fundamentals package providing format types and utilities
// ABOUTME: Defines sample formats, descriptors and the volume curve
// Package audio provides the fundamental PCM types used throughout the
// pcmsink library.
//
// It defines:
//   - Format: abstract sample formats (S16LE, F32LE, ...)
//   - Descriptor: the device-native view of a format (bits, kind, order)
//   - frame arithmetic (bytes per sample, bytes per frame)
//   - the logarithmic volume curve shared by the sink and its backends
//
// Example:
//
//	desc, ok := audio.Describe(audio.FormatS16LE)
//	if !ok {
//	    // format outside the supported table
//	}
//	frameBytes := desc.FrameSize(2) // 4 for 16-bit stereo
package audio
