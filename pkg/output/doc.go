// ABOUTME: Audio output package defining the device boundary
// ABOUTME: Provides Device/Stream interfaces and the playback backends
// Package output defines the device boundary the sink drives.
//
// A Device negotiates formats and opens Streams; a Stream owns a
// fixed-capacity queue that the device's playback thread consumes from.
// Backends:
//   - Sim: no hardware, drains from the wall clock or under test control
//   - Oto: ebitengine/oto
//   - Malgo: miniaudio via gen2brain/malgo
//   - PortAudio: gordonklaus/portaudio, behind the portaudio build tag
//
// Example:
//
//	dev := output.NewOto()
//	stream, err := dev.OpenStream(desc, 44100, 2, 88200)
//	n, err := stream.Write(pcm)
package output
