// ABOUTME: Sink error taxonomy
// ABOUTME: Sentinel values matched with errors.Is
package sink

import "errors"

var (
	// ErrUnsupportedFormat means the sample format is outside the
	// supported descriptor table.
	ErrUnsupportedFormat = errors.New("sink: unsupported sample format")

	// ErrFormatRejected means the format is in the table but the
	// active device refused the rate/channel/format combination.
	ErrFormatRejected = errors.New("sink: format rejected by device")

	// ErrNotOpen means the session is closed or was never opened.
	ErrNotOpen = errors.New("sink: session not open")

	// ErrSessionBusy means a session is already open on this sink.
	ErrSessionBusy = errors.New("sink: session already open")
)
