// ABOUTME: Playback session: write/wait coordination, clock and transport
// ABOUTME: A single mutex orders transport transitions against writes
package sink

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/emmef/pcmsink/pkg/output"
	"github.com/google/uuid"
)

// pollInterval bounds how long a waiter sleeps before re-checking
// headroom. Transport transitions wake waiters earlier.
const pollInterval = 50 * time.Millisecond

// Session is one open playback stream. All mutable state is guarded by
// mu; wake is closed and swapped on every transport transition so a
// blocked waiter never observes stale pause or clock state.
type Session struct {
	mu            sync.Mutex
	id            uuid.UUID
	stream        output.Stream
	rate          int
	channels      int
	bytesPerFrame int
	capacity      int
	framesWritten int64
	paused        bool
	closed        bool
	wake          chan struct{}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() uuid.UUID { return s.id }

// Rate returns the session sample rate in Hz.
func (s *Session) Rate() int { return s.rate }

// Channels returns the session channel count.
func (s *Session) Channels() int { return s.channels }

// FrameSize returns the bytes in one frame.
func (s *Session) FrameSize() int { return s.bytesPerFrame }

// Capacity returns the device buffer capacity in bytes.
func (s *Session) Capacity() int { return s.capacity }

// Paused reports whether the session is suspended.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// broadcastLocked wakes every blocked waiter. Callers hold mu.
func (s *Session) broadcastLocked() {
	close(s.wake)
	s.wake = make(chan struct{})
}

// BufferFree returns the stream headroom in bytes. Safe to call
// concurrently with writes.
func (s *Session) BufferFree() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrNotOpen
	}
	return s.stream.BytesFree(), nil
}

// PeriodWait blocks until the stream has headroom. Sleeps are bounded
// by the poll interval; pause, flush and close wake it early.
func (s *Session) PeriodWait() error {
	s.mu.Lock()
	for {
		if s.closed {
			s.mu.Unlock()
			return ErrNotOpen
		}
		if s.stream.BytesFree() > 0 {
			s.mu.Unlock()
			return nil
		}
		wake := s.wake
		s.mu.Unlock()
		select {
		case <-wake:
		case <-time.After(pollInterval):
		}
		s.mu.Lock()
	}
}

// Write queues PCM bytes and advances the frame counter by the bytes
// accepted. The caller confirms headroom first; frame alignment is the
// caller's responsibility.
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrNotOpen
	}
	n, err := s.stream.Write(data)
	s.framesWritten += int64(n / s.bytesPerFrame)
	if err != nil {
		return n, fmt.Errorf("stream write: %w", err)
	}
	return n, nil
}

// Drain blocks until everything queued has been consumed by the
// device. A flush empties the queue and releases it immediately.
func (s *Session) Drain() error {
	s.mu.Lock()
	for {
		if s.closed {
			s.mu.Unlock()
			return ErrNotOpen
		}
		if s.stream.BytesFree() >= s.capacity {
			s.mu.Unlock()
			return nil
		}
		wake := s.wake
		s.mu.Unlock()
		select {
		case <-wake:
		case <-time.After(pollInterval):
		}
		s.mu.Lock()
	}
}

// OutputTime returns elapsed playback in milliseconds, counting frames
// the device has consumed rather than frames merely queued. The
// snapshot of the frame counter and headroom is taken under one lock.
func (s *Session) OutputTime() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrNotOpen
	}
	queued := int64((s.capacity - s.stream.BytesFree()) / s.bytesPerFrame)
	return int((s.framesWritten - queued) * 1000 / int64(s.rate)), nil
}

// Pause suspends or resumes device consumption and wakes blocked
// waiters so they re-check against the new state.
func (s *Session) Pause(pause bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotOpen
	}
	var err error
	if pause {
		err = s.stream.Suspend()
	} else {
		err = s.stream.Resume()
	}
	if err != nil {
		return fmt.Errorf("pause=%v: %w", pause, err)
	}
	s.paused = pause
	s.broadcastLocked()
	return nil
}

// Flush discards all queued audio and restarts the playback clock at
// timeMs. Used for seeking.
func (s *Session) Flush(timeMs int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotOpen
	}
	if err := s.stream.Reset(); err != nil {
		return fmt.Errorf("stream reset: %w", err)
	}
	s.framesWritten = int64(timeMs) * int64(s.rate) / 1000
	s.paused = false
	s.broadcastLocked()
	return nil
}

// Close stops the stream and releases the device. Blocked waiters
// return ErrNotOpen. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.broadcastLocked()
	log.Printf("Closed session %s", s.id)
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("stream close: %w", err)
	}
	return nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) setGain(gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.stream.SetVolume(gain)
	}
}
