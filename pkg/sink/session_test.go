// ABOUTME: Tests for the session write/wait contract, clock and transport
// ABOUTME: Models device consumption through the sim stream
package sink

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmef/pcmsink/pkg/audio"
	"github.com/emmef/pcmsink/pkg/output"
)

// newTestSession opens a 16-bit stereo 44100 Hz session on a manual
// sim device (nothing drains unless the test consumes).
func newTestSession(t *testing.T, bufferMs int) (*Session, *output.SimStream) {
	t.Helper()
	dev := newCaptureDevice()
	snk := New(dev, WithSettings(newTestSettings(bufferMs)))
	session, err := snk.Open(audio.FormatS16LE, 44100, 2)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session, dev.last
}

func frames(n int) []byte { return make([]byte, n*4) }

func TestBufferFreeIdempotent(t *testing.T) {
	session, _ := newTestSession(t, 500)

	_, err := session.Write(frames(1000))
	require.NoError(t, err)

	first, err := session.BufferFree()
	require.NoError(t, err)
	second, err := session.BufferFree()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 88200-4000, first)
}

func TestOutputTimeCountsConsumedFrames(t *testing.T) {
	session, stream := newTestSession(t, 500)

	_, err := session.Write(frames(8820))
	require.NoError(t, err)

	// all of it is still queued
	tm, err := session.OutputTime()
	require.NoError(t, err)
	assert.Equal(t, 0, tm)

	// the device consumes 100 ms worth
	stream.Consume(4410 * 4)
	tm, err = session.OutputTime()
	require.NoError(t, err)
	assert.Equal(t, 100, tm)
}

func TestOutputTimeMonotonic(t *testing.T) {
	session, stream := newTestSession(t, 500)

	_, err := session.Write(frames(8820)) // 200 ms
	require.NoError(t, err)

	last := -1
	for consumed := 0; consumed < 8820; consumed += 441 {
		stream.Consume(441 * 4)
		tm, err := session.OutputTime()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, tm, last)
		assert.LessOrEqual(t, tm, 200)
		last = tm
	}
	assert.Equal(t, 200, last)
}

func TestWriteAcceptsOnlyHeadroom(t *testing.T) {
	session, _ := newTestSession(t, 500)

	n, err := session.Write(make([]byte, session.Capacity()+8))
	require.NoError(t, err)
	assert.Equal(t, session.Capacity(), n)

	free, err := session.BufferFree()
	require.NoError(t, err)
	assert.Equal(t, 0, free)
}

func TestPeriodWaitBlocksUntilSpace(t *testing.T) {
	session, stream := newTestSession(t, 100)

	_, err := session.Write(make([]byte, session.Capacity()))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- session.PeriodWait() }()

	select {
	case <-done:
		t.Fatal("PeriodWait returned with a full buffer")
	case <-time.After(120 * time.Millisecond):
	}

	stream.Consume(4)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("PeriodWait did not return after space opened")
	}
}

func TestPeriodWaitStaysBlockedWhilePaused(t *testing.T) {
	session, stream := newTestSession(t, 100)

	_, err := session.Write(make([]byte, session.Capacity()))
	require.NoError(t, err)
	require.NoError(t, session.Pause(true))

	done := make(chan error, 1)
	go func() { done <- session.PeriodWait() }()

	// a suspended device consumes nothing, so no space opens
	assert.Equal(t, 0, stream.Consume(4096))
	select {
	case <-done:
		t.Fatal("PeriodWait returned while paused with no space")
	case <-time.After(120 * time.Millisecond):
	}

	require.NoError(t, session.Pause(false))
	stream.Consume(4096)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("PeriodWait did not return after resume")
	}
}

func TestDrainWaitsForEmptyBuffer(t *testing.T) {
	session, stream := newTestSession(t, 100)

	_, err := session.Write(frames(2000))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- session.Drain() }()

	select {
	case <-done:
		t.Fatal("Drain returned with audio still queued")
	case <-time.After(120 * time.Millisecond):
	}

	stream.Consume(2000 * 4)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Drain did not return after the buffer emptied")
	}
}

func TestFlushResetsClockAndDiscardsAudio(t *testing.T) {
	session, _ := newTestSession(t, 500)

	_, err := session.Write(frames(8820))
	require.NoError(t, err)

	require.NoError(t, session.Flush(30000))

	tm, err := session.OutputTime()
	require.NoError(t, err)
	assert.Equal(t, 30000, tm)

	// everything queued before the flush is gone; Drain has nothing
	// to wait for
	free, err := session.BufferFree()
	require.NoError(t, err)
	assert.Equal(t, session.Capacity(), free)
	require.NoError(t, session.Drain())
}

func TestFlushWakesBlockedDrain(t *testing.T) {
	session, _ := newTestSession(t, 500)

	_, err := session.Write(make([]byte, session.Capacity()))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- session.Drain() }()

	select {
	case <-done:
		t.Fatal("Drain returned with audio still queued")
	case <-time.After(70 * time.Millisecond):
	}

	require.NoError(t, session.Flush(0))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Drain did not return after flush")
	}
}

func TestPauseStopsDrainage(t *testing.T) {
	session, stream := newTestSession(t, 500)

	_, err := session.Write(frames(4410))
	require.NoError(t, err)
	require.NoError(t, session.Pause(true))
	assert.True(t, session.Paused())

	before, err := session.BufferFree()
	require.NoError(t, err)
	assert.Equal(t, 0, stream.Consume(1000))
	time.Sleep(60 * time.Millisecond)
	after, err := session.BufferFree()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, session.Pause(false))
	assert.False(t, session.Paused())
	assert.Equal(t, 1000, stream.Consume(1000))
}

func TestCloseUnblocksWaiters(t *testing.T) {
	session, _ := newTestSession(t, 100)

	_, err := session.Write(make([]byte, session.Capacity()))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- session.PeriodWait() }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, session.Close())

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrNotOpen))
	case <-time.After(500 * time.Millisecond):
		t.Fatal("PeriodWait did not return after close")
	}
}

func TestOperationsAfterClose(t *testing.T) {
	session, _ := newTestSession(t, 100)
	require.NoError(t, session.Close())

	_, err := session.BufferFree()
	assert.True(t, errors.Is(err, ErrNotOpen))
	_, err = session.Write(frames(1))
	assert.True(t, errors.Is(err, ErrNotOpen))
	_, err = session.OutputTime()
	assert.True(t, errors.Is(err, ErrNotOpen))
	assert.True(t, errors.Is(session.PeriodWait(), ErrNotOpen))
	assert.True(t, errors.Is(session.Drain(), ErrNotOpen))
	assert.True(t, errors.Is(session.Pause(true), ErrNotOpen))
	assert.True(t, errors.Is(session.Flush(0), ErrNotOpen))

	// close is idempotent
	assert.NoError(t, session.Close())
}

func TestWriteBeyondCapacityNeedsMultipleWaits(t *testing.T) {
	// One second of 16-bit stereo at 44100 Hz (176400 bytes) through a
	// 500 ms (88200 byte) buffer cannot land in one write.
	session, stream := newTestSession(t, 500)
	require.Equal(t, 88200, session.Capacity())

	data := make([]byte, 176400)
	pos, waits := 0, 0
	for pos < len(data) {
		free, err := session.BufferFree()
		require.NoError(t, err)
		if free == 0 {
			waits++
			stream.Consume(22050 * 4)
			require.NoError(t, session.PeriodWait())
			continue
		}
		n := free
		if n > len(data)-pos {
			n = len(data) - pos
		}
		w, err := session.Write(data[pos : pos+n])
		require.NoError(t, err)
		pos += w
	}
	assert.GreaterOrEqual(t, waits, 1)

	stream.Consume(len(data))
	tm, err := session.OutputTime()
	require.NoError(t, err)
	assert.Equal(t, 1000, tm)
}
