// ABOUTME: Tests for the simulated playback device
// ABOUTME: Covers manual consumption, suspend, reset and realtime drain
package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emmef/pcmsink/pkg/audio"
)

func openSimStream(t *testing.T, d *Sim, bufferBytes int) *SimStream {
	t.Helper()
	desc, ok := audio.Describe(audio.FormatS16LE)
	require.True(t, ok)
	st, err := d.OpenStream(desc, 44100, 2, bufferBytes)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.(*SimStream)
}

func TestSimManualConsumption(t *testing.T) {
	st := openSimStream(t, &Sim{}, 1000)

	n, err := st.Write(make([]byte, 600))
	require.NoError(t, err)
	assert.Equal(t, 600, n)
	assert.Equal(t, 400, st.BytesFree())

	// nothing drains on its own in manual mode
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 400, st.BytesFree())

	assert.Equal(t, 250, st.Consume(250))
	assert.Equal(t, 650, st.BytesFree())
	assert.Equal(t, 350, st.Consume(1000))
}

func TestSimSuspendBlocksConsumption(t *testing.T) {
	st := openSimStream(t, &Sim{}, 1000)

	_, err := st.Write(make([]byte, 500))
	require.NoError(t, err)
	require.NoError(t, st.Suspend())

	assert.Equal(t, 0, st.Consume(100))
	assert.Equal(t, 500, st.BytesFree())

	require.NoError(t, st.Resume())
	assert.Equal(t, 100, st.Consume(100))
}

func TestSimResetClearsQueue(t *testing.T) {
	st := openSimStream(t, &Sim{}, 1000)

	_, err := st.Write(make([]byte, 700))
	require.NoError(t, err)
	require.NoError(t, st.Suspend())
	require.NoError(t, st.Reset())

	// reset empties the queue and restarts consumption
	assert.Equal(t, 1000, st.BytesFree())
	_, err = st.Write(make([]byte, 100))
	require.NoError(t, err)
	assert.Equal(t, 100, st.Consume(100))
}

func TestSimRealtimeDrain(t *testing.T) {
	// 44100 Hz stereo 16-bit is 176400 bytes/s; 50 ms is 8820 bytes
	st := openSimStream(t, NewSim(), 176400)

	_, err := st.Write(make([]byte, 17640))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return st.Buffered() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSimRealtimeSuspendHoldsBuffer(t *testing.T) {
	st := openSimStream(t, NewSim(), 176400)

	_, err := st.Write(make([]byte, 88200))
	require.NoError(t, err)
	require.NoError(t, st.Suspend())

	before := st.Buffered()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, before, st.Buffered())
}

func TestSimClosedStreamRefusesWrites(t *testing.T) {
	st := openSimStream(t, &Sim{}, 1000)
	require.NoError(t, st.Close())

	_, err := st.Write(make([]byte, 10))
	assert.ErrorIs(t, err, ErrStreamClosed)
	assert.ErrorIs(t, st.Suspend(), ErrStreamClosed)
	assert.ErrorIs(t, st.Reset(), ErrStreamClosed)
}

func TestSimRejectsInvalidBufferSize(t *testing.T) {
	desc, _ := audio.Describe(audio.FormatS16LE)
	_, err := (&Sim{}).OpenStream(desc, 44100, 2, 0)
	assert.Error(t, err)
}
