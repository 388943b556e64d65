// ABOUTME: Tests for the logarithmic volume curve
// ABOUTME: Verifies unity, silence and intermediate gain points
package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearGainEndpoints(t *testing.T) {
	assert.Equal(t, 1.0, LinearGain(100, 100))
	assert.Equal(t, 0.0, LinearGain(0, 0))
}

func TestLinearGainCurve(t *testing.T) {
	// 50 on a 40 dB range is -20 dB, i.e. a gain of 0.1
	assert.InDelta(t, 0.1, LinearGain(50, 50), 1e-9)

	for v := 1; v <= 100; v++ {
		want := math.Pow(10, 40*float64(v-100)/100/20)
		assert.InDelta(t, want, LinearGain(v, v), 1e-9, "volume %d", v)
	}
}

func TestLinearGainLouderChannelWins(t *testing.T) {
	assert.Equal(t, LinearGain(100, 30), LinearGain(30, 100))
	assert.Equal(t, 1.0, LinearGain(0, 100))
	assert.Equal(t, 0.0, LinearGain(0, 0))
}

func TestLinearGainClampsOutOfRange(t *testing.T) {
	assert.Equal(t, 1.0, LinearGain(150, 0))
	assert.Equal(t, 0.0, LinearGain(-5, -20))
}

func TestClampVolume(t *testing.T) {
	assert.Equal(t, 0, ClampVolume(-1))
	assert.Equal(t, 0, ClampVolume(0))
	assert.Equal(t, 55, ClampVolume(55))
	assert.Equal(t, 100, ClampVolume(101))
}
