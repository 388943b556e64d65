// ABOUTME: Volume curve shared by the sink and its device backends
// ABOUTME: Maps the stereo 0-100 scale onto a 40 dB logarithmic gain
package audio

import "math"

// VolumeRangeDB is the span of the volume control in decibels.
const VolumeRangeDB = 40

// ClampVolume limits a volume setting to the 0-100 scale.
func ClampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// LinearGain converts a stereo 0-100 volume pair to a linear device
// gain. 100 is unity, 0 is silence, with a logarithmic taper between:
// 10^(VolumeRangeDB*(max-100)/100/20). The louder channel wins.
func LinearGain(left, right int) float64 {
	max := left
	if right > max {
		max = right
	}
	max = ClampVolume(max)
	if max == 0 {
		return 0
	}
	return math.Pow(10, VolumeRangeDB*float64(max-100)/100/20)
}
