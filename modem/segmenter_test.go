package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func Test_segmentAt_costNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(100, 2000).Draw(t, "n")
		filtered := make([]float64, n)
		mean := 0.0
		for i := range filtered {
			filtered[i] = rapid.Float64Range(0, 1).Draw(t, "sample")
			mean += filtered[i]
		}
		mean /= float64(n)

		l := rapid.Float64Range(10, 90).Draw(t, "l")
		lendotSamples := rapid.Float64Range(10, 200).Draw(t, "lendotSamples")

		_, cost := segmentAt(filtered, mean, l, lendotSamples)
		assert.GreaterOrEqual(t, cost, 0.0)
	})
}

func Test_segmentAt_perfectDotsAndDashes_lowCost(t *testing.T) {
	// Build a clean envelope at a fixed dot length: dot-gap-dash-gap-dot...
	const dotLen = 40
	var filtered []float64
	appendOn := func(n int) {
		for i := 0; i < n; i++ {
			filtered = append(filtered, 1.0)
		}
	}
	appendOff := func(n int) {
		for i := 0; i < n; i++ {
			filtered = append(filtered, 0.0)
		}
	}

	// Leading/trailing intervals are excluded from stats, so pad with a
	// throwaway dot on each side.
	appendOn(dotLen)
	appendOff(dotLen)
	for i := 0; i < 10; i++ {
		appendOn(dotLen)
		appendOff(dotLen)
		appendOn(3 * dotLen)
		appendOff(dotLen)
	}
	appendOn(dotLen)

	mean := 0.0
	for _, v := range filtered {
		mean += v
	}
	mean /= float64(len(filtered))

	_, cost := segmentAt(filtered, mean, 50, float64(dotLen))
	assert.Less(t, cost, 1.0)
}

func Test_Segment_oddLengthEnvelope_noDownsample(t *testing.T) {
	envelope := make([]float32, 8001) // odd length disables the 2x-downsample loop
	for i := range envelope {
		if (i/200)%2 == 0 {
			envelope[i] = 1.0
		}
	}

	result := Segment(envelope, -1, 0, 0)
	assert.Equal(t, 1, result.NDownsample)
	assert.Greater(t, result.EstimatedSpeedWPM, 0.0)
}

func Test_Segment_pinnedSpeed_searchesOneSpeedOnly(t *testing.T) {
	envelope := make([]float32, 8001)
	for i := range envelope {
		if (i/200)%2 == 0 {
			envelope[i] = 1.0
		}
	}

	result := Segment(envelope, 20, 0, 0)
	assert.Equal(t, 20.0, result.EstimatedSpeedWPM)
}
