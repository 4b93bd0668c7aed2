package modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Goertzel_detectsTargetFrequency(t *testing.T) {
	windowSamples := NewFFTSize(BaseSampleRate / 50)
	g := NewGoertzel(BaseSampleRate, windowSamples, 1.0)

	const toneHz = 700.0
	samples := make([]float32, 4000)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * toneHz * float64(i) / BaseSampleRate))
	}

	g.Process(samples, toneHz)
	onTarget := g.Filtered()

	g2 := NewGoertzel(BaseSampleRate, windowSamples, 1.0)
	g2.Process(samples, toneHz+400)
	offTarget := g2.Filtered()

	var onSum, offSum float64
	for _, v := range onTarget {
		onSum += float64(v)
	}
	for _, v := range offTarget {
		offSum += float64(v)
	}

	assert.Greater(t, onSum, offSum)
}

func Test_Goertzel_clearZeroesState(t *testing.T) {
	windowSamples := NewFFTSize(BaseSampleRate / 50)
	g := NewGoertzel(BaseSampleRate, windowSamples, 1.0)

	samples := make([]float32, 2000)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * 600.0 * float64(i) / BaseSampleRate))
	}
	g.Process(samples, 600.0)

	g.Clear()

	for _, v := range g.Filtered() {
		assert.Equal(t, float32(0), v)
	}
}
