package modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Resampler_integerRatio_downsamplesByFactor(t *testing.T) {
	r := NewResampler(16000, BaseSampleRate)
	assert.True(t, r.ratioIsInteger)
	assert.Equal(t, 2, r.decimateFactor)

	in := make([]float32, 1000)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 400.0 * float64(i) / 16000.0))
	}

	out := make([]float32, len(in))
	n, err := r.Resample(2.0, in, out)
	require.NoError(t, err)
	assert.Equal(t, 500, n)
}

func Test_Resampler_sincPath_errorsOnShortInput(t *testing.T) {
	r := NewResampler(11025, BaseSampleRate)
	assert.False(t, r.ratioIsInteger)

	in := make([]float32, 4)
	out := make([]float32, 10)

	_, err := r.Resample(11025.0/BaseSampleRate, in, out)
	assert.Error(t, err)
}

func Test_Resampler_sincPath_producesExpectedCount(t *testing.T) {
	r := NewResampler(11025, BaseSampleRate)

	factor := 11025.0 / BaseSampleRate
	in := make([]float32, 2*resampleKernelHalfWidth+200)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 600.0 * float64(i) / 11025.0))
	}

	out := make([]float32, len(in))
	n, err := r.Resample(factor, in, out)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
	assert.LessOrEqual(t, n, len(out))
}

func Test_Resampler_Reset_clearsHistory(t *testing.T) {
	r := NewResampler(11025, BaseSampleRate)

	in := make([]float32, 2*resampleKernelHalfWidth+50)
	for i := range in {
		in[i] = float32(i)
	}
	out := make([]float32, len(in))
	_, _ = r.Resample(11025.0/BaseSampleRate, in, out)

	r.Reset()

	for _, v := range r.history {
		assert.Equal(t, 0.0, v)
	}
}
