package modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewFFTSize_smallestPowerOfTwo(t *testing.T) {
	assert.Equal(t, 1, NewFFTSize(1))
	assert.Equal(t, 128, NewFFTSize(100))
	assert.Equal(t, 256, NewFFTSize(129))
	assert.Equal(t, 1024, NewFFTSize(800))
}

func Test_STFFT_pitchEstimate(t *testing.T) {
	fftSize := NewFFTSize(BaseSampleRate / 10)
	s := NewSTFFT(BaseSampleRate, fftSize, 512, MaxWindowToAnalyzeSeconds)

	const toneHz = 600.0
	frame := make([]float32, 512)

	for frameIdx := 0; frameIdx < 20; frameIdx++ {
		for i := range frame {
			t := float64(frameIdx*512+i) / BaseSampleRate
			frame[i] = float32(math.Sin(2 * math.Pi * toneHz * t))
		}
		s.Process(frame)
	}

	pitch := s.Pitch(200, 1200)
	assert.InDelta(t, toneHz, pitch, BaseSampleRate/float64(fftSize)+1)
}

func Test_STFFT_spectrogramIsChronological(t *testing.T) {
	fftSize := NewFFTSize(BaseSampleRate / 10)
	s := NewSTFFT(BaseSampleRate, fftSize, 512, 1.0)

	frame := make([]float32, 512)
	for frameIdx := 0; frameIdx < 30; frameIdx++ {
		for i := range frame {
			frame[i] = float32(frameIdx)
		}
		s.Process(frame)
	}

	first := s.Spectrogram()
	firstCopy := make([][]float64, len(first))
	for i, row := range first {
		firstCopy[i] = append([]float64(nil), row...)
	}

	// Calling Spectrogram again without any new Process call must return
	// the same chronological snapshot.
	second := s.Spectrogram()
	assert.Equal(t, firstCopy, second)

	// Each frame is a constant that grows with frameIdx, so the DC bin's
	// power must grow from the oldest row to the newest.
	for i := 1; i < len(firstCopy); i++ {
		assert.Greater(t, firstCopy[i][0], firstCopy[i-1][0])
	}
}
