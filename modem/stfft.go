package modem

import (
	"math"
	"math/cmplx"
)

// STFFT maintains a sliding base-rate history and a ring of Hamming-windowed
// power spectra, recomputed every fftStep samples. Grounded line-for-line on
// original_source/src/stfft.h.
type STFFT struct {
	sampleRate float64
	fftStep    int

	hamming []float64

	historyHead int
	history     []float32

	neededSamples   int
	spectrogramHead int
	spectrogram     [][]float64 // ring, each row fftSize power bins
	spectrogramOut  [][]float64 // scratch for chronological snapshot
}

// NewFFTSize returns the smallest power of two >= minSamples, used both for
// Nfft (BASE_RATE/10) and Nwin (BASE_RATE/50).
func NewFFTSize(minSamples float64) int {
	n := 1
	for float64(n) < minSamples {
		n *= 2
	}
	return n
}

// NewSTFFT builds a short-time FFT analyzer: fftSize-point transform every
// fftStep input samples, over a sliding window of historySeconds.
func NewSTFFT(sampleRate float64, fftSize, fftStep int, historySeconds float64) *STFFT {
	s := &STFFT{
		sampleRate: sampleRate,
		fftStep:    fftStep,
		hamming:    make([]float64, fftSize),
	}
	for i := range s.hamming {
		s.hamming[i] = 0.54 - 0.46*math.Cos((2.0*math.Pi*float64(i))/float64(fftSize))
	}

	historySamples := int(historySeconds * sampleRate)
	s.history = make([]float32, historySamples)

	historySteps := 1 + (historySamples-fftSize)/fftStep
	s.spectrogram = make([][]float64, historySteps)
	s.spectrogramOut = make([][]float64, historySteps)
	for i := range s.spectrogram {
		s.spectrogram[i] = make([]float64, fftSize)
		s.spectrogramOut[i] = make([]float64, fftSize)
	}

	s.neededSamples = fftStep
	return s
}

// Process appends samples to the sliding history, computing one
// spectrogram frame every fftStep samples.
func (s *STFFT) Process(samples []float32) {
	nh := len(s.history)
	for _, sample := range samples {
		s.history[s.historyHead] = sample
		s.historyHead++
		if s.historyHead >= nh {
			s.historyHead = 0
		}

		s.neededSamples--
		if s.neededSamples == 0 {
			s.filter(s.historyHead - len(s.hamming))
			s.spectrogramHead++
			if s.spectrogramHead >= len(s.spectrogram) {
				s.spectrogramHead = 0
			}
			s.neededSamples = s.fftStep
		}
	}
}

func (s *STFFT) filter(idx int) {
	nh := len(s.history)
	if idx < 0 {
		idx += nh
	}

	n := len(s.hamming)
	buf := make([]complex128, n)
	for i := 0; i < n; i++ {
		buf[i] = complex(s.hamming[i]*float64(s.history[idx]), 0)
		idx++
		if idx >= nh {
			idx = 0
		}
	}

	fft(buf)

	dst := s.spectrogram[s.spectrogramHead]
	for i := 0; i < n; i++ {
		dst[i] = real(buf[i])*real(buf[i]) + imag(buf[i])*imag(buf[i])
	}
}

// Pitch returns the frequency in [fMinHz, fMaxHz] whose power, summed over
// the newer half of the spectrogram ring, is maximal. Ties go to the
// smallest frequency (ranging j from low to high and requiring a strict >).
func (s *STFFT) Pitch(fMinHz, fMaxHz float64) float64 {
	n := len(s.hamming)
	ns := len(s.spectrogram)
	df := s.sampleRate / float64(n)

	maxSignal := 0.0
	bestPitch := 0.0

	for j := 0; j < n/2; j++ {
		f := float64(j) * df
		if f < fMinHz || f > fMaxHz {
			continue
		}

		curSignal := 0.0
		ih := s.spectrogramHead + ns/2
		if ih >= ns {
			ih -= ns
		}
		for i := 0; i < ns/2; i++ {
			curSignal += s.spectrogram[ih][j]
			ih++
			if ih >= ns {
				ih = 0
			}
		}

		if curSignal > maxSignal {
			maxSignal = curSignal
			bestPitch = f
		}
	}

	return bestPitch
}

// Spectrogram returns a chronologically ordered (oldest -> newest) snapshot
// of the ring, regardless of the current writer position.
func (s *STFFT) Spectrogram() [][]float64 {
	ns := len(s.spectrogram)
	ih := s.spectrogramHead
	for i := 0; i < ns; i++ {
		copy(s.spectrogramOut[i], s.spectrogram[ih])
		ih++
		if ih >= ns {
			ih = 0
		}
	}
	return s.spectrogramOut
}

// fft is an in-place iterative radix-2 Cooley-Tukey FFT. len(a) must be a
// power of two, which NewSTFFT/NewFFTSize guarantee for every caller in
// this package.
func fft(a []complex128) {
	n := len(a)
	if n <= 1 {
		return
	}

	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		ang := -2 * math.Pi / float64(length)
		wlen := cmplx.Rect(1, ang)
		for i := 0; i < n; i += length {
			w := complex(1.0, 0.0)
			for j := 0; j < length/2; j++ {
				u := a[i+j]
				v := a[i+j+length/2] * w
				a[i+j] = u + v
				a[i+j+length/2] = u - v
				w *= wlen
			}
		}
	}
}
