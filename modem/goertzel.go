package modem

import "math"

// Goertzel is a running narrow-band energy extractor. Because the target
// frequency may change every call, the coefficient is recomputed at the
// start of every Process rather than cached — per spec.md §9's
// "Dynamic-frequency Goertzel" note. Grounded line-for-line on
// original_source/src/goertzel.h, cross-checked against the Goertzel
// recurrence in other_examples' ubersdr morse signal_processing.go.
type Goertzel struct {
	sampleRate float64

	hamming []float64

	coeff, sinv, cosv float64

	processedSamples int

	historyHead int
	history     []float32

	filteredHead int
	filtered     []float32
	filteredOut  []float32
}

// NewGoertzel builds a Goertzel analyzer over a windowSamples-wide Hamming
// window, keeping historySeconds of base-rate history.
func NewGoertzel(sampleRate float64, windowSamples int, historySeconds float64) *Goertzel {
	g := &Goertzel{
		sampleRate: sampleRate,
		hamming:    make([]float64, windowSamples),
	}
	for i := range g.hamming {
		g.hamming[i] = 0.54 - 0.46*math.Cos((2.0*math.Pi*float64(i))/float64(windowSamples))
	}

	historySamples := int(historySeconds * sampleRate)
	g.history = make([]float32, historySamples)
	g.filtered = make([]float32, historySamples-windowSamples)
	g.filteredOut = make([]float32, historySamples-windowSamples)

	return g
}

// Process appends samples to the history and, once at least len(hamming)
// samples have ever been seen, appends one narrow-band power sample per
// input sample to the envelope ring, evaluated at freqHz.
func (g *Goertzel) Process(samples []float32, freqHz float64) {
	nw := len(g.hamming)
	nh := len(g.history)
	nf := len(g.filtered)

	normalizedFreq := freqHz / g.sampleRate
	w := 2 * math.Pi * normalizedFreq
	wr := math.Cos(w)
	wi := math.Sin(w)

	g.coeff = 2.0 * wr
	g.cosv = wr
	g.sinv = wi

	for _, sample := range samples {
		g.history[g.historyHead] = sample
		g.historyHead++
		if g.historyHead >= nh {
			g.historyHead = 0
		}

		g.processedSamples++
		if g.processedSamples >= nw {
			g.filtered[g.filteredHead] = float32(g.filter(g.historyHead - nw))
			g.filteredHead++
			if g.filteredHead >= nf {
				g.filteredHead = 0
			}
		}
	}
}

func (g *Goertzel) filter(idx int) float64 {
	nh := len(g.history)
	if idx < 0 {
		idx += nh
	}

	var sprev, sprev2 float64

	n := len(g.hamming)
	for i := 0; i < n; i++ {
		s := g.hamming[i]*float64(g.history[idx]) + g.coeff*sprev - sprev2
		idx++
		if idx >= nh {
			idx = 0
		}
		sprev2 = sprev
		sprev = s
	}

	real := sprev*g.cosv - sprev2
	imag := -sprev * g.sinv

	return real*real + imag*imag
}

// Filtered returns a chronologically ordered copy of the envelope ring.
func (g *Goertzel) Filtered() []float32 {
	nf := len(g.filtered)
	j := g.filteredHead
	for i := 0; i < nf; i++ {
		g.filteredOut[i] = g.filtered[j]
		j++
		if j >= nf {
			j = 0
		}
	}
	return g.filteredOut
}

// FilteredMin returns the running minimum of the envelope over a half-width
// w window, centred on each point. Reserved for future denoising per
// spec.md §4.4; not called by the controller, matching the original.
func (g *Goertzel) FilteredMin(w int) []float32 {
	nf := len(g.filtered)
	out := make([]float32, nf)
	j := g.filteredHead
	for i := 0; i < nf; i++ {
		lo := i
		if w < lo {
			lo = w
		}
		hiSpan := nf - i
		if w < hiSpan {
			hiSpan = w
		}
		j2 := j - lo
		if j2 < 0 {
			j2 += nf
		}
		l := lo + hiSpan
		f := g.filtered[j2]
		for k := 0; k < l; k++ {
			if g.filtered[j2] < f {
				f = g.filtered[j2]
			}
			j2++
			if j2 >= nf {
				j2 = 0
			}
		}
		out[i] = f

		j++
		if j >= nf {
			j = 0
		}
	}
	return out
}

// Clear zeros both the history and envelope rings. The controller calls
// this when the estimated pitch jumps by more than 100 Hz between frames.
func (g *Goertzel) Clear() {
	for i := range g.history {
		g.history[i] = 0
	}
	for i := range g.filtered {
		g.filtered[i] = 0
	}
}
