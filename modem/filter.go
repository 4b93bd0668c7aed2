package modem

import "math"

// FilterType selects the pre-filter applied to the base-rate stream before
// pitch estimation and Goertzel analysis.
type FilterType int

const (
	FilterNone FilterType = iota
	FilterFirstOrderHighPass
	FilterSecondOrderButterworthHighPass
)

// Filter is a biquad IIR, coefficients fixed at construction time.
//
// Grounded on original_source/src/filter.h, with one deliberate deviation:
// the original's filterFirstOrderHighPass overwrites xnz2 twice in a row
// (once from xnz1, then immediately from ynz1), so the true x[n-2] history
// never survives to the next sample — spec.md §9 calls this an apparent
// bug and asks implementers to pick the textbook form instead and not
// require bit-exact output. This Filter keeps xnz1, xnz2, ynz1, ynz2
// distinct, the standard direct-form-I update.
type Filter struct {
	typ FilterType

	a0, a1, a2, b1, b2 float64

	xnz1, xnz2 float64
	ynz1, ynz2 float64
}

// NewFilter builds a filter of the given type with cutoff frequency
// freqCutoffHz at sampleRate. FilterNone passes samples through unchanged.
func NewFilter(typ FilterType, freqCutoffHz, sampleRate float64) *Filter {
	f := &Filter{typ: typ}
	switch typ {
	case FilterNone:
		// no coefficients needed
	case FilterFirstOrderHighPass:
		f.initFirstOrderHighPass(freqCutoffHz, sampleRate)
	case FilterSecondOrderButterworthHighPass:
		f.initSecondOrderButterworthHighPass(freqCutoffHz, sampleRate)
	}
	return f
}

// reproduces the original's a0 = (1+g)/2, g = cos(w)/(1+sin(w)) form,
// per spec.md §4.2.
func (f *Filter) initFirstOrderHighPass(fc, fs float64) {
	th := 2.0 * math.Pi * fc / fs
	g := math.Cos(th) / (1.0 + math.Sin(th))
	f.a0 = (1.0 + g) / 2.0
	f.a1 = -f.a0
	f.a2 = 0.0
	f.b1 = -g
	f.b2 = 0.0
}

func (f *Filter) initSecondOrderButterworthHighPass(fc, fs float64) {
	const sqrt2 = 1.4142135623730951
	c := math.Tan(math.Pi * fc / fs)
	f.a0 = 1.0 / (1.0 + sqrt2*c + c*c)
	f.a1 = -2.0 * f.a0
	f.a2 = f.a0
	f.b1 = 2.0 * f.a0 * (c*c - 1.0)
	f.b2 = f.a0 * (1.0 - sqrt2*c + c*c)
}

// Process filters samples in place.
func (f *Filter) Process(samples []float32) {
	if f.typ == FilterNone {
		return
	}
	for i, xn64 := range toFloat64Slice(samples) {
		yn := f.a0*xn64 + f.a1*f.xnz1 + f.a2*f.xnz2 - f.b1*f.ynz1 - f.b2*f.ynz2

		f.xnz2 = f.xnz1
		f.xnz1 = xn64
		f.ynz2 = f.ynz1
		f.ynz1 = yn

		samples[i] = float32(yn)
	}
}

func toFloat64Slice(s []float32) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}
