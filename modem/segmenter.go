package modem

import "math"

// Interval gap/tone classifications. For an ON (signal=1) interval, Type is
// either IntervalDot or IntervalDash. For an OFF (signal=0) interval, Type
// is one of the four gap kinds below. Grounded on
// original_source/src/ggmorse.cpp's decode_float, which reuses a single
// "type" field with different meanings depending on Signal — kept as two
// named constant groups here for clarity, values preserved so the
// emission-policy switch in decoder.go can compare them directly.
const (
	IntervalDot  = 0
	IntervalDash = 1
)

const (
	// GapUntyped covers both "no clear nearest-residual winner" and any
	// gap of 8 dot-units or longer; it finalizes the letter and emits a
	// space, same as GapInterWord.
	GapUntyped = 0
	// GapIntraSymbol is the ~1 dot-unit gap between elements of the same
	// letter: it does not finalize the letter and emits no space.
	GapIntraSymbol = 1
	// GapInterLetter is the ~3 dot-unit gap between letters: it
	// finalizes the letter but — matching the original exactly — emits
	// no space.
	GapInterLetter = 2
	// GapInterWord is the ~7 dot-unit gap between words: it finalizes
	// the letter and emits a space.
	GapInterWord = 3
)

// Interval is one constant-signal run of the thresholded envelope, in the
// (possibly downsampled) sample index space of the window it was computed
// over.
type Interval struct {
	Start, End int
	Avg        float64
	Signal     int
	Len        float64 // in dot-units, renormalized
	Type       int
}

// SegmentResult is the winning segmentation of one analysis window, plus
// the grid coordinates it was found at.
type SegmentResult struct {
	Intervals         []Interval
	EstimatedSpeedWPM float64
	SignalThreshold   float64
	NDownsample       int
}

// lendotMs is the duration of one dot, in milliseconds, at the PARIS
// standard for the given words-per-minute speed.
func lendotMs(speedWPM float64) float64 {
	return 60000.0 / (50.0 * speedWPM)
}

// Segment runs the two-pass cost-minimizing grid search of spec.md §4.5
// over envelope, an ordered Goertzel-filtered envelope at BaseSampleRate.
// pinnedSpeedWPM <= 0 means auto-search the full speed grid; otherwise
// only that speed is tried. prevSpeedWPM/prevThreshold seed pass 2's
// refinement window and may be zero on the first call.
func Segment(envelope []float32, pinnedSpeedWPM, prevSpeedWPM, prevThreshold float64) SegmentResult {
	nSamples := len(envelope)
	windowSamples := int(MaxWindowToAnalyzeSeconds * BaseSampleRate)

	nDownsample := 1
	for nSamples%2 == 0 && windowSamples > int(500*MaxWindowToAnalyzeSeconds) {
		nDownsample *= 2
		nSamples /= 2
		windowSamples /= 2
	}

	filtered := make([]float64, nSamples)
	mean := 0.0
	for i := 0; i < nSamples; i++ {
		sum := 0.0
		for j := 0; j < nDownsample; j++ {
			sum += float64(envelope[i*nDownsample+j])
		}
		sum /= float64(nDownsample)
		filtered[i] = sum
		mean += sum
	}
	mean /= float64(nSamples)

	bestCost := 1e6
	var bestIntervals []Interval
	bestSpeedWPM := 5.0
	bestThreshold := 0.5

	s0, s1, ds := 0, 50, 10
	nModes := 2
	if pinnedSpeedWPM > 0 && pinnedSpeedWPM < 100 {
		s0 = int(math.Round(pinnedSpeedWPM - 5.0))
		s1 = s0
		nModes = 1
	}

	for mode := 0; mode < nModes; mode++ {
		if mode == 1 {
			s0 = clampInt(int(math.Round(prevSpeedWPM-5.0-2.0)), 0, 50)
			s1 = clampInt(int(math.Round(prevSpeedWPM-5.0+2.0)), 0, 50)
			ds = 1
		}

		lOld := clampInt(int(100.0*prevThreshold), 20, 80)
		var l0, l1, dl int
		if mode == 0 {
			l0, l1, dl = 10, 90, 20
		} else {
			l0, l1, dl = lOld-10, lOld+10, 2
		}

		for s := s0; s <= s1 && s < 55; s += ds {
			lendotSamples := BaseSampleRate * (1e-3 * lendotMs(float64(5+s))) / float64(nDownsample)

			for l := l0; l <= l1; l += dl {
				intervals, cost := segmentAt(filtered, mean, float64(l), lendotSamples)
				if cost < bestCost {
					bestCost = cost
					bestIntervals = intervals
					bestSpeedWPM = float64(5 + s)
					bestThreshold = float64(l) / 100.0
				}
			}
		}
	}

	return SegmentResult{
		Intervals:         bestIntervals,
		EstimatedSpeedWPM: bestSpeedWPM,
		SignalThreshold:   bestThreshold,
		NDownsample:       nDownsample,
	}
}

// segmentAt thresholds filtered at level percent l of mean, builds
// intervals, classifies them, renormalizes, and returns the cost.
func segmentAt(filtered []float64, mean, l, lendotSamples float64) ([]Interval, float64) {
	level := (0.01 * mean) * l

	lastSignal := 0
	if filtered[0] > level {
		lastSignal = 1
	}

	var intervals []Interval
	cur := Interval{Signal: lastSignal, Start: 0, Avg: filtered[0]}

	for i := 1; i < len(filtered); i++ {
		curSignal := 0
		if filtered[i] > level {
			curSignal = 1
		}
		if curSignal != lastSignal {
			cur.End = i
			cur.Avg /= float64(i - cur.Start)
			cur.Len = float64(cur.End-cur.Start) / lendotSamples
			intervals = append(intervals, cur)

			cur = Interval{Signal: curSignal, Start: i, Avg: filtered[i]}
			lastSignal = curSignal
		} else {
			cur.Avg += filtered[i]
		}
	}
	cur.End = len(filtered)
	cur.Avg /= float64(cur.End - cur.Start)
	cur.Len = float64(cur.End-cur.Start) / lendotSamples
	intervals = append(intervals, cur)

	n := len(intervals)
	for i := 0; i < n; i++ {
		if intervals[i].Signal == 0 {
			intervals[i].Type = GapUntyped
			continue
		}
		if intervals[i].Len > 2 {
			intervals[i].Type = IntervalDash
		} else {
			intervals[i].Type = IntervalDot
		}
	}

	nDots, nDahs := 0, 0
	avgDotLength, avgDahLength := 0.0, 0.0
	for i := 1; i < n-1; i++ {
		iv := intervals[i]
		if iv.Signal == 0 {
			continue
		}
		if iv.Type == IntervalDot {
			nDots++
			avgDotLength += iv.Len
		} else {
			nDahs++
			avgDahLength += iv.Len
		}
	}
	if nDots > 0 {
		avgDotLength /= float64(nDots)
	} else {
		avgDotLength = 1.0
	}
	if nDahs > 0 {
		avgDahLength /= float64(nDahs)
	} else {
		avgDahLength = 3.0
	}

	for i := 1; i < n-1; i++ {
		iv := &intervals[i]
		if iv.Signal == 0 {
			continue
		}

		mid := 0.5 * float64(iv.Start+iv.End)
		if iv.Type == IntervalDot {
			iv.Len *= 1.0 / avgDotLength
		} else {
			iv.Len *= 3.0 / avgDahLength
		}

		newStart := mid - 0.5*iv.Len*lendotSamples
		newEnd := mid + 0.5*iv.Len*lendotSamples

		intervals[i-1].End = int(newStart)
		iv.Start = int(newStart)
		intervals[i-1].Len = float64(intervals[i-1].End-intervals[i-1].Start) / lendotSamples

		intervals[i+1].Start = int(newEnd)
		iv.End = int(newEnd)
		intervals[i+1].Len = float64(intervals[i+1].End-intervals[i+1].Start) / lendotSamples
	}

	nDots, nDahs = 0, 0
	costDots, costDahs := 0.0, 0.0
	nSpaces := 0
	costSpaces := 0.0

	for i := 1; i < n-1; i++ {
		iv := &intervals[i]
		if iv.Signal == 0 {
			iv.Type = GapUntyped

			if iv.Len < 8.0 {
				c1 := (iv.Len - 1.0) * (iv.Len - 1.0)
				c3 := (iv.Len - 3.0) * (iv.Len - 3.0)
				c7 := (iv.Len - 7.0) * (iv.Len - 7.0)

				switch {
				case c1 < c3 && c1 < c7:
					iv.Type = GapIntraSymbol
					costSpaces += math.Min(math.Min(c1, c3), c7)
					nSpaces++
				case c3 < c1 && c3 < c7:
					iv.Type = GapInterLetter
				case c7 < c1 && c7 < c3:
					iv.Type = GapInterWord
				}
			}
			continue
		}

		if iv.Type == IntervalDot {
			nDots++
			costDots += (iv.Len - 1.0) * (iv.Len - 1.0)
		} else {
			nDahs++
			costDahs += (iv.Len - 3.0) * (iv.Len - 3.0)
		}
	}

	if nSpaces == 0 {
		nSpaces = 1
		costSpaces = 100.0
	}
	if nDots < 1 {
		nDots = 1
		costDots = 100.0
	}
	if nDahs < 1 {
		nDahs = 1
		costDahs = 100.0
	}

	cost := costDots/float64(nDots) + costDahs/float64(nDahs) + costSpaces/float64(nSpaces)
	if avgDahLength/avgDotLength < 2.5 || avgDahLength/avgDotLength > 3.5 {
		cost += 100.0
	}

	return intervals, cost
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
