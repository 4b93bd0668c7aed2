package modem

// SymbolDecoder walks a fixed emission cursor through successive best
// segmentations, accumulating dots/dashes into letters and emitting
// decoded text. Grounded on original_source/src/ggmorse.cpp's decode_float
// cursor loop (the comment block below documents the exact finalize/space
// policy resolved from that source, per SPEC_FULL.md §4 and DESIGN.md's
// open question decisions).
type SymbolDecoder struct {
	curLetter    []byte
	lastSignal   int
	haveLast     bool
	rxData       []byte
}

// NewSymbolDecoder returns an empty decoder.
func NewSymbolDecoder() *SymbolDecoder {
	return &SymbolDecoder{}
}

// Advance reads the interval covering each of n cursor positions, starting
// at startSample within result.Intervals, and appends any finalized
// letters/spaces to the Rx buffer. startSample and n are in the same
// (possibly downsampled) index space as result.Intervals.
func (d *SymbolDecoder) Advance(result SegmentResult, startSample, n int) {
	intervals := result.Intervals
	if len(intervals) == 0 {
		return
	}

	j := 0
	for i := 0; i < n; i++ {
		s := startSample + i
		for j < len(intervals)-1 && s >= intervals[j].End {
			j++
		}
		iv := intervals[j]

		if !d.haveLast || d.lastSignal != iv.Signal {
			if iv.Signal == 1 {
				if iv.Type == IntervalDash {
					d.curLetter = append(d.curLetter, '1')
				} else {
					d.curLetter = append(d.curLetter, '0')
				}
			} else {
				// Finalize on every gap type except the intra-symbol gap
				// (GapIntraSymbol): that gap sits between elements of the
				// same letter, so decoding keeps accumulating.
				if iv.Type == GapUntyped || iv.Type == GapInterLetter || iv.Type == GapInterWord {
					d.finalizeLetter()
				}

				// Space emission does not follow finalize 1:1 — the
				// original emits a space for GapUntyped and GapInterWord
				// only, never for GapIntraSymbol or, notably,
				// GapInterLetter.
				if iv.Type == GapUntyped || iv.Type == GapInterWord {
					d.rxData = append(d.rxData, ' ')
				}
			}

			d.lastSignal = iv.Signal
			d.haveLast = true
		}
	}
}

func (d *SymbolDecoder) finalizeLetter() {
	if len(d.curLetter) == 0 {
		return
	}
	if ch, ok := morseLookupChar(string(d.curLetter)); ok {
		d.rxData = append(d.rxData, ch)
	} else {
		d.rxData = append(d.rxData, '?')
	}
	d.curLetter = d.curLetter[:0]
}

// TakeRxData returns everything decoded so far and clears the buffer.
func (d *SymbolDecoder) TakeRxData() []byte {
	out := d.rxData
	d.rxData = nil
	return out
}
