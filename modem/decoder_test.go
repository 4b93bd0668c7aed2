package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SymbolDecoder_singleLetter(t *testing.T) {
	// "E" is a single dot: one ON interval, then an inter-word OFF
	// interval that finalizes and emits a trailing space.
	intervals := []Interval{
		{Start: 0, End: 10, Signal: 1, Type: IntervalDot},
		{Start: 10, End: 1000, Signal: 0, Type: GapInterWord},
	}
	result := SegmentResult{Intervals: intervals, NDownsample: 1}

	d := NewSymbolDecoder()
	d.Advance(result, 0, 1000)

	assert.Equal(t, "E ", string(d.TakeRxData()))
}

func Test_SymbolDecoder_intraSymbolGapDoesNotFinalize(t *testing.T) {
	// "A" = dot, dash: an intra-symbol gap must not finalize or emit a
	// letter mid-way through.
	intervals := []Interval{
		{Start: 0, End: 10, Signal: 1, Type: IntervalDot},
		{Start: 10, End: 20, Signal: 0, Type: GapIntraSymbol},
		{Start: 20, End: 40, Signal: 1, Type: IntervalDash},
		{Start: 40, End: 1000, Signal: 0, Type: GapInterWord},
	}
	result := SegmentResult{Intervals: intervals, NDownsample: 1}

	d := NewSymbolDecoder()
	d.Advance(result, 0, 1000)

	assert.Equal(t, "A ", string(d.TakeRxData()))
}

func Test_SymbolDecoder_interLetterGap_finalizesWithoutSpace(t *testing.T) {
	intervals := []Interval{
		{Start: 0, End: 10, Signal: 1, Type: IntervalDot},   // E
		{Start: 10, End: 50, Signal: 0, Type: GapInterLetter},
		{Start: 50, End: 60, Signal: 1, Type: IntervalDot}, // E
		{Start: 60, End: 1000, Signal: 0, Type: GapInterWord},
	}
	result := SegmentResult{Intervals: intervals, NDownsample: 1}

	d := NewSymbolDecoder()
	d.Advance(result, 0, 1000)

	assert.Equal(t, "EE ", string(d.TakeRxData()))
}

func Test_SymbolDecoder_unknownSequence_emitsQuestionMark(t *testing.T) {
	intervals := []Interval{
		{Start: 0, End: 10, Signal: 1, Type: IntervalDot},
		{Start: 10, End: 20, Signal: 0, Type: GapIntraSymbol},
		{Start: 20, End: 30, Signal: 1, Type: IntervalDot},
		{Start: 30, End: 40, Signal: 0, Type: GapIntraSymbol},
		{Start: 40, End: 50, Signal: 1, Type: IntervalDot},
		{Start: 50, End: 60, Signal: 0, Type: GapIntraSymbol},
		{Start: 60, End: 70, Signal: 1, Type: IntervalDot},
		{Start: 70, End: 80, Signal: 0, Type: GapIntraSymbol},
		{Start: 80, End: 90, Signal: 1, Type: IntervalDot},
		{Start: 90, End: 100, Signal: 0, Type: GapIntraSymbol},
		{Start: 100, End: 110, Signal: 1, Type: IntervalDot},
		{Start: 110, End: 1000, Signal: 0, Type: GapInterWord},
	}
	result := SegmentResult{Intervals: intervals, NDownsample: 1}

	d := NewSymbolDecoder()
	d.Advance(result, 0, 1000)

	assert.Equal(t, "? ", string(d.TakeRxData()))
}
