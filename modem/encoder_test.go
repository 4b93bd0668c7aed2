package modem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Encoder_isDeterministic(t *testing.T) {
	e := NewEncoder(BaseSampleRate)
	params := DefaultParametersEncode()

	w1 := e.Encode("HELLO WORLD", params)
	w2 := e.Encode("HELLO WORLD", params)

	assert.Equal(t, w1, w2)
}

func Test_Encoder_singleDot_hasExpectedLength(t *testing.T) {
	e := NewEncoder(BaseSampleRate)
	params := DefaultParametersEncode()
	params.SpeedCharactersWPM = 25.0
	params.SpeedFarnsworthWPM = 25.0

	w := e.Encode("E", params)

	lendot0 := BaseSampleRate * (1e-3 * lendotMs(25.0))
	assert.InDelta(t, lendot0, float64(len(w)), 1.0)
}

func Test_Encoder_unknownCharacter_emitsNoSymbols(t *testing.T) {
	e := NewEncoder(BaseSampleRate)
	params := DefaultParametersEncode()

	w := e.Encode("#", params)
	assert.Len(t, w, 0)
}

func Test_ConvertSampleFormat_i16RoundTrips(t *testing.T) {
	waveform := []float32{0, 0.5, -0.5, 1, -1}
	buf := ConvertSampleFormat(waveform, SampleFormatI16)
	assert.Len(t, buf, 2*len(waveform))

	back := decodeSampleFormat(buf, SampleFormatI16)
	assert.Len(t, back, len(waveform))
	for i, want := range waveform {
		assert.InDelta(t, want, back[i], 2.0/32768)
	}
}

func Test_ConvertToI16_scalesProportionally(t *testing.T) {
	out := ConvertToI16([]float32{0.5, -0.5, 0.0})
	assert.Equal(t, int16(16384), out[0])
	assert.Equal(t, int16(-16384), out[1])
	assert.Equal(t, int16(0), out[2])
}
