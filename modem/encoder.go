package modem

import "math"

// symbol codes used internally while building a transmission: dot, dash,
// intra-symbol pause, inter-letter space, inter-word space. Grounded on
// original_source/src/ggmorse.cpp's encode(), which builds the identical
// five-symbol string before rendering samples.
const (
	symDot = iota
	symDash
	symIntraPause
	symLetterSpace
	symWordSpace
)

// Encoder renders text into a volume-enveloped sine-wave waveform at a
// fixed tone frequency and speed.
type Encoder struct {
	sampleRate float64
}

// NewEncoder builds an encoder rendering at sampleRate (normally
// BaseSampleRate).
func NewEncoder(sampleRate float64) *Encoder {
	return &Encoder{sampleRate: sampleRate}
}

// Encode renders text (already limited to MaxTxLength by the caller) into a
// float32 waveform in [-volume, volume], using params. Characters with no
// Morse mapping are silently skipped, matching the original's "no match
// found, no symbols emitted" fallthrough.
func (e *Encoder) Encode(text string, params ParametersEncode) []float32 {
	lendot0 := e.sampleRate * (1e-3 * lendotMs(params.SpeedCharactersWPM))
	lendot1 := e.sampleRate * (1e-3 * lendotMs(params.SpeedFarnsworthWPM))

	letterSpace := 3.0 * lendot1
	wordSpace := 7.0 * lendot1

	var symbols []int
	for i := 0; i < len(text); i++ {
		code, ok := morseLookupCode(text[i])
		if ok {
			for k := 0; k < len(code); k++ {
				if code[k] == '0' {
					symbols = append(symbols, symDot)
				} else {
					symbols = append(symbols, symDash)
				}
				if k < len(code)-1 {
					symbols = append(symbols, symIntraPause)
				}
			}
		}

		if i < len(text)-1 {
			if text[i+1] != ' ' {
				symbols = append(symbols, symLetterSpace)
			} else {
				symbols = append(symbols, symWordSpace)
			}
		}
	}

	nSamplesTotal := 0
	for _, s := range symbols {
		nSamplesTotal += symbolSamples(s, lendot0, lendot1, letterSpace, wordSpace)
	}

	out := make([]float32, nSamplesTotal)

	idx := 0
	factorCur := 0.0
	dampFactor := 1.0 / math.Max(1.0, 0.1*lendot0)

	for _, s := range symbols {
		n := symbolSamples(s, lendot0, lendot1, letterSpace, wordSpace)
		toneOn := s == symDot || s == symDash

		for i := 0; i < n; i++ {
			out[idx] = float32(factorCur * params.Volume * math.Sin((2.0*math.Pi)*(float64(idx)*params.FrequencyHz/e.sampleRate)))
			if toneOn {
				factorCur = math.Min(1.0, factorCur+dampFactor)
			} else {
				factorCur = math.Max(0.0, factorCur-dampFactor)
			}
			idx++
		}
	}

	return out
}

func symbolSamples(s int, lendot0, lendot1, letterSpace, wordSpace float64) int {
	switch s {
	case symDot:
		return int(lendot0)
	case symDash:
		return int(3 * lendot0)
	case symIntraPause:
		return int(lendot1)
	case symLetterSpace:
		return int(letterSpace)
	case symWordSpace:
		return int(wordSpace)
	default:
		return 0
	}
}

// ConvertToI16 scales a [-1,1] float32 waveform to 16-bit signed PCM. The
// modem keeps this int16 copy of every encoded waveform for
// TakeTxWaveformI16, whatever the configured output format.
func ConvertToI16(waveform []float32) []int16 {
	out := make([]int16, len(waveform))
	for i, v := range waveform {
		out[i] = int16(32768 * v)
	}
	return out
}

// ConvertSampleFormat renders waveform (in [-1,1]) into the byte encoding
// of format f. SampleFormatUndefined returns nil.
func ConvertSampleFormat(waveform []float32, f SampleFormat) []byte {
	switch f {
	case SampleFormatUndefined:
		return nil
	case SampleFormatU8:
		out := make([]byte, len(waveform))
		for i, v := range waveform {
			out[i] = byte(128 + 127*v)
		}
		return out
	case SampleFormatI8:
		out := make([]byte, len(waveform))
		for i, v := range waveform {
			out[i] = byte(int8(127 * v))
		}
		return out
	case SampleFormatU16:
		out := make([]byte, 2*len(waveform))
		for i, v := range waveform {
			u := uint16(32768 + 32767*v)
			out[2*i] = byte(u)
			out[2*i+1] = byte(u >> 8)
		}
		return out
	case SampleFormatI16:
		out := make([]byte, 2*len(waveform))
		for i, v := range waveform {
			u := uint16(int16(32767 * v))
			out[2*i] = byte(u)
			out[2*i+1] = byte(u >> 8)
		}
		return out
	case SampleFormatF32:
		out := make([]byte, 4*len(waveform))
		for i, v := range waveform {
			u := math.Float32bits(v)
			out[4*i] = byte(u)
			out[4*i+1] = byte(u >> 8)
			out[4*i+2] = byte(u >> 16)
			out[4*i+3] = byte(u >> 24)
		}
		return out
	default:
		return nil
	}
}
