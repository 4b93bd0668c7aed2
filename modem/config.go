// Package modem implements a real-time, full-duplex Morse code modem: a
// decoder that turns a stream of audio samples into text, and an encoder
// that turns text into a sampled waveform.
package modem

// Fixed constants of the modem, mirroring GGMorse's compile-time constants.
const (
	// BaseSampleRate is the internal sample rate the whole decode pipeline
	// runs at, regardless of the capture device's native rate.
	BaseSampleRate = 8000.0

	// DefaultSamplesPerFrame is the default frame size used by the controller.
	DefaultSamplesPerFrame = 512

	// MaxSamplesPerFrame is the largest frame size the pipeline will accept.
	MaxSamplesPerFrame = 2048

	// MaxWindowToAnalyzeSeconds is the length of the sliding analysis window
	// kept by the STFFT and Goertzel rings.
	MaxWindowToAnalyzeSeconds = 3.0

	// MaxTxLength is the longest text transmission the encoder will accept
	// before truncating it.
	MaxTxLength = 256

	// DefaultFreqMinHz and DefaultFreqMaxHz bound the auto pitch estimator.
	DefaultFreqMinHz = 200.0
	DefaultFreqMaxHz = 1200.0
)

// SampleFormat identifies the wire representation of an audio sample.
type SampleFormat int

const (
	SampleFormatUndefined SampleFormat = iota
	SampleFormatU8
	SampleFormatI8
	SampleFormatU16
	SampleFormatI16
	SampleFormatF32
)

// BytesPerSample returns the size in bytes of one sample in the given format,
// or 0 for an undefined format.
func BytesPerSample(f SampleFormat) int {
	switch f {
	case SampleFormatU8, SampleFormatI8:
		return 1
	case SampleFormatU16, SampleFormatI16:
		return 2
	case SampleFormatF32:
		return 4
	default:
		return 0
	}
}

// Parameters are the immutable construction-time settings of a Modem.
type Parameters struct {
	SampleRateInp    float64
	SampleRateOut    float64
	SamplesPerFrame  int
	SampleFormatInp  SampleFormat
	SampleFormatOut  SampleFormat
}

// DefaultParameters returns the modem's default construction parameters:
// base rate in and out, default frame size, float32 samples both ways.
func DefaultParameters() Parameters {
	return Parameters{
		SampleRateInp:   BaseSampleRate,
		SampleRateOut:   BaseSampleRate,
		SamplesPerFrame: DefaultSamplesPerFrame,
		SampleFormatInp: SampleFormatF32,
		SampleFormatOut: SampleFormatF32,
	}
}

// ParametersDecode are the mutable, idempotent decode-side knobs.
//
// FrequencyHz <= 0 means auto-estimate the pitch every frame.
// SpeedWPM <= 0 means auto-estimate the speed every frame.
type ParametersDecode struct {
	FrequencyHz float64
	SpeedWPM    float64
	FreqMinHz   float64
	FreqMaxHz   float64
	UseFilters  bool
}

// DefaultParametersDecode returns auto-pitch, auto-speed, the spec's default
// search band, filters enabled.
func DefaultParametersDecode() ParametersDecode {
	return ParametersDecode{
		FrequencyHz: -1,
		SpeedWPM:    -1,
		FreqMinHz:   DefaultFreqMinHz,
		FreqMaxHz:   DefaultFreqMaxHz,
		UseFilters:  true,
	}
}

// ParametersEncode are the mutable encode-side knobs. Farnsworth speed must
// be <= character speed.
type ParametersEncode struct {
	Volume             float64
	FrequencyHz        float64
	SpeedCharactersWPM float64
	SpeedFarnsworthWPM float64
}

// DefaultParametersEncode mirrors GGMorse's default: quarter volume, 550 Hz,
// 25 WPM both character and Farnsworth speed.
func DefaultParametersEncode() ParametersEncode {
	return ParametersEncode{
		Volume:             0.25,
		FrequencyHz:        550.0,
		SpeedCharactersWPM: 25.0,
		SpeedFarnsworthWPM: 25.0,
	}
}

// Statistics are the rolling, read-only diagnostics the controller updates
// once per decoded frame.
type Statistics struct {
	TimeResampleMs       float64
	TimePitchDetectionMs float64
	TimeGoertzelMs       float64
	TimeFrameAnalysisMs  float64
	EstimatedPitchHz     float64
	EstimatedSpeedWPM    float64
	SignalThreshold      float64
}
