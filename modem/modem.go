package modem

import (
	"fmt"
	"math"
)

// CaptureFunc fills buf (up to len(buf) bytes) from the capture device and
// returns the number of bytes actually written. Returning 0 means no data
// is currently available; the controller stops pulling for this call.
// Returning anything other than 0, len(buf), or a multiple of the input
// sample size is a capture contract violation — see spec.md §6/§7.
type CaptureFunc func(buf []byte) int

// PlaybackFunc receives the full encoded buffer for one transmission, in
// the configured output sample format.
type PlaybackFunc func(buf []byte)

// DecodeResult reports what a single Decode call accomplished.
type DecodeResult struct {
	DecodedFrame bool
}

// Modem is the full-duplex controller tying the resampler, pre-filter,
// STFFT, Goertzel envelope extractor, segmenter and symbol decoder into a
// decode pipeline, alongside a companion encoder. Single-threaded
// internally, per spec.md §5: every method here must be called from one
// thread. The state box is the only part safe to touch from a second,
// consumer thread.
type Modem struct {
	params Parameters

	paramsDecode ParametersDecode
	paramsEncode ParametersEncode

	sampleSizeBytesInp int
	sampleSizeBytesOut int

	highpass *Filter
	lowpass2k *Filter
	stfft     *STFFT
	goertzel  *Goertzel
	decoder   *SymbolDecoder
	encoderCore *Encoder
	resampler *Resampler

	waveform      []float32
	waveformTmp   []byte
	samplesNeeded int

	receivingData bool

	txDataLength int
	txData       []byte
	hasNewTxData bool

	lastDecodeResult bool

	state stateBox
}

// NewModem constructs a modem with the given immutable construction
// parameters, per spec.md §6.
func NewModem(params Parameters) *Modem {
	m := &Modem{
		params:             params,
		paramsDecode:       DefaultParametersDecode(),
		paramsEncode:       DefaultParametersEncode(),
		sampleSizeBytesInp: BytesPerSample(params.SampleFormatInp),
		sampleSizeBytesOut: BytesPerSample(params.SampleFormatOut),
		samplesNeeded:      params.SamplesPerFrame,
		decoder:            NewSymbolDecoder(),
		encoderCore:        NewEncoder(params.SampleRateOut),
		resampler:          NewResampler(params.SampleRateInp, BaseSampleRate),
	}

	fftSize := NewFFTSize(BaseSampleRate / 10)
	goertzelWindow := NewFFTSize(BaseSampleRate / 50)

	m.stfft = NewSTFFT(BaseSampleRate, fftSize, params.SamplesPerFrame, MaxWindowToAnalyzeSeconds)
	m.highpass = NewFilter(FilterFirstOrderHighPass, 200.0, BaseSampleRate)
	m.lowpass2k = newAntiAliasLowpass(params.SampleRateInp)
	m.goertzel = NewGoertzel(BaseSampleRate, goertzelWindow, MaxWindowToAnalyzeSeconds)

	m.waveform = make([]float32, 2*MaxSamplesPerFrame)
	m.waveformTmp = make([]byte, MaxSamplesPerFrame*4*2)

	return m
}

// SetParametersDecode updates the decode-side knobs. Always succeeds; the
// decode parameters have no invalid combination per spec.md §7.
func (m *Modem) SetParametersDecode(p ParametersDecode) bool {
	m.paramsDecode = p
	return true
}

// SetParametersEncode updates the encode-side knobs. Rejects a volume
// outside [0,1], per spec.md §7's configuration-error policy.
func (m *Modem) SetParametersEncode(p ParametersEncode) bool {
	if p.Volume < 0.0 || p.Volume > 1.0 {
		logger.Error("invalid volume", "volume", p.Volume)
		return false
	}
	m.paramsEncode = p
	return true
}

// Init arms a transmission, truncating to MaxTxLength if needed. Always
// succeeds: a negative data size is meaningless for a Go []byte, unlike
// the C dataSize/dataBuffer pair this mirrors.
func (m *Modem) Init(data []byte) bool {
	n := len(data)
	if n > MaxTxLength {
		logger.Warn("truncating transmission", "from", n, "to", MaxTxLength)
		n = MaxTxLength
	}
	m.txDataLength = n
	m.txData = append(m.txData[:0], data[:n]...)
	m.hasNewTxData = n > 0
	return true
}

// HasTxData reports whether a transmission is armed and not yet encoded.
func (m *Modem) HasTxData() bool { return m.hasNewTxData }

// LastDecodeResult reports whether the most recent Decode call produced
// at least one decoded frame.
func (m *Modem) LastDecodeResult() bool { return m.lastDecodeResult }

// Encode renders the armed transmission to a waveform and calls cb with it
// in the configured output sample format. Returns false if no transmission
// is armed or the output format is undefined.
func (m *Modem) Encode(cb PlaybackFunc) bool {
	if !m.hasNewTxData {
		return false
	}
	if m.params.SampleFormatOut == SampleFormatUndefined {
		return false
	}
	m.hasNewTxData = false

	waveform := m.encoderCore.Encode(string(m.txData[:m.txDataLength]), m.paramsEncode)

	i16 := ConvertToI16(waveform)
	m.state.setTxWaveformI16(i16)

	if m.params.SampleFormatOut == SampleFormatI16 {
		buf := make([]byte, 2*len(i16))
		for i, v := range i16 {
			u := uint16(v)
			buf[2*i] = byte(u)
			buf[2*i+1] = byte(u >> 8)
		}
		cb(buf)
	} else {
		cb(ConvertSampleFormat(waveform, m.params.SampleFormatOut))
	}

	return true
}

// Decode pulls capture data via cb until no more is available, a
// transmission becomes pending, or a frame fails, running the decode
// pipeline once per BaseSampleRate-equivalent frame of staged samples.
// Returns true iff at least one frame was decoded. Grounded on
// original_source/src/ggmorse.cpp's decode()/decode_float().
func (m *Modem) Decode(cb CaptureFunc) bool {
	result := false

	for !m.hasNewTxData {
		if m.samplesNeeded < m.params.SamplesPerFrame {
			m.samplesNeeded += m.params.SamplesPerFrame
		}

		factor := m.params.SampleRateInp / BaseSampleRate
		nBytesNeeded := m.samplesNeeded * m.sampleSizeBytesInp

		resampleSimple := false
		if m.params.SampleRateInp != BaseSampleRate {
			if int(m.params.SampleRateInp)%int(BaseSampleRate) == 0 {
				nBytesNeeded = int(float64(nBytesNeeded) * factor)
				resampleSimple = true
			} else {
				nBytesNeeded = int(math.Ceil(float64(m.samplesNeeded)*factor)) * m.sampleSizeBytesInp
			}
		}

		if nBytesNeeded > len(m.waveformTmp) {
			nBytesNeeded = len(m.waveformTmp)
		}

		nBytesRecorded := cb(m.waveformTmp[:nBytesNeeded])

		if nBytesRecorded == 0 {
			break
		}
		if nBytesRecorded%m.sampleSizeBytesInp != 0 {
			logger.Error("capture bytes not a multiple of sample size", "bytes", nBytesRecorded, "sampleSize", m.sampleSizeBytesInp)
			m.samplesNeeded = m.params.SamplesPerFrame
			break
		}
		if nBytesRecorded > nBytesNeeded {
			logger.Error("capture returned more bytes than requested", "got", nBytesRecorded, "want", nBytesNeeded)
			m.samplesNeeded = m.params.SamplesPerFrame
			break
		}

		nSamplesRecorded := nBytesRecorded / m.sampleSizeBytesInp
		recorded := decodeSampleFormat(m.waveformTmp[:nBytesRecorded], m.params.SampleFormatInp)

		if nSamplesRecorded == 0 {
			break
		}

		offset := 0
		if m.samplesNeeded > m.params.SamplesPerFrame {
			offset = 2*m.params.SamplesPerFrame - m.samplesNeeded
		}

		if m.params.SampleRateInp != BaseSampleRate {
			if resampleSimple {
				buf := make([]float32, len(recorded))
				copy(buf, recorded)
				m.lowpass2k.Process(buf)

				ds := int(factor)
				nResampled := 0
				for i := 0; i < len(buf); i += ds {
					m.waveform[offset+nResampled] = buf[i]
					nResampled++
				}
				nSamplesRecorded = offset + nResampled
			} else {
				if nSamplesRecorded <= 2*resampleKernelHalfWidth {
					logger.Error("too few samples to resample", "got", nSamplesRecorded, "min", 2*resampleKernelHalfWidth+1)
					m.samplesNeeded = m.params.SamplesPerFrame
					break
				}

				if !m.receivingData && float64(m.resampler.NSamplesTotal()) > 60.0*factor*BaseSampleRate {
					m.resampler.Reset()
				}

				n, err := m.resampler.Resample(factor, recorded, m.waveform[offset:])
				if err != nil {
					logger.Error("resample failed", "err", err)
					m.samplesNeeded = m.params.SamplesPerFrame
					break
				}
				nSamplesRecorded = offset + n
			}
		} else {
			copy(m.waveform[offset:], recorded)
			nSamplesRecorded = offset + nSamplesRecorded
		}

		if nSamplesRecorded >= m.params.SamplesPerFrame {
			for nSamplesRecorded >= m.params.SamplesPerFrame {
				m.decodeFrame()
				result = true

				nExtraSamples := nSamplesRecorded - m.params.SamplesPerFrame
				copy(m.waveform, m.waveform[m.params.SamplesPerFrame:m.params.SamplesPerFrame+nExtraSamples])

				m.samplesNeeded = m.params.SamplesPerFrame - nExtraSamples
				nSamplesRecorded -= m.params.SamplesPerFrame
			}
		} else {
			m.samplesNeeded = m.params.SamplesPerFrame - nSamplesRecorded
			break
		}
	}

	m.lastDecodeResult = result
	return result
}

// decodeFrame runs the full per-frame pipeline once: pre-filter, pitch
// estimation, Goertzel envelope extraction, segmentation and symbol
// decoding. Grounded on decode_float() in
// original_source/src/ggmorse.cpp.
func (m *Modem) decodeFrame() {
	frame := m.waveform[:m.params.SamplesPerFrame]

	if m.paramsDecode.UseFilters {
		m.highpass.Process(frame)
	}
	m.stfft.Process(frame)

	frequencyHz := m.paramsDecode.FrequencyHz
	if frequencyHz <= 0.0 {
		frequencyHz = m.stfft.Pitch(m.paramsDecode.FreqMinHz, m.paramsDecode.FreqMaxHz)
	}

	stats := m.state.Statistics()

	if math.Abs(frequencyHz-stats.EstimatedPitchHz) > 100.0 {
		m.goertzel.Clear()
		m.state.appendRxData([]byte{'\n'})
	}

	stats.EstimatedPitchHz = frequencyHz

	m.goertzel.Process(frame, frequencyHz)
	envelope := m.goertzel.Filtered()

	result := Segment(envelope, m.paramsDecode.SpeedWPM, stats.EstimatedSpeedWPM, stats.SignalThreshold)
	stats.EstimatedSpeedWPM = result.EstimatedSpeedWPM
	stats.SignalThreshold = result.SignalThreshold

	nFramesInWindow := int(MaxWindowToAnalyzeSeconds*BaseSampleRate) / m.params.SamplesPerFrame
	cursorStart := (nFramesInWindow/2)*m.params.SamplesPerFrame/result.NDownsample
	cursorLen := m.params.SamplesPerFrame / result.NDownsample

	m.decoder.Advance(result, cursorStart, cursorLen)

	m.state.appendRxData(m.decoder.TakeRxData())
	m.state.setSignalF(append([]float32(nil), envelope...))
	spectrogram := m.stfft.Spectrogram()
	snapshot := make([][]float64, len(spectrogram))
	for i, row := range spectrogram {
		snapshot[i] = append([]float64(nil), row...)
	}
	m.state.publishFrame(stats, snapshot)

	m.receivingData = true
}

func decodeSampleFormat(buf []byte, format SampleFormat) []float32 {
	switch format {
	case SampleFormatU8:
		out := make([]float32, len(buf))
		for i, b := range buf {
			out[i] = (float32(int16(b)) - 128) / 128.0
		}
		return out
	case SampleFormatI8:
		out := make([]float32, len(buf))
		for i, b := range buf {
			out[i] = float32(int8(b)) / 128.0
		}
		return out
	case SampleFormatU16:
		n := len(buf) / 2
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			u := uint16(buf[2*i]) | uint16(buf[2*i+1])<<8
			out[i] = (float32(int32(u)) - 32768) / 32768.0
		}
		return out
	case SampleFormatI16:
		n := len(buf) / 2
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			u := uint16(buf[2*i]) | uint16(buf[2*i+1])<<8
			out[i] = float32(int16(u)) / 32768.0
		}
		return out
	case SampleFormatF32:
		n := len(buf) / 4
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			u := uint32(buf[4*i]) | uint32(buf[4*i+1])<<8 | uint32(buf[4*i+2])<<16 | uint32(buf[4*i+3])<<24
			out[i] = math.Float32frombits(u)
		}
		return out
	default:
		return nil
	}
}

// TakeRxData returns decoded bytes accumulated since the last call.
func (m *Modem) TakeRxData() []byte { return m.state.TakeRxData() }

// TakeSignalF returns the latest Goertzel envelope snapshot.
func (m *Modem) TakeSignalF() []float32 { return m.state.TakeSignalF() }

// TakeTxWaveformI16 returns the most recently encoded waveform as 16-bit
// signed PCM.
func (m *Modem) TakeTxWaveformI16() []int16 { return m.state.TakeTxWaveformI16() }

// Statistics returns a read-only copy of the rolling decode statistics.
func (m *Modem) Statistics() Statistics { return m.state.Statistics() }

// Spectrogram returns a read-only, chronologically ordered copy of the
// current spectrogram snapshot.
func (m *Modem) Spectrogram() [][]float64 { return m.state.Spectrogram() }

// SampleRates returns the (input, output) sample rates this modem was
// constructed with.
func (m *Modem) SampleRates() (float64, float64) {
	return m.params.SampleRateInp, m.params.SampleRateOut
}

// SampleSizes returns the (input, output) sample sizes in bytes.
func (m *Modem) SampleSizes() (int, int) {
	return m.sampleSizeBytesInp, m.sampleSizeBytesOut
}

// String renders a short diagnostic summary, useful for stats reporting
// front-ends.
func (m *Modem) String() string {
	s := m.state.Statistics()
	return fmt.Sprintf("pitch=%.1fHz speed=%.1fwpm threshold=%.2f",
		s.EstimatedPitchHz, s.EstimatedSpeedWPM, s.SignalThreshold)
}
