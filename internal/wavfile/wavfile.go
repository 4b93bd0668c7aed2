// Package wavfile reads and writes single-channel PCM/float WAV files for
// the gomorse command-line tools. There is no reusable WAV library
// anywhere in the retrieval pack (the teacher reads WAV headers via a cgo
// C.struct_wav_header in src/gen_packets.go); this is a from-scratch
// RIFF reader/writer built against the canonical format, using only
// encoding/binary.
package wavfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Format describes the PCM layout of a WAV file's data chunk.
type Format struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	// Float is true for IEEE-float (formatTag 3) data, false for
	// integer PCM (formatTag 1).
	Float bool
}

// ErrMultichannel is returned by Read when a WAV file carries more than
// one channel; gomorse's modem operates on mono audio only, matching
// spec.md §6's exit-code table (-5: multichannel WAV).
var ErrMultichannel = fmt.Errorf("wavfile: multichannel WAV files are not supported")

// ErrUnsupportedWidth is returned for bit depths gomorse cannot decode,
// matching spec.md §6's exit code -6.
var ErrUnsupportedWidth = fmt.Errorf("wavfile: unsupported WAV sample width")

// Read parses a RIFF/WAVE stream and returns its format plus the data
// chunk converted to float32 samples in [-1, 1].
func Read(r io.Reader) (Format, []float32, error) {
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return Format{}, nil, fmt.Errorf("wavfile: reading RIFF header: %w", err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return Format{}, nil, fmt.Errorf("wavfile: not a RIFF/WAVE stream")
	}

	var format Format
	var formatTag uint16
	var haveFormat bool

	for {
		var chunkID [4]byte
		var chunkSize uint32
		if _, err := io.ReadFull(r, chunkID[:]); err != nil {
			if err == io.EOF {
				break
			}
			return Format{}, nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return Format{}, nil, err
		}

		switch string(chunkID[:]) {
		case "fmt ":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return Format{}, nil, err
			}
			formatTag = binary.LittleEndian.Uint16(body[0:2])
			format.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			format.BitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			format.Float = formatTag == 3
			haveFormat = true

		case "data":
			if !haveFormat {
				return Format{}, nil, fmt.Errorf("wavfile: data chunk before fmt chunk")
			}
			if format.Channels > 1 {
				return Format{}, nil, ErrMultichannel
			}

			raw := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, raw); err != nil {
				return Format{}, nil, err
			}

			samples, err := decodeSamples(raw, format)
			if err != nil {
				return Format{}, nil, err
			}
			return format, samples, nil

		default:
			if _, err := io.CopyN(io.Discard, r, int64(chunkSize)); err != nil {
				return Format{}, nil, err
			}
		}

		if chunkSize%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil {
				return Format{}, nil, err
			}
		}
	}

	return Format{}, nil, fmt.Errorf("wavfile: no data chunk found")
}

func decodeSamples(raw []byte, format Format) ([]float32, error) {
	if format.Float {
		if format.BitsPerSample != 32 {
			return nil, ErrUnsupportedWidth
		}
		n := len(raw) / 4
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(raw[4*i:])
			out[i] = math.Float32frombits(bits)
		}
		return out, nil
	}

	switch format.BitsPerSample {
	case 8:
		out := make([]float32, len(raw))
		for i, b := range raw {
			out[i] = (float32(int16(b)) - 128) / 128.0
		}
		return out, nil
	case 16:
		n := len(raw) / 2
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(raw[2*i:]))
			out[i] = float32(v) / 32768.0
		}
		return out, nil
	default:
		return nil, ErrUnsupportedWidth
	}
}

// Write emits a mono 16-bit PCM WAV file containing samples (expected in
// [-1, 1]) at sampleRate.
func Write(w io.Writer, samples []float32, sampleRate int) error {
	const bitsPerSample = 16
	const channels = 1
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign
	dataSize := len(samples) * 2

	if _, err := w.Write([]byte("RIFF")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(36+dataSize)); err != nil {
		return err
	}
	if _, err := w.Write([]byte("WAVE")); err != nil {
		return err
	}

	if _, err := w.Write([]byte("fmt ")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(16)); err != nil {
		return err
	}
	fields := []any{
		uint16(1), // PCM
		uint16(channels),
		uint32(sampleRate),
		uint32(byteRate),
		uint16(blockAlign),
		uint16(bitsPerSample),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}

	if _, err := w.Write([]byte("data")); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(dataSize)); err != nil {
		return err
	}
	for _, s := range samples {
		v := int16(32767 * s)
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	return nil
}
