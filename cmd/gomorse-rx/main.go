// Command gomorse-rx decodes Morse audio, captured either from a sound
// device via portaudio or read from a .wav file, printing decoded text to
// stdout. Styled after the teacher's src/audio_stats.go periodic stderr
// reporting and src/gen_packets.go flag conventions.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/doismellburning/gomorse/internal/wavfile"
	"github.com/doismellburning/gomorse/modem"
	"github.com/gordonklaus/portaudio"
	"github.com/jochenvg/go-udev"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
)

func main() {
	var (
		inputFile     = pflag.StringP("input-file", "i", "", "Decode from a .wav file instead of the sound card.")
		statsInterval = pflag.IntP("stats-interval", "t", 10, "Seconds between stderr statistics reports; 0 disables.")
		listDevices   = pflag.BoolP("list-devices", "l", false, "List sound devices and exit.")
		freqMin       = pflag.Float64P("freq-min", "m", modem.DefaultFreqMinHz, "Lower bound of the pitch search band, Hz.")
		freqMax       = pflag.Float64P("freq-max", "M", modem.DefaultFreqMaxHz, "Upper bound of the pitch search band, Hz.")
		recordPattern = pflag.StringP("record-pattern", "r", "", "strftime(3) pattern for a .wav file to mirror captured audio into, e.g. \"rx-%Y%m%d-%H%M%S.wav\".")
	)
	pflag.Parse()

	if *listDevices {
		listCaptureDevices()
		return
	}

	params := modem.DefaultParameters()
	m := modem.NewModem(params)
	m.SetParametersDecode(modem.ParametersDecode{
		FrequencyHz: -1,
		SpeedWPM:    -1,
		FreqMinHz:   *freqMin,
		FreqMaxHz:   *freqMax,
		UseFilters:  true,
	})

	if *statsInterval > 0 {
		go reportStats(m, time.Duration(*statsInterval)*time.Second)
	}

	var recorder *recording
	if *recordPattern != "" {
		var err error
		recorder, err = newRecording(*recordPattern, int(params.SampleRateInp))
		if err != nil {
			fmt.Fprintln(os.Stderr, "gomorse-rx: opening record file:", err)
			os.Exit(-4)
		}
		defer recorder.Close()
	}

	var err error
	if *inputFile != "" {
		err = decodeFromFile(m, *inputFile, recorder)
	} else {
		err = decodeFromMicrophone(m, params.SampleRateInp, recorder)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "gomorse-rx:", err)
		switch err {
		case wavfile.ErrMultichannel:
			os.Exit(-5)
		case wavfile.ErrUnsupportedWidth:
			os.Exit(-6)
		}
		os.Exit(-4)
	}
}

// recording mirrors captured audio to a .wav file named by a strftime(3)
// pattern, styled after the teacher's src/xmit.go timestampPrefix helper.
type recording struct {
	file       *os.File
	sampleRate int
	samples    []float32
}

func newRecording(pattern string, sampleRate int) (*recording, error) {
	name, err := strftime.Format(pattern, time.Now())
	if err != nil {
		return nil, fmt.Errorf("formatting record filename: %w", err)
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}

	return &recording{file: f, sampleRate: sampleRate}, nil
}

func (r *recording) Append(samples []float32) {
	r.samples = append(r.samples, samples...)
}

func (r *recording) Close() error {
	defer r.file.Close()
	return wavfile.Write(r.file, r.samples, r.sampleRate)
}

// listCaptureDevices enumerates host audio-adjacent devices via go-udev,
// the teacher's device-enumeration dependency for non-portaudio backends.
func listCaptureDevices() {
	u := udev.Udev{}
	enum := u.NewEnumerate()
	enum.AddMatchSubsystem("sound")

	devices, err := enum.Devices()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gomorse-rx: listing devices:", err)
		return
	}
	for _, d := range devices {
		fmt.Printf("%s\t%s\n", d.Syspath(), d.PropertyValue("ID_MODEL"))
	}
}

func reportStats(m *modem.Modem, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		fmt.Fprintln(os.Stderr, m.String())
	}
}

func decodeFromFile(m *modem.Modem, path string, recorder *recording) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	format, samples, err := wavfile.Read(f)
	if err != nil {
		return err
	}

	pos := 0
	cb := func(buf []byte) int {
		bytesPerSample := modem.BytesPerSample(modem.SampleFormatF32)
		n := len(buf) / bytesPerSample
		if n > len(samples)-pos {
			n = len(samples) - pos
		}
		if n <= 0 {
			return 0
		}
		chunk := modem.ConvertSampleFormat(samples[pos:pos+n], modem.SampleFormatF32)
		copy(buf, chunk)
		if recorder != nil {
			recorder.Append(samples[pos : pos+n])
		}
		pos += n
		return len(chunk)
	}

	_ = format // sample rate mismatches are handled by the modem's resampler
	for m.Decode(cb) {
		os.Stdout.Write(m.TakeRxData())
	}
	os.Stdout.Write(m.TakeRxData())

	return nil
}

func decodeFromMicrophone(m *modem.Modem, sampleRate float64, recorder *recording) error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()

	in := make([]float32, modem.DefaultSamplesPerFrame)
	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, len(in), &in)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	cb := func(buf []byte) int {
		if err := stream.Read(); err != nil {
			return 0
		}
		if recorder != nil {
			recorder.Append(in)
		}
		chunk := modem.ConvertSampleFormat(in, modem.SampleFormatF32)
		n := copy(buf, chunk)
		return n
	}

	for {
		m.Decode(cb)
		os.Stdout.Write(m.TakeRxData())
	}
}
