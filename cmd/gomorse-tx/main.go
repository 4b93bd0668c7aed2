// Command gomorse-tx renders text as a Morse waveform, either to a sound
// device via portaudio or to a .wav file. Flag shape follows the teacher's
// src/gen_packets.go conventions (spf13/pflag, long + short forms).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/doismellburning/gomorse/modem"
	"github.com/doismellburning/gomorse/internal/wavfile"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"
)

func main() {
	var (
		outputFile = pflag.StringP("output-file", "o", "", "Send output to a .wav file instead of the sound card.")
		frequency  = pflag.Float64P("frequency", "f", 550.0, "Tone frequency in Hz.")
		volume     = pflag.Float64P("volume", "v", 0.25, "Tone volume, 0.0 - 1.0.")
		speedWPM   = pflag.Float64P("speed", "s", 25.0, "Character speed in words per minute.")
		farnsworth = pflag.Float64P("farnsworth", "F", 0.0, "Farnsworth speed in WPM; 0 means equal to --speed.")
	)
	pflag.Parse()

	text := strings.Join(pflag.Args(), " ")
	if text == "" {
		fmt.Fprintln(os.Stderr, "gomorse-tx: no text given")
		os.Exit(-1)
	}

	if *farnsworth <= 0 {
		*farnsworth = *speedWPM
	}

	params := modem.DefaultParameters()
	m := modem.NewModem(params)

	if !m.Init([]byte(text)) {
		fmt.Fprintln(os.Stderr, "gomorse-tx: failed to arm transmission")
		os.Exit(-2)
	}

	if !m.SetParametersEncode(modem.ParametersEncode{
		Volume:             *volume,
		FrequencyHz:        *frequency,
		SpeedCharactersWPM: *speedWPM,
		SpeedFarnsworthWPM: *farnsworth,
	}) {
		fmt.Fprintln(os.Stderr, "gomorse-tx: invalid encode parameters")
		os.Exit(-1)
	}

	if *outputFile != "" {
		if err := encodeToFile(m, *outputFile, params.SampleRateOut); err != nil {
			fmt.Fprintln(os.Stderr, "gomorse-tx:", err)
			os.Exit(-4)
		}
		return
	}

	if err := encodeToSpeaker(m, params.SampleRateOut); err != nil {
		fmt.Fprintln(os.Stderr, "gomorse-tx:", err)
		os.Exit(-4)
	}
}

func encodeToFile(m *modem.Modem, path string, sampleRate float64) error {
	var waveform []int16
	ok := m.Encode(func(buf []byte) {})
	if !ok {
		return fmt.Errorf("no transmission armed")
	}
	waveform = m.TakeTxWaveformI16()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	samples := make([]float32, len(waveform))
	for i, v := range waveform {
		samples[i] = float32(v) / 32768.0
	}

	return wavfile.Write(f, samples, int(sampleRate))
}

func encodeToSpeaker(m *modem.Modem, sampleRate float64) error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()

	var waveform []float32
	ok := m.Encode(func(buf []byte) {})
	if !ok {
		return fmt.Errorf("no transmission armed")
	}
	for _, v := range m.TakeTxWaveformI16() {
		waveform = append(waveform, float32(v)/32768.0)
	}

	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, len(waveform), &waveform)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	return stream.Write()
}
