// Command gomorse-rig pairs live decoding with a Hamlib-controlled
// transceiver: it polls the rig's VFO frequency and reports it alongside
// the decoder's estimated audio pitch, so an operator tuning for a Morse
// signal can see both numbers together. Grounded on the teacher's go.mod
// inclusion of github.com/xylo04/goHamlib; no teacher source touches a
// rig directly; the polling/report cadence follows the same
// ticker-driven shape used for gomorse-rx's --stats-interval reporter.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/doismellburning/gomorse/modem"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"
	"github.com/xylo04/goHamlib"
)

func main() {
	var (
		rigModel   = pflag.IntP("rig-model", "m", goHamlib.RIG_MODEL_DUMMY, "Hamlib rig model number.")
		rigDevice  = pflag.StringP("rig-device", "d", "/dev/ttyUSB0", "Serial device the rig is attached to.")
		pollPeriod = pflag.DurationP("poll-period", "p", time.Second, "Rig polling interval.")
	)
	pflag.Parse()

	rig := goHamlib.NewRig(*rigModel)
	if err := rig.SetConf("rig_pathname", *rigDevice); err != nil {
		fmt.Fprintln(os.Stderr, "gomorse-rig: configuring rig:", err)
		os.Exit(-1)
	}
	if err := rig.Open(); err != nil {
		fmt.Fprintln(os.Stderr, "gomorse-rig: opening rig:", err)
		os.Exit(-1)
	}
	defer rig.Close()

	params := modem.DefaultParameters()
	m := modem.NewModem(params)
	m.SetParametersDecode(modem.DefaultParametersDecode())

	if err := portaudio.Initialize(); err != nil {
		fmt.Fprintln(os.Stderr, "gomorse-rig: initializing audio:", err)
		os.Exit(-2)
	}
	defer portaudio.Terminate()

	in := make([]float32, modem.DefaultSamplesPerFrame)
	stream, err := portaudio.OpenDefaultStream(1, 0, params.SampleRateInp, len(in), &in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gomorse-rig: opening capture stream:", err)
		os.Exit(-2)
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "gomorse-rig: starting capture:", err)
		os.Exit(-2)
	}
	defer stream.Stop()

	go reportRigFreq(rig, *pollPeriod, m)

	cb := func(buf []byte) int {
		if err := stream.Read(); err != nil {
			return 0
		}
		chunk := modem.ConvertSampleFormat(in, modem.SampleFormatF32)
		return copy(buf, chunk)
	}

	for {
		m.Decode(cb)
		os.Stdout.Write(m.TakeRxData())
	}
}

func reportRigFreq(rig *goHamlib.Rig, interval time.Duration, m *modem.Modem) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		freqHz, err := rig.GetFreq(goHamlib.RIG_VFO_CURR)
		if err != nil {
			fmt.Fprintln(os.Stderr, "gomorse-rig: reading VFO:", err)
			continue
		}
		stats := m.Statistics()
		fmt.Fprintf(os.Stderr, "VFO %.3f kHz | audio pitch %.0f Hz | speed %.1f WPM\n",
			freqHz/1000.0, stats.EstimatedPitchHz, stats.EstimatedSpeedWPM)
	}
}
