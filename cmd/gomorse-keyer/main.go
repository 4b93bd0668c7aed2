// Command gomorse-keyer reads a straight key wired to a GPIO line, times
// each key-down/key-up interval against a configured speed, and prints the
// decoded text to stdout while sounding a live sidetone. Grounded on the
// teacher's go.mod inclusion of github.com/warthog618/go-gpiocdev for line
// access; there is no teacher source to imitate for GPIO reads, so the
// polling shape instead follows the controller's own fixed-interval
// sampling style in modem/modem.go.
package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/doismellburning/gomorse/modem"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"
	"github.com/warthog618/go-gpiocdev"
)

func main() {
	var (
		chip       = pflag.StringP("chip", "c", "gpiochip0", "GPIO chip device.")
		line       = pflag.IntP("line", "l", 17, "GPIO line offset the key is wired to.")
		speedWPM   = pflag.Float64P("speed", "s", 20.0, "Keyer speed in words per minute, used to classify dot vs. dash.")
		frequency  = pflag.Float64P("frequency", "f", 600.0, "Sidetone frequency in Hz.")
		volume     = pflag.Float64P("volume", "v", 0.25, "Sidetone volume, 0.0 - 1.0.")
		pollPeriod = pflag.DurationP("poll-period", "p", time.Millisecond, "GPIO sampling period.")
		activeLow  = pflag.BoolP("active-low", "a", false, "Key line reads low while pressed.")
	)
	pflag.Parse()

	l, err := gpiocdev.RequestLine(*chip, *line, gpiocdev.AsInput)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gomorse-keyer: requesting GPIO line:", err)
		os.Exit(-1)
	}
	defer l.Close()

	sidetone := newSidetone(*frequency, *volume)
	if err := sidetone.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "gomorse-keyer: starting sidetone:", err)
		os.Exit(-2)
	}
	defer sidetone.Stop()

	k := &keyer{
		line:       l,
		activeLow:  *activeLow,
		ditMs:      1200.0 / *speedWPM,
		pollPeriod: *pollPeriod,
		sidetone:   sidetone,
	}

	k.run()
}

// sidetone is a continuously-running portaudio output stream that emits a
// pure tone while keyed and silence otherwise, driven from the audio
// callback so keying latency is never at the mercy of the GPIO poll loop.
type sidetone struct {
	frequency float64
	volume    float64
	keyed     atomic.Bool
	phase     float64
	stream    *portaudio.Stream
}

func newSidetone(frequency, volume float64) *sidetone {
	return &sidetone{frequency: frequency, volume: volume}
}

func (s *sidetone) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}

	callback := func(out []float32) {
		if !s.keyed.Load() {
			for i := range out {
				out[i] = 0
			}
			return
		}
		step := 2 * math.Pi * s.frequency / modem.BaseSampleRate
		for i := range out {
			out[i] = float32(s.volume * math.Sin(s.phase))
			s.phase += step
		}
	}

	stream, err := portaudio.OpenDefaultStream(0, 1, modem.BaseSampleRate, modem.DefaultSamplesPerFrame, callback)
	if err != nil {
		portaudio.Terminate()
		return err
	}
	s.stream = stream

	return stream.Start()
}

func (s *sidetone) Stop() {
	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
	}
	portaudio.Terminate()
}

func (s *sidetone) SetKeyed(keyed bool) {
	s.keyed.Store(keyed)
}

// keyer accumulates a dot/dash code for the letter currently being keyed,
// finalizing the letter once the key has been up longer than an
// inter-letter gap.
type keyer struct {
	line       *gpiocdev.Line
	activeLow  bool
	ditMs      float64
	pollPeriod time.Duration
	sidetone   *sidetone

	code       strings.Builder
	pressedAt  time.Time
	releasedAt time.Time
	pressed    bool
	haveLetter bool
}

func (k *keyer) run() {
	ticker := time.NewTicker(k.pollPeriod)
	defer ticker.Stop()

	for range ticker.C {
		down, err := k.keyDown()
		if err != nil {
			continue
		}
		now := time.Now()

		switch {
		case down && !k.pressed:
			k.pressed = true
			k.pressedAt = now
			k.sidetone.SetKeyed(true)

		case !down && k.pressed:
			k.pressed = false
			k.releasedAt = now
			k.sidetone.SetKeyed(false)
			elapsed := now.Sub(k.pressedAt).Milliseconds()
			if float64(elapsed) > k.ditMs*2 {
				k.code.WriteByte('1')
			} else {
				k.code.WriteByte('0')
			}
			k.haveLetter = true

		case !down && !k.pressed && k.haveLetter:
			gapMs := now.Sub(k.releasedAt).Milliseconds()
			if float64(gapMs) > k.ditMs*3 {
				k.finalizeLetter()
			}
			if float64(gapMs) > k.ditMs*7 {
				fmt.Print(" ")
			}
		}
	}
}

func (k *keyer) keyDown() (bool, error) {
	v, err := k.line.Value()
	if err != nil {
		return false, err
	}
	if k.activeLow {
		return v == 0, nil
	}
	return v == 1, nil
}

func (k *keyer) finalizeLetter() {
	code := k.code.String()
	k.code.Reset()
	k.haveLetter = false

	if code == "" {
		return
	}
	ch, _ := modem.LookupChar(code)
	fmt.Print(string(ch))
}
