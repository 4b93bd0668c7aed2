package modem

import "sync"

// stateBox is the double-buffered hand-off point between the core's single
// DSP thread and a consumer thread, per spec.md §5. The mutex is held only
// long enough to swap a pointer or copy a small struct — never while DSP
// work runs. Statistics and the spectrogram are read-only "peek" data,
// overwritten wholesale each frame; RxData, SignalF and TxWaveformI16 are
// move-out accumulators, matching the Take* accessors in spec.md §6.
type stateBox struct {
	mu sync.Mutex

	stats       Statistics
	spectrogram [][]float64

	rxData       []byte
	signalF      []float32
	txWaveformI16 []int16
}

// publishFrame overwrites the read-only statistics/spectrogram snapshot.
// Called once per decoded frame, after the spectrogram row is stable.
func (b *stateBox) publishFrame(stats Statistics, spectrogram [][]float64) {
	b.mu.Lock()
	b.stats = stats
	b.spectrogram = spectrogram
	b.mu.Unlock()
}

// appendRxData appends newly decoded bytes to the Rx accumulator.
func (b *stateBox) appendRxData(data []byte) {
	if len(data) == 0 {
		return
	}
	b.mu.Lock()
	b.rxData = append(b.rxData, data...)
	b.mu.Unlock()
}

// setSignalF replaces the envelope snapshot with the latest frame's.
func (b *stateBox) setSignalF(signalF []float32) {
	b.mu.Lock()
	b.signalF = signalF
	b.mu.Unlock()
}

// setTxWaveformI16 replaces the last-encoded waveform snapshot.
func (b *stateBox) setTxWaveformI16(w []int16) {
	b.mu.Lock()
	b.txWaveformI16 = w
	b.mu.Unlock()
}

// Statistics returns a read-only copy of the current rolling statistics.
func (b *stateBox) Statistics() Statistics {
	b.mu.Lock()
	s := b.stats
	b.mu.Unlock()
	return s
}

// Spectrogram returns a read-only copy of the current spectrogram snapshot.
func (b *stateBox) Spectrogram() [][]float64 {
	b.mu.Lock()
	s := b.spectrogram
	b.mu.Unlock()
	return s
}

// TakeRxData returns everything decoded since the last take, and clears
// the accumulator.
func (b *stateBox) TakeRxData() []byte {
	b.mu.Lock()
	d := b.rxData
	b.rxData = nil
	b.mu.Unlock()
	return d
}

// TakeSignalF returns the latest envelope snapshot and clears it.
func (b *stateBox) TakeSignalF() []float32 {
	b.mu.Lock()
	s := b.signalF
	b.signalF = nil
	b.mu.Unlock()
	return s
}

// TakeTxWaveformI16 returns the latest encoded waveform and clears it.
func (b *stateBox) TakeTxWaveformI16() []int16 {
	b.mu.Lock()
	w := b.txWaveformI16
	b.txWaveformI16 = nil
	b.mu.Unlock()
	return w
}
