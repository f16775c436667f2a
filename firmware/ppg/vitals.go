package ppg

import "time"

// Plausibility limits.
const (
	MinHeartRate = 40
	MaxHeartRate = 200
	MinSpO2      = 70
	MaxSpO2      = 100
)

// HistorySize is the number of inter-beat intervals kept.
const HistorySize = 4

// History holds the most recent inter-beat intervals, oldest first.
type History struct {
	intervals [HistorySize]time.Duration
	n         int
}

// Push records an interval, evicting the oldest when full.
func (h *History) Push(d time.Duration) {
	if h.n < HistorySize {
		h.intervals[h.n] = d
		h.n++
		return
	}
	copy(h.intervals[:], h.intervals[1:])
	h.intervals[HistorySize-1] = d
}

func (h *History) Len() int { return h.n }

func (h *History) Reset() { h.n = 0 }

// Intervals returns the recorded intervals, oldest first.
func (h *History) Intervals() []time.Duration {
	out := make([]time.Duration, h.n)
	copy(out, h.intervals[:h.n])
	return out
}

// HeartRate returns the mean-interval heart rate in bpm, or 0 when fewer than
// two intervals are known or the result is outside [MinHeartRate, MaxHeartRate].
func HeartRate(h *History) uint8 {
	if h.n < 2 {
		return 0
	}
	var sum int64
	for i := 0; i < h.n; i++ {
		sum += h.intervals[i].Milliseconds()
	}
	avg := sum / int64(h.n)
	if avg <= 0 {
		return 0
	}
	bpm := 60000 / avg
	if bpm < MinHeartRate || bpm > MaxHeartRate {
		return 0
	}
	return uint8(bpm)
}

// SpO2 estimates oxygen saturation from the newest SpO2Window samples of b
// using SpO2 = 110 - 25*R, R = (redAC/redDC) / (irAC/irDC), clamped to
// [MinSpO2, MaxSpO2] and truncated. It returns 0 when not enough samples are
// buffered or any AC or DC term is zero.
func SpO2(b *Buffer) uint8 {
	if b.Len() < SpO2Window {
		return 0
	}
	redDC, _ := b.MovingAverage(Red, SpO2Window)
	irDC, _ := b.MovingAverage(IR, SpO2Window)
	redAC, _ := PeakToPeak(b, Red)
	irAC, _ := PeakToPeak(b, IR)
	if redDC == 0 || irDC == 0 || redAC == 0 || irAC == 0 {
		return 0
	}

	r := (float64(redAC) / float64(redDC)) / (float64(irAC) / float64(irDC))
	spo2 := 110.0 - 25.0*r
	if spo2 > MaxSpO2 {
		spo2 = MaxSpO2
	}
	if spo2 < MinSpO2 {
		spo2 = MinSpO2
	}
	return uint8(spo2)
}
