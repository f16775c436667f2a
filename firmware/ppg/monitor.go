package ppg

import "time"

// DefaultEstimateInterval is the HR/SpO2 recompute cadence.
const DefaultEstimateInterval = 500 * time.Millisecond

// Vitals is a point-in-time estimate. The zero value means no valid reading.
type Vitals struct {
	HeartRate uint8
	SpO2      uint8
}

// Ready reports whether both estimates resolved.
func (v Vitals) Ready() bool { return v.HeartRate > 0 && v.SpO2 > 0 }

// Event describes what one processed sample produced.
type Event struct {
	// Waveform is the raw IR value, reported for every sample.
	Waveform uint32
	// SignalLost is set when the IR value was out of range and state was reset.
	SignalLost bool

	Beat        Beat
	BeatOutcome Outcome

	// VitalsDue is set when Vitals should be published.
	VitalsDue bool
	Vitals    Vitals
}

// Monitor runs buffer, filter, beat detector and estimators for one sensor.
//
// It performs no I/O and owns all of its state.
type Monitor struct {
	buf  Buffer
	hist History
	det  Detector

	interval     time.Duration
	lastEstimate time.Duration
	estimated    bool
}

// NewMonitor returns a Monitor that recomputes vitals every interval.
func NewMonitor(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultEstimateInterval
	}
	return &Monitor{interval: interval}
}

// Process consumes one sample captured at now.
func (m *Monitor) Process(s Sample, now time.Duration) Event {
	ev := Event{Waveform: s.IR}
	if !ValidIR(s.IR) {
		m.Reset()
		ev.SignalLost = true
		ev.VitalsDue = true
		return ev
	}

	m.buf.Push(s)
	if m.buf.Len() < SpO2Window {
		ev.VitalsDue = true
		return ev
	}

	ac := AC(&m.buf, s, IR)
	ev.Beat, ev.BeatOutcome = m.det.Update(ac, now)
	if ev.BeatOutcome == BeatAccepted && ev.Beat.Interval > 0 {
		m.hist.Push(ev.Beat.Interval)
	}

	if m.estimated && now-m.lastEstimate < m.interval {
		return ev
	}
	m.lastEstimate = now
	m.estimated = true
	ev.VitalsDue = true
	v := Vitals{HeartRate: HeartRate(&m.hist), SpO2: SpO2(&m.buf)}
	if v.Ready() {
		ev.Vitals = v
	}
	return ev
}

// Reset clears buffered samples, beat history and detector state.
func (m *Monitor) Reset() {
	m.buf.Reset()
	m.hist.Reset()
	m.det.Reset()
}

// Buffered returns the number of buffered samples.
func (m *Monitor) Buffered() int { return m.buf.Len() }

// Intervals returns the number of recorded beat intervals.
func (m *Monitor) Intervals() int { return m.hist.Len() }

// Current recomputes vitals from the present state without advancing the cadence.
func (m *Monitor) Current() Vitals {
	v := Vitals{HeartRate: HeartRate(&m.hist), SpO2: SpO2(&m.buf)}
	if !v.Ready() {
		return Vitals{}
	}
	return v
}
