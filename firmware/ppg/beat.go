package ppg

import "time"

// Beat detector tuning.
const (
	BeatThreshold = 3000
	Refractory    = 300 * time.Millisecond
)

// Phase is the detector's position on the pulse waveform.
type Phase uint8

const (
	Rising Phase = iota
	Falling
)

func (p Phase) String() string {
	switch p {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	default:
		return "unknown"
	}
}

// Outcome classifies one detector update.
type Outcome uint8

const (
	NoBeat Outcome = iota
	BeatAccepted
	BeatRejected // candidate inside the refractory window
)

func (o Outcome) String() string {
	switch o {
	case NoBeat:
		return "none"
	case BeatAccepted:
		return "accepted"
	case BeatRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Beat is an accepted heartbeat.
type Beat struct {
	At time.Duration
	// Interval since the previous accepted beat; zero for the first beat after a reset.
	Interval time.Duration
}

// Detector finds peak-to-trough transitions in the AC-filtered IR signal.
//
// The zero value starts in the Rising phase with no beat history.
type Detector struct {
	phase    Phase
	peak     int32
	prev     int32
	last     time.Duration
	haveLast bool
}

// Phase returns the current phase.
func (d *Detector) Phase() Phase { return d.phase }

// Reset returns the detector to its initial state and forgets the last beat.
func (d *Detector) Reset() { *d = Detector{} }

// Update feeds one AC sample taken at now.
func (d *Detector) Update(ac int32, now time.Duration) (Beat, Outcome) {
	if ac > d.prev {
		d.phase = Rising
		if ac > d.peak {
			d.peak = ac
		}
		d.prev = ac
		return Beat{}, NoBeat
	}

	candidate := d.phase == Rising && d.peak-ac > BeatThreshold
	d.prev = ac
	if !candidate {
		return Beat{}, NoBeat
	}
	d.phase = Falling
	d.peak = 0

	if d.haveLast && now-d.last <= Refractory {
		return Beat{At: now}, BeatRejected
	}
	b := Beat{At: now}
	if d.haveLast {
		b.Interval = now - d.last
	}
	d.last = now
	d.haveLast = true
	return b, BeatAccepted
}
