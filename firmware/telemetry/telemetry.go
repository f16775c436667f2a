// Package telemetry defines the counters and gauges reported by the firmware.
package telemetry

// Counter names.
const (
	Samples              = "samples"
	SensorErrors         = "sensor_errors"
	SignalLost           = "signal_lost"
	BeatsAccepted        = "beats_accepted"
	BeatsRejected        = "beats_rejected"
	VitalsEmitted        = "vitals_emitted"
	FramesDropped        = "frames_dropped"
	Commands             = "commands"
	CommandsRejected     = "commands_rejected"
	NotificationsSent    = "notifications_sent"
	NotificationsDropped = "notifications_dropped"
	CuesPlayed           = "cues_played"
	CuesDropped          = "cues_dropped"
	SessionsStarted      = "sessions_started"
	SessionsCompleted    = "sessions_completed"
)

// Gauge names.
const (
	HeartRate        = "heart_rate_bpm"
	SpO2             = "spo2_percent"
	Level            = "intensity_level"
	SessionRemaining = "session_remaining_seconds"
)

// Recorder receives telemetry. Implementations must be safe for concurrent use.
type Recorder interface {
	Inc(counter string)
	// IncLabel increments a counter partitioned by one label value, such as an opcode.
	IncLabel(counter, label string)
	Set(gauge string, v float64)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Inc(string)              {}
func (Nop) IncLabel(string, string) {}
func (Nop) Set(string, float64)     {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
