package proto

// Cue identifies a user-facing audio notification.
type Cue uint8

const (
	CueStartup Cue = iota
	CueLinkConnected
	CueLinkDisconnected
	CueRotate
	CueHeatOn
	CueHeatOff
	CueLevel1
	CueLevel2
	CueLevel3
	CueLevel4
	CueLevel5
	CueSpO2Low
	CueHRHigh
	CueReadingOK
	CueSessionStart
	CueSessionComplete
	CueOneMinuteWarning
	CuePleaseStayStill
	CueMeasuring

	cueCount
)

var cueNames = [cueCount]string{
	CueStartup:          "startup",
	CueLinkConnected:    "link_connected",
	CueLinkDisconnected: "link_disconnected",
	CueRotate:           "rotate",
	CueHeatOn:           "heat_on",
	CueHeatOff:          "heat_off",
	CueLevel1:           "level_1",
	CueLevel2:           "level_2",
	CueLevel3:           "level_3",
	CueLevel4:           "level_4",
	CueLevel5:           "level_5",
	CueSpO2Low:          "spo2_low",
	CueHRHigh:           "hr_high",
	CueReadingOK:        "reading_ok",
	CueSessionStart:     "session_start",
	CueSessionComplete:  "session_complete",
	CueOneMinuteWarning: "one_minute_warning",
	CuePleaseStayStill:  "please_stay_still",
	CueMeasuring:        "measuring",
}

func (c Cue) Valid() bool { return c < cueCount }

func (c Cue) String() string {
	if !c.Valid() {
		return "unknown"
	}
	return cueNames[c]
}

// LevelCue returns the cue announcing an intensity level. Level 0 has no cue.
func LevelCue(level uint8) (Cue, bool) {
	if level == 0 || level > 5 {
		return 0, false
	}
	return CueLevel1 + Cue(level-1), true
}
