package audio

import "therapy/firmware/proto"

// Tone is one step of a cue pattern. Hz 0 is silence.
type Tone struct {
	Hz uint16
	Ms uint16
}

const (
	beepHz = 880
	beepMs = 70
)

// Pattern returns the tone sequence rendered for c.
func Pattern(c proto.Cue) []Tone {
	switch c {
	case proto.CueStartup:
		return []Tone{{523, 100}, {659, 100}, {784, 160}}
	case proto.CueLinkConnected:
		return []Tone{{659, 80}, {988, 120}}
	case proto.CueLinkDisconnected:
		return []Tone{{988, 80}, {659, 120}}
	case proto.CueRotate:
		return []Tone{{740, 60}, {0, 40}, {740, 60}}
	case proto.CueHeatOn:
		return []Tone{{587, 80}, {880, 160}}
	case proto.CueHeatOff:
		return []Tone{{880, 80}, {587, 160}}
	case proto.CueLevel1, proto.CueLevel2, proto.CueLevel3, proto.CueLevel4, proto.CueLevel5:
		n := int(c-proto.CueLevel1) + 1
		out := make([]Tone, 0, 2*n-1)
		for i := 0; i < n; i++ {
			if i > 0 {
				out = append(out, Tone{0, beepMs})
			}
			out = append(out, Tone{beepHz, beepMs})
		}
		return out
	case proto.CueSpO2Low:
		return []Tone{{440, 300}, {0, 100}, {440, 300}}
	case proto.CueHRHigh:
		return []Tone{{1175, 100}, {0, 60}, {1175, 100}, {0, 60}, {1175, 100}}
	case proto.CueReadingOK:
		return []Tone{{1319, 120}}
	case proto.CueSessionStart:
		return []Tone{{523, 100}, {659, 100}, {784, 200}}
	case proto.CueSessionComplete:
		return []Tone{{784, 150}, {659, 150}, {523, 300}}
	case proto.CueOneMinuteWarning:
		return []Tone{{988, 200}, {0, 100}, {988, 200}}
	case proto.CuePleaseStayStill:
		return []Tone{{660, 400}}
	case proto.CueMeasuring:
		return []Tone{{1047, 50}, {0, 50}, {1047, 50}}
	default:
		return nil
	}
}

// renderTone writes a square wave for t into dst, returning the samples used.
func renderTone(dst []int16, t Tone, sampleRate uint32, amplitude int16) []int16 {
	n := int(uint32(t.Ms) * sampleRate / 1000)
	if cap(dst) < n {
		dst = make([]int16, n)
	}
	dst = dst[:n]
	if t.Hz == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return dst
	}
	half := int(sampleRate / (2 * uint32(t.Hz)))
	if half < 1 {
		half = 1
	}
	for i := range dst {
		if (i/half)%2 == 0 {
			dst[i] = amplitude
		} else {
			dst[i] = -amplitude
		}
	}
	return dst
}
