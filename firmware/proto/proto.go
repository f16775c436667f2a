package proto

// Kind identifies the message type carried in kernel.Message.Kind.
type Kind uint16

const (
	// MsgCommandFrame carries one raw inbound command frame.
	MsgCommandFrame Kind = iota + 1
	MsgVitals
	MsgWaveform
	MsgCue
	MsgActuatorLevel
	MsgActuatorHeat
	MsgActuatorDirection
	MsgActuatorStop
	MsgLinkState
	MsgDeviceStatus
	MsgEventLine
)

func (k Kind) String() string {
	switch k {
	case MsgCommandFrame:
		return "command_frame"
	case MsgVitals:
		return "vitals"
	case MsgWaveform:
		return "waveform"
	case MsgCue:
		return "cue"
	case MsgActuatorLevel:
		return "actuator_level"
	case MsgActuatorHeat:
		return "actuator_heat"
	case MsgActuatorDirection:
		return "actuator_direction"
	case MsgActuatorStop:
		return "actuator_stop"
	case MsgLinkState:
		return "link_state"
	case MsgDeviceStatus:
		return "device_status"
	case MsgEventLine:
		return "event_line"
	default:
		return "unknown"
	}
}
