package proto

// Opcode is the first byte of an inbound command frame.
type Opcode uint8

const (
	OpRotate          Opcode = 0x01
	OpHeat            Opcode = 0x02
	OpAssistantLegacy Opcode = 0x03
	OpLevel           Opcode = 0x04
	OpAssistantConfig Opcode = 0x06
	OpAssistantStop   Opcode = 0x07
)

func (o Opcode) String() string {
	switch o {
	case OpRotate:
		return "rotate"
	case OpHeat:
		return "heat"
	case OpAssistantLegacy:
		return "assistant_legacy"
	case OpLevel:
		return "level"
	case OpAssistantConfig:
		return "assistant_config"
	case OpAssistantStop:
		return "assistant_stop"
	default:
		return "unknown"
	}
}

// MinFrameLen returns the minimum frame length (opcode included) for o.
func (o Opcode) MinFrameLen() (int, bool) {
	switch o {
	case OpRotate, OpHeat, OpAssistantLegacy, OpAssistantStop:
		return 1, true
	case OpLevel:
		return 2, true
	case OpAssistantConfig:
		return 5, true
	default:
		return 0, false
	}
}

// LevelFrame encodes a LEVEL command.
func LevelFrame(level uint8) []byte { return []byte{uint8(OpLevel), level} }

// AssistantConfigFrame encodes an ASSISTANT_CONFIG command.
func AssistantConfigFrame(level uint8, heat bool, durationMin uint16) []byte {
	var h uint8
	if heat {
		h = 1
	}
	return []byte{uint8(OpAssistantConfig), level, h, uint8(durationMin >> 8), uint8(durationMin)}
}
