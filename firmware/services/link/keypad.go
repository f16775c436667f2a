package link

import (
	"therapy/firmware/proto"
	"therapy/hal"
)

// Keypad session preset.
const (
	keypadLevel    = 3
	keypadHeat     = true
	keypadDuration = 10
)

// KeyFrame maps a host key press to the command frame a companion would send.
//
//	0-5  LEVEL
//	r    ROTATE
//	h    HEAT
//	a    ASSISTANT_CONFIG (level 3, heat, 10 min)
//	s    ASSISTANT_STOP
func KeyFrame(ev hal.KeyEvent) ([]byte, bool) {
	if !ev.Press {
		return nil, false
	}
	switch r := ev.Rune; {
	case r >= '0' && r <= '5':
		return proto.LevelFrame(uint8(r - '0')), true
	case r == 'r' || r == 'R':
		return []byte{byte(proto.OpRotate)}, true
	case r == 'h' || r == 'H':
		return []byte{byte(proto.OpHeat)}, true
	case r == 'a' || r == 'A':
		return proto.AssistantConfigFrame(keypadLevel, keypadHeat, keypadDuration), true
	case r == 's' || r == 'S':
		return []byte{byte(proto.OpAssistantStop)}, true
	}
	return nil, false
}
