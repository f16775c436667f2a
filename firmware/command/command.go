// Package command decodes inbound command frames and applies them to the
// device and session.
package command

import (
	"errors"
	"fmt"

	"therapy/firmware/proto"
	"therapy/firmware/session"
)

var (
	ErrEmptyFrame    = errors.New("empty frame")
	ErrShortFrame    = errors.New("frame too short")
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// Command is a decoded frame.
type Command struct {
	Op proto.Opcode
	// Level is set for OpLevel (unclamped).
	Level uint8
	// Session is set for OpAssistantConfig (unvalidated).
	Session session.Config
}

// Decode parses frame, enforcing the per-opcode minimum length.
// Trailing bytes beyond the opcode's payload are ignored.
func Decode(frame []byte) (Command, error) {
	if len(frame) == 0 {
		return Command{}, ErrEmptyFrame
	}
	op := proto.Opcode(frame[0])
	need, ok := op.MinFrameLen()
	if !ok {
		return Command{Op: op}, fmt.Errorf("opcode 0x%02x: %w", frame[0], ErrUnknownOpcode)
	}
	if len(frame) < need {
		return Command{Op: op}, fmt.Errorf("%s: got %d bytes, need %d: %w", op, len(frame), need, ErrShortFrame)
	}

	cmd := Command{Op: op}
	switch op {
	case proto.OpLevel:
		cmd.Level = frame[1]
	case proto.OpAssistantConfig:
		cmd.Session = session.Config{
			Level:           frame[1],
			Heat:            frame[2] != 0,
			DurationMinutes: uint16(frame[3])<<8 | uint16(frame[4]),
		}
	}
	return cmd, nil
}
