// Package device holds the commanded actuator configuration and the
// collaborator interfaces used to drive the hardware and the audio cues.
package device

import (
	"fmt"

	"therapy/firmware/proto"
)

// MaxLevel is the highest intensity level.
const MaxLevel = 5

// State is the commanded actuator configuration.
//
// A State is owned by a single goroutine (the control service); it is not
// safe for concurrent use.
type State struct {
	Level   uint8
	Reverse bool
	Heat    bool
}

func (s State) String() string {
	dir := "fwd"
	if s.Reverse {
		dir = "rev"
	}
	heat := "off"
	if s.Heat {
		heat = "on"
	}
	return fmt.Sprintf("level=%d dir=%s heat=%s", s.Level, dir, heat)
}

// Actuator drives the motor and heater. Calls are fire-and-forget.
type Actuator interface {
	SetLevel(level uint8)
	SetHeat(on bool)
	SetDirection(reverse bool)
	StopAll()
}

// Announcer plays audio cues. Notify must not wait for playback.
type Announcer interface {
	Notify(c proto.Cue)
}

// Controller applies State changes to an Actuator, keeping State and the
// hardware in step.
type Controller struct {
	state State
	act   Actuator
}

// NewController returns a controller with everything off.
func NewController(act Actuator) *Controller {
	return &Controller{act: act}
}

// State returns a copy of the commanded state.
func (c *Controller) State() State { return c.state }

// SetLevel clamps level to MaxLevel, applies it and returns the applied value.
func (c *Controller) SetLevel(level uint8) uint8 {
	if level > MaxLevel {
		level = MaxLevel
	}
	c.state.Level = level
	if c.act != nil {
		c.act.SetLevel(level)
	}
	return level
}

// SetHeat applies the heater state.
func (c *Controller) SetHeat(on bool) {
	c.state.Heat = on
	if c.act != nil {
		c.act.SetHeat(on)
	}
}

// ToggleDirection flips rotation and reapplies the current level when running.
func (c *Controller) ToggleDirection() bool {
	c.state.Reverse = !c.state.Reverse
	if c.act != nil {
		c.act.SetDirection(c.state.Reverse)
		if c.state.Level > 0 {
			c.act.SetLevel(c.state.Level)
		}
	}
	return c.state.Reverse
}

// StopAll turns the motor and heater off. Direction is kept.
func (c *Controller) StopAll() {
	c.state.Level = 0
	c.state.Heat = false
	if c.act != nil {
		c.act.StopAll()
	}
}
