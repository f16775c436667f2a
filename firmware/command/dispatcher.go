package command

import (
	"errors"

	"go.uber.org/zap"

	"therapy/firmware/device"
	"therapy/firmware/proto"
	"therapy/firmware/session"
)

// Dispatcher applies command frames. It shares the device controller and
// session machine with the session tick and must run on the same goroutine.
type Dispatcher struct {
	dev  *device.Controller
	sess *session.Machine
	ann  device.Announcer
	log  *zap.Logger
}

func NewDispatcher(dev *device.Controller, sess *session.Machine, ann device.Announcer, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{dev: dev, sess: sess, ann: ann, log: log}
}

// Dispatch decodes and applies one frame.
//
// Malformed frames and rejected session transitions are logged and returned
// for accounting only; nothing is reported back to the sender.
func (d *Dispatcher) Dispatch(frame []byte) error {
	cmd, err := Decode(frame)
	if err != nil {
		d.log.Warn("command dropped", zap.Binary("frame", frame), zap.Error(err))
		return err
	}

	switch cmd.Op {
	case proto.OpRotate:
		reverse := d.dev.ToggleDirection()
		d.log.Info("command rotate", zap.Bool("reverse", reverse))
		d.notify(proto.CueRotate)

	case proto.OpHeat:
		on := !d.dev.State().Heat
		d.dev.SetHeat(on)
		d.log.Info("command heat", zap.Bool("on", on))
		if on {
			d.notify(proto.CueHeatOn)
		} else {
			d.notify(proto.CueHeatOff)
		}

	case proto.OpLevel:
		applied := d.dev.SetLevel(cmd.Level)
		d.log.Info("command level", zap.Uint8("requested", cmd.Level), zap.Uint8("applied", applied))
		if c, ok := proto.LevelCue(applied); ok {
			d.notify(c)
		}

	case proto.OpAssistantConfig:
		d.log.Info("command assistant config",
			zap.Uint8("intensity", cmd.Session.Level),
			zap.Bool("heat", cmd.Session.Heat),
			zap.Uint16("duration_min", cmd.Session.DurationMinutes))
		if err := d.sess.Configure(cmd.Session); err != nil {
			return err
		}

	case proto.OpAssistantStop:
		d.log.Info("command assistant stop")
		if err := d.sess.Stop(); err != nil {
			return err
		}

	case proto.OpAssistantLegacy:
		d.log.Info("command assistant (legacy) ignored")
	}
	return nil
}

// Rejected reports whether err came from a well-formed frame whose session
// transition was refused, as opposed to a malformed frame.
func Rejected(err error) bool {
	return errors.Is(err, session.ErrInvalidArgument) || errors.Is(err, session.ErrInvalidState)
}

func (d *Dispatcher) notify(c proto.Cue) {
	if d.ann != nil {
		d.ann.Notify(c)
	}
}
