// Package actuator owns the motor, direction and heater outputs.
package actuator

import (
	"go.uber.org/zap"

	"therapy/firmware/kernel"
	"therapy/firmware/proto"
)

// Service applies actuator messages to a Driver.
type Service struct {
	drv *Driver
	ep  kernel.Capability
	log *zap.Logger
}

func New(drv *Driver, ep kernel.Capability, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{drv: drv, ep: ep, log: log}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok {
		return
	}

	for msg := range ch {
		s.handle(msg)
	}
}

func (s *Service) handle(msg kernel.Message) {
	kind := proto.Kind(msg.Kind)
	var err error
	switch kind {
	case proto.MsgActuatorLevel:
		level, ok := proto.DecodeActuatorLevelPayload(msg.Payload())
		if !ok {
			s.log.Warn("bad payload", zap.Stringer("kind", kind))
			return
		}
		err = s.drv.SetLevel(level)
	case proto.MsgActuatorHeat:
		on, ok := proto.DecodeFlagPayload(msg.Payload())
		if !ok {
			s.log.Warn("bad payload", zap.Stringer("kind", kind))
			return
		}
		err = s.drv.SetHeat(on)
	case proto.MsgActuatorDirection:
		reverse, ok := proto.DecodeFlagPayload(msg.Payload())
		if !ok {
			s.log.Warn("bad payload", zap.Stringer("kind", kind))
			return
		}
		err = s.drv.SetDirection(reverse)
	case proto.MsgActuatorStop:
		err = s.drv.StopAll()
	default:
		return
	}

	if err != nil {
		s.log.Error("actuator write failed", zap.Stringer("kind", kind), zap.Error(err))
		return
	}
	s.log.Info("actuator",
		zap.Uint8("intensity", s.drv.Level()),
		zap.Uint16("duty", Duty(s.drv.Level())),
		zap.Bool("reverse", s.drv.Reverse()),
		zap.Bool("heat", s.drv.Heat()))
}
