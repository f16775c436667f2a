// Package control is the single owner of the device state and the session.
//
// Command frames and the session tick are serialized on one goroutine, so
// the dispatcher and the session machine never need locks.
package control

import (
	"bytes"
	"fmt"
	"time"

	"go.uber.org/zap"

	actuatorclient "therapy/firmware/client/actuator"
	audioclient "therapy/firmware/client/audio"
	"therapy/firmware/command"
	"therapy/firmware/device"
	"therapy/firmware/kernel"
	"therapy/firmware/proto"
	"therapy/firmware/session"
	"therapy/firmware/telemetry"
)

const DefaultTick = time.Second

type Config struct {
	Tick        time.Duration
	SettleDelay time.Duration
}

// Caps are the endpoints the control task talks to.
type Caps struct {
	Inbox    kernel.Capability
	Actuator kernel.Capability
	Audio    kernel.Capability
	Display  kernel.Capability
}

type Service struct {
	caps Caps
	cfg  Config
	log  *zap.Logger
	rec  telemetry.Recorder

	dev  *device.Controller
	sess *session.Machine
	disp *command.Dispatcher

	lastStatus []byte
}

func New(caps Caps, cfg Config, log *zap.Logger, rec telemetry.Recorder) *Service {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{caps: caps, cfg: cfg, log: log, rec: telemetry.OrNop(rec)}
}

func ticks(d time.Duration) uint64 {
	n := uint64(d / time.Millisecond)
	if n == 0 {
		n = 1
	}
	return n
}

func (s *Service) Run(ctx *kernel.Context) {
	in, ok := ctx.RecvChan(s.caps.Inbox)
	if !ok {
		s.log.Error("no inbox")
		return
	}
	s.bind(ctx)

	done := make(chan struct{})
	defer close(done)
	tick := ctx.Ticker(ticks(s.cfg.Tick), done)

	s.publishStatus(ctx)
	for {
		select {
		case msg, ok := <-in:
			if !ok {
				return
			}
			if proto.Kind(msg.Kind) != proto.MsgCommandFrame {
				s.log.Warn("unexpected message", zap.Stringer("kind", proto.Kind(msg.Kind)))
				continue
			}
			s.handleFrame(ctx, msg.Payload())
		case <-tick:
			s.handleTick(ctx)
		}
		s.publishStatus(ctx)
	}
}

// bind builds the controller, session and dispatcher on the task's context.
func (s *Service) bind(ctx *kernel.Context) {
	act := actuatorclient.New(ctx, s.caps.Actuator, s.rec)
	ann := audioclient.New(ctx, s.caps.Audio, s.rec)

	s.dev = device.NewController(act)
	s.sess = session.New(s.dev, ann, session.Options{
		Now:         func() time.Duration { return time.Duration(ctx.NowTick()) * time.Millisecond },
		Sleep:       func(d time.Duration) { ctx.Sleep(ticks(d)) },
		SettleDelay: s.cfg.SettleDelay,
		Log:         s.log.Named("session"),
	})
	s.disp = command.NewDispatcher(s.dev, s.sess, ann, s.log.Named("command"))
}

func (s *Service) handleFrame(ctx *kernel.Context, frame []byte) {
	label := "empty"
	var op proto.Opcode
	if len(frame) > 0 {
		op = proto.Opcode(frame[0])
		label = op.String()
	}
	s.rec.IncLabel(telemetry.Commands, label)

	if err := s.disp.Dispatch(frame); err != nil {
		s.rec.Inc(telemetry.CommandsRejected)
		if command.Rejected(err) {
			s.log.Warn("command rejected", zap.String("op", label), zap.Error(err))
		}
		return
	}

	switch op {
	case proto.OpAssistantConfig:
		cfg := s.sess.Config()
		s.rec.Inc(telemetry.SessionsStarted)
		s.event(ctx, fmt.Sprintf("session started L%d %dmin", cfg.Level, cfg.DurationMinutes))
	case proto.OpAssistantStop:
		s.event(ctx, "session stopped")
	}
}

func (s *Service) handleTick(ctx *kernel.Context) {
	switch s.sess.Tick() {
	case session.EventWarning:
		s.event(ctx, "1 min remaining")
	case session.EventCompleted:
		s.rec.Inc(telemetry.SessionsCompleted)
		s.event(ctx, "session complete")
	}
}

func (s *Service) publishStatus(ctx *kernel.Context) {
	st := s.dev.State()
	ss := s.sess.Status()

	var flags proto.StatusFlags
	if st.Reverse {
		flags |= proto.StatusReverse
	}
	if st.Heat {
		flags |= proto.StatusHeat
	}
	if ss.Active() {
		flags |= proto.StatusSessionActive
	}
	if ss.Phase == session.Warned {
		flags |= proto.StatusWarned
	}

	remaining := ss.Remaining
	if remaining > 0xFFFF {
		remaining = 0xFFFF
	}
	payload := proto.DeviceStatusPayload(st.Level, flags, uint16(remaining), uint8(ss.Config.DurationMinutes))
	if bytes.Equal(payload, s.lastStatus) {
		return
	}

	s.rec.Set(telemetry.Level, float64(st.Level))
	s.rec.Set(telemetry.SessionRemaining, float64(remaining))
	if s.send(ctx, proto.MsgDeviceStatus, payload) {
		s.lastStatus = payload
	}
}

func (s *Service) event(ctx *kernel.Context, line string) {
	s.send(ctx, proto.MsgEventLine, proto.EventLinePayload(line))
}

func (s *Service) send(ctx *kernel.Context, kind proto.Kind, payload []byte) bool {
	if !s.caps.Display.Valid() {
		return false
	}
	if res := ctx.SendToCapResult(s.caps.Display, uint16(kind), payload, kernel.Capability{}); res != kernel.SendOK {
		s.rec.Inc(telemetry.FramesDropped)
		return false
	}
	return true
}
