// Package link bridges the companion transport and the kernel.
//
// Inbound frames go to the control task untouched. Vitals and waveform
// messages go out as 0xF1 and 0xF2 notifications.
package link

import (
	"errors"

	"go.uber.org/zap"

	"therapy/firmware/kernel"
	"therapy/firmware/proto"
	"therapy/firmware/telemetry"
	"therapy/hal"
)

// Caps are the endpoints the bridge talks to. Only Inbox and Control are required.
type Caps struct {
	Inbox   kernel.Capability
	Control kernel.Capability
	Audio   kernel.Capability
	Display kernel.Capability
}

type Service struct {
	link hal.Link
	keys hal.Keyboard
	caps Caps
	log  *zap.Logger
	rec  telemetry.Recorder

	connected  bool
	notifyFail bool
}

// New returns the bridge. keys may be nil; when set, keypad presses are
// translated into command frames.
func New(link hal.Link, keys hal.Keyboard, caps Caps, log *zap.Logger, rec telemetry.Recorder) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{link: link, keys: keys, caps: caps, log: log, rec: telemetry.OrNop(rec)}
}

func (s *Service) Run(ctx *kernel.Context) {
	in, ok := ctx.RecvChan(s.caps.Inbox)
	if !ok {
		s.log.Error("no inbox")
		return
	}

	var (
		frames <-chan []byte
		events <-chan hal.LinkEvent
		keys   <-chan hal.KeyEvent
	)
	if s.link != nil {
		frames = s.link.Frames()
		events = s.link.Events()
	}
	if s.keys != nil {
		keys = s.keys.Events()
	}

	for {
		select {
		case msg, ok := <-in:
			if !ok {
				return
			}
			s.handleOutbound(msg)
		case frame, ok := <-frames:
			if !ok {
				frames = nil
				continue
			}
			s.forward(ctx, frame)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleEvent(ctx, ev)
		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if frame, ok := KeyFrame(key); ok {
				s.log.Debug("keypad", zap.String("key", string(key.Rune)), zap.Binary("frame", frame))
				s.forward(ctx, frame)
			}
		}
	}
}

func (s *Service) handleOutbound(msg kernel.Message) {
	kind := proto.Kind(msg.Kind)
	switch kind {
	case proto.MsgVitals:
		hr, spo2, ok := proto.DecodeVitalsPayload(msg.Payload())
		if !ok {
			s.log.Warn("bad payload", zap.Stringer("kind", kind))
			return
		}
		s.notify(proto.VitalsFrame(hr, spo2))
	case proto.MsgWaveform:
		ir, ok := proto.DecodeWaveformPayload(msg.Payload())
		if !ok {
			s.log.Warn("bad payload", zap.Stringer("kind", kind))
			return
		}
		s.notify(proto.WaveformFrame(ir))
	default:
		s.log.Warn("unexpected message", zap.Stringer("kind", kind))
	}
}

func (s *Service) notify(frame []byte) {
	if s.link == nil {
		s.rec.Inc(telemetry.NotificationsDropped)
		return
	}
	err := s.link.Notify(frame)
	switch {
	case err == nil:
		s.rec.Inc(telemetry.NotificationsSent)
		s.notifyFail = false
	case errors.Is(err, hal.ErrNotConnected):
		s.rec.Inc(telemetry.NotificationsDropped)
	default:
		s.rec.Inc(telemetry.NotificationsDropped)
		if !s.notifyFail {
			s.log.Warn("notify failed", zap.Error(err))
			s.notifyFail = true
		}
	}
}

func (s *Service) forward(ctx *kernel.Context, frame []byte) {
	if len(frame) > kernel.MaxMessageBytes {
		frame = frame[:kernel.MaxMessageBytes]
	}
	res := ctx.SendToCapResult(s.caps.Control, uint16(proto.MsgCommandFrame), frame, kernel.Capability{})
	if res != kernel.SendOK {
		s.rec.Inc(telemetry.FramesDropped)
		s.log.Warn("command frame dropped", zap.Binary("frame", frame), zap.Stringer("result", res))
	}
}

func (s *Service) handleEvent(ctx *kernel.Context, ev hal.LinkEvent) {
	var (
		connected bool
		cue       proto.Cue
		line      string
	)
	switch ev {
	case hal.LinkConnected:
		connected, cue, line = true, proto.CueLinkConnected, "link up"
	case hal.LinkDisconnected:
		connected, cue, line = false, proto.CueLinkDisconnected, "link down"
	default:
		s.log.Warn("unknown link event", zap.Stringer("event", ev))
		return
	}
	if connected == s.connected {
		return
	}
	s.connected = connected
	s.log.Info("link state", zap.Stringer("event", ev))

	s.post(ctx, s.caps.Audio, proto.MsgCue, proto.CuePayload(cue))
	s.post(ctx, s.caps.Display, proto.MsgLinkState, proto.FlagPayload(connected))
	s.post(ctx, s.caps.Display, proto.MsgEventLine, proto.EventLinePayload(line))
}

func (s *Service) post(ctx *kernel.Context, to kernel.Capability, kind proto.Kind, payload []byte) {
	if !to.Valid() {
		return
	}
	if res := ctx.SendToCapResult(to, uint16(kind), payload, kernel.Capability{}); res != kernel.SendOK {
		s.rec.Inc(telemetry.FramesDropped)
	}
}
