// Package display renders the status panel and the event log.
package display

import (
	"fmt"

	"go.uber.org/zap"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"

	"therapy/firmware/kernel"
	"therapy/firmware/ppg"
	"therapy/firmware/proto"
	"therapy/hal"
)

const (
	// DefaultRefresh is the minimum interval between redraws, in ticks.
	DefaultRefresh = 250

	panelHeight = 112
)

type Service struct {
	disp    hal.Display
	ep      kernel.Capability
	refresh uint64
	log     *zap.Logger

	fb    hal.Framebuffer
	panel *fbRegion
	logs  *scrollRegion
	term  *tinyterm.Terminal

	state     panelState
	lastPanel panelState
	drawn     bool
	logDirty  bool
}

func New(disp hal.Display, ep kernel.Capability, refresh uint64, log *zap.Logger) *Service {
	if refresh == 0 {
		refresh = DefaultRefresh
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{disp: disp, ep: ep, refresh: refresh, log: log}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok {
		return
	}
	if s.disp != nil {
		s.fb = s.disp.Framebuffer()
	}
	if s.fb == nil {
		s.log.Info("no framebuffer; display disabled")
		for range ch {
		}
		return
	}
	s.reset()

	done := make(chan struct{})
	defer close(done)
	tick := ctx.Ticker(s.refresh, done)

	for {
		select {
		case now := <-tick:
			s.redraw(now)
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handle(ctx, msg)
		}
	}
}

func (s *Service) reset() {
	s.fb.ClearRGB(0, 0, 0)
	s.panel = newFBRegion(s.fb, 0, panelHeight)
	s.logs = newScrollRegion(newFBRegion(s.fb, panelHeight, s.fb.Height()-panelHeight))
	s.term = tinyterm.NewTerminal(s.logs)
	s.term.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: 10,
		FontOffset: 6,
	})
	s.drawn = false
	s.logDirty = true
}

func (s *Service) handle(ctx *kernel.Context, msg kernel.Message) {
	kind := proto.Kind(msg.Kind)
	switch kind {
	case proto.MsgVitals:
		hr, spo2, ok := proto.DecodeVitalsPayload(msg.Payload())
		if !ok {
			s.log.Warn("bad payload", zap.Stringer("kind", kind))
			return
		}
		s.state.heartRate, s.state.spo2 = hr, spo2
	case proto.MsgWaveform:
		ir, ok := proto.DecodeWaveformPayload(msg.Payload())
		if !ok {
			s.log.Warn("bad payload", zap.Stringer("kind", kind))
			return
		}
		s.state.finger = ppg.ValidIR(ir)
	case proto.MsgDeviceStatus:
		level, flags, remaining, duration, ok := proto.DecodeDeviceStatusPayload(msg.Payload())
		if !ok {
			s.log.Warn("bad payload", zap.Stringer("kind", kind))
			return
		}
		s.state.level, s.state.flags = level, flags
		s.state.remaining, s.state.duration = remaining, duration
	case proto.MsgLinkState:
		on, ok := proto.DecodeFlagPayload(msg.Payload())
		if !ok {
			s.log.Warn("bad payload", zap.Stringer("kind", kind))
			return
		}
		s.state.link = on
	case proto.MsgEventLine:
		s.appendLog(ctx.NowTick(), string(msg.Payload()))
	default:
		s.log.Warn("unexpected message", zap.Stringer("kind", kind))
	}
}

func (s *Service) appendLog(now uint64, line string) {
	sec := now / 1000
	fmt.Fprintf(s.term, "%02d:%02d %s\n", sec/60, sec%60, line)
	s.logDirty = true
}

// redraw presents the framebuffer when the panel or the log changed.
func (s *Service) redraw(now uint64) {
	panelDirty := !s.drawn || s.state != s.lastPanel
	if !panelDirty && !s.logDirty {
		return
	}
	if panelDirty {
		drawPanel(s.panel, s.state)
		s.lastPanel = s.state
		s.drawn = true
	}
	if s.logDirty {
		s.logs.flush()
		s.logDirty = false
	}
	if err := s.fb.Present(); err != nil {
		s.log.Debug("present", zap.Error(err), zap.Uint64("tick", now))
	}
}
