// Package audio renders cue notifications as tone patterns on the PWM sink.
package audio

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"therapy/firmware/kernel"
	"therapy/firmware/proto"
	"therapy/firmware/telemetry"
	"therapy/hal"
)

const (
	DefaultSampleRate = 8000
	DefaultGap        = 300 * time.Millisecond
	DefaultQueueLen   = 8

	amplitude = 6000
)

type Config struct {
	SampleRate uint32
	Gap        time.Duration // silence between cues; zero selects DefaultGap, negative none
	Volume     uint8
	QueueLen   int
	StartupCue bool
}

// Service queues cues from any task and plays them one at a time.
//
// Intake never blocks on playback: when the queue is full the newest cue is
// dropped.
type Service struct {
	ep  kernel.Capability
	pwm hal.PWMAudio
	cfg Config
	log *zap.Logger
	rec telemetry.Recorder

	sleep func(time.Duration)
	// played, when set, observes every rendered cue (tests).
	played func(proto.Cue)
}

func New(ep kernel.Capability, pwm hal.PWMAudio, cfg Config, log *zap.Logger, rec telemetry.Recorder) *Service {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	switch {
	case cfg.Gap == 0:
		cfg.Gap = DefaultGap
	case cfg.Gap < 0:
		cfg.Gap = 0
	}
	if cfg.QueueLen <= 0 {
		cfg.QueueLen = DefaultQueueLen
	}
	if cfg.Volume == 0 {
		cfg.Volume = 200
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		ep:    ep,
		pwm:   pwm,
		cfg:   cfg,
		log:   log,
		rec:   telemetry.OrNop(rec),
		sleep: time.Sleep,
	}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.ep)
	if !ok {
		return
	}

	queue := make(chan proto.Cue, s.cfg.QueueLen)
	go s.renderLoop(queue)
	defer close(queue)

	if s.cfg.StartupCue {
		s.enqueue(queue, proto.CueStartup)
	}

	for msg := range ch {
		if proto.Kind(msg.Kind) != proto.MsgCue {
			continue
		}
		c, ok := proto.DecodeCuePayload(msg.Payload())
		if !ok {
			s.log.Warn("bad cue payload", zap.Binary("payload", msg.Payload()))
			continue
		}
		s.enqueue(queue, c)
	}
}

func (s *Service) enqueue(queue chan<- proto.Cue, c proto.Cue) {
	select {
	case queue <- c:
	default:
		s.rec.Inc(telemetry.CuesDropped)
		s.log.Warn("cue dropped, queue full", zap.Stringer("cue", c))
	}
}

func (s *Service) renderLoop(queue <-chan proto.Cue) {
	for c := range queue {
		if err := s.play(c); err != nil {
			s.log.Error("cue playback failed", zap.Stringer("cue", c), zap.Error(err))
		}
		s.rec.Inc(telemetry.CuesPlayed)
		if s.played != nil {
			s.played(c)
		}
		if s.cfg.Gap > 0 {
			s.sleep(s.cfg.Gap)
		}
	}
}

func (s *Service) play(c proto.Cue) error {
	pattern := Pattern(c)
	s.log.Info("cue", zap.Stringer("cue", c), zap.Int("tones", len(pattern)))
	if s.pwm == nil || len(pattern) == 0 {
		return nil
	}

	if err := s.pwm.Start(s.cfg.SampleRate); err != nil {
		return fmt.Errorf("audio: pwm start: %w", err)
	}
	s.pwm.SetVolume(s.cfg.Volume)

	// Buffered sinks pace themselves; a bare PWM pin needs a sample clock.
	buffered, _ := s.pwm.(interface{ PendingSamples() int })
	var t *time.Ticker
	if buffered == nil {
		t = time.NewTicker(time.Second / time.Duration(s.cfg.SampleRate))
		defer t.Stop()
	}

	var buf []int16
	for _, tone := range pattern {
		buf = renderTone(buf, tone, s.cfg.SampleRate, amplitude)
		for _, v := range buf {
			if t != nil {
				<-t.C
			}
			s.pwm.WriteSample(v)
		}
	}

	if buffered != nil {
		for buffered.PendingSamples() > 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
	return s.pwm.Stop()
}
