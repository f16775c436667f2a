// Package acquire runs the sampling loop: sensor -> monitor -> vitals and
// waveform messages.
package acquire

import (
	"time"

	"go.uber.org/zap"

	"therapy/firmware/kernel"
	"therapy/firmware/ppg"
	"therapy/firmware/proto"
	"therapy/firmware/telemetry"
	"therapy/hal"
)

const (
	DefaultPeriod     = 10 * time.Millisecond
	DefaultBackoff    = 100 * time.Millisecond
	DefaultMaxCatchUp = 4

	displayEvery = 25
	beatFlash    = 50 * time.Millisecond
)

type Config struct {
	Period   time.Duration
	Estimate time.Duration
	// Backoff is the pause after a reading without a finger on the sensor.
	Backoff time.Duration
	// MaxCatchUp bounds how many missed periods one wake-up processes.
	MaxCatchUp int
}

// Outputs are the endpoints fed by the loop. Either may be the zero Capability.
type Outputs struct {
	Link    kernel.Capability
	Display kernel.Capability
}

// Service owns the sample buffer, beat history and detector.
type Service struct {
	sensor hal.PPGSensor
	led    hal.GPIOPin
	out    Outputs
	cfg    Config
	mon    *ppg.Monitor
	log    *zap.Logger
	rec    telemetry.Recorder

	samples   uint64
	lost      bool
	sensorErr bool
	ledOn     bool
	ledOff    uint64

	shown     ppg.Vitals
	shownOnce bool

	// started, when set, observes the first sampling deadline (tests).
	started func(next uint64)
}

// New returns the acquisition task. led may be nil.
func New(sensor hal.PPGSensor, led hal.GPIOPin, out Outputs, cfg Config, log *zap.Logger, rec telemetry.Recorder) *Service {
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.MaxCatchUp <= 0 {
		cfg.MaxCatchUp = DefaultMaxCatchUp
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		sensor: sensor,
		led:    led,
		out:    out,
		cfg:    cfg,
		mon:    ppg.NewMonitor(cfg.Estimate),
		log:    log,
		rec:    telemetry.OrNop(rec),
	}
}

func ticks(d time.Duration) uint64 {
	n := uint64(d / time.Millisecond)
	if n == 0 {
		n = 1
	}
	return n
}

func (s *Service) Run(ctx *kernel.Context) {
	if s.sensor == nil {
		s.log.Error("no sensor")
		return
	}
	period := ticks(s.cfg.Period)
	backoff := ticks(s.cfg.Backoff)

	next := ctx.NowTick() + period
	if s.started != nil {
		s.started(next)
	}
	for {
		now := ctx.NowTick()
		for now < next {
			now = ctx.WaitTick(now)
		}

		lost := false
		for n := 0; next <= now && n < s.cfg.MaxCatchUp; n++ {
			lost = s.step(ctx, next)
			if lost {
				break
			}
			next += period
		}

		switch {
		case lost:
			next = now + backoff
		case next <= now:
			s.log.Debug("acquisition behind, skipping", zap.Uint64("behind_ms", now-next))
			next = now + period
		}
	}
}

// step samples once at tick and reports whether the signal was lost.
func (s *Service) step(ctx *kernel.Context, tick uint64) bool {
	red, ir, err := s.sensor.ReadSample()
	if err != nil {
		s.rec.Inc(telemetry.SensorErrors)
		if !s.sensorErr {
			s.log.Warn("sensor read failed", zap.Error(err))
			s.sensorErr = true
		}
		red, ir = 0, 0
	} else if s.sensorErr {
		s.log.Info("sensor read recovered")
		s.sensorErr = false
	}

	sample := ppg.Sample{Red: red & ppg.SampleMask, IR: ir & ppg.SampleMask}
	ev := s.mon.Process(sample, time.Duration(tick)*time.Millisecond)
	s.rec.Inc(telemetry.Samples)

	s.send(ctx, s.out.Link, proto.MsgWaveform, proto.WaveformPayload(ev.Waveform))
	if s.samples%displayEvery == 0 {
		s.send(ctx, s.out.Display, proto.MsgWaveform, proto.WaveformPayload(ev.Waveform))
	}
	s.samples++

	if ev.SignalLost {
		s.rec.Inc(telemetry.SignalLost)
		if !s.lost {
			s.log.Info("no finger on sensor", zap.Uint32("ir", ev.Waveform))
			s.lost = true
		}
	} else if s.lost {
		s.log.Info("finger detected", zap.Uint32("ir", ev.Waveform))
		s.lost = false
	}

	switch ev.BeatOutcome {
	case ppg.BeatAccepted:
		s.rec.Inc(telemetry.BeatsAccepted)
		s.log.Debug("beat", zap.Duration("interval", ev.Beat.Interval))
		s.setLED(true)
		s.ledOff = tick + ticks(beatFlash)
	case ppg.BeatRejected:
		s.rec.Inc(telemetry.BeatsRejected)
	}
	if s.ledOn && tick >= s.ledOff {
		s.setLED(false)
	}

	if ev.VitalsDue {
		s.publishVitals(ctx, ev.Vitals)
	}
	return ev.SignalLost
}

func (s *Service) publishVitals(ctx *kernel.Context, v ppg.Vitals) {
	payload := proto.VitalsPayload(v.HeartRate, v.SpO2)
	s.send(ctx, s.out.Link, proto.MsgVitals, payload)
	s.rec.Inc(telemetry.VitalsEmitted)
	s.rec.Set(telemetry.HeartRate, float64(v.HeartRate))
	s.rec.Set(telemetry.SpO2, float64(v.SpO2))

	if s.shownOnce && v == s.shown {
		return
	}
	if s.send(ctx, s.out.Display, proto.MsgVitals, payload) {
		s.shown = v
		s.shownOnce = true
	}
	if v.Ready() {
		s.log.Debug("vitals", zap.Uint8("hr", v.HeartRate), zap.Uint8("spo2", v.SpO2))
	}
}

func (s *Service) setLED(on bool) {
	s.ledOn = on
	if s.led == nil {
		return
	}
	if err := s.led.Write(on); err != nil {
		s.log.Debug("beat led", zap.Error(err))
	}
}

// send never blocks the sampling loop; a full mailbox drops the message.
func (s *Service) send(ctx *kernel.Context, to kernel.Capability, kind proto.Kind, payload []byte) bool {
	if !to.Valid() {
		return false
	}
	if res := ctx.SendToCapResult(to, uint16(kind), payload, kernel.Capability{}); res != kernel.SendOK {
		s.rec.Inc(telemetry.FramesDropped)
		return false
	}
	return true
}
