// Package app wires the HAL, the kernel and the firmware tasks together.
package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"therapy/firmware/kernel"
	"therapy/firmware/logging"
	"therapy/firmware/ppg"
	"therapy/firmware/services/acquire"
	"therapy/firmware/services/actuator"
	"therapy/firmware/services/audio"
	"therapy/firmware/services/control"
	"therapy/firmware/services/display"
	"therapy/firmware/services/link"
	"therapy/firmware/session"
	"therapy/firmware/telemetry"
	"therapy/hal"
	"therapy/internal/buildinfo"
)

type Config struct {
	LogLevel  string
	LogFormat string

	SamplePeriod     time.Duration
	EstimateInterval time.Duration
	NoFingerBackoff  time.Duration
	SessionTick      time.Duration
	SettleDelay      time.Duration
	CueGap           time.Duration
	DisplayRefresh   time.Duration

	// Keypad turns host key presses into command frames.
	Keypad bool

	// Recorder receives telemetry; nil discards it.
	Recorder telemetry.Recorder
}

func DefaultConfig() Config {
	return Config{
		LogLevel:         "info",
		LogFormat:        "console",
		SamplePeriod:     acquire.DefaultPeriod,
		EstimateInterval: ppg.DefaultEstimateInterval,
		NoFingerBackoff:  acquire.DefaultBackoff,
		SessionTick:      control.DefaultTick,
		SettleDelay:      session.DefaultSettleDelay,
		CueGap:           audio.DefaultGap,
		DisplayRefresh:   display.DefaultRefresh * time.Millisecond,
		Keypad:           true,
	}
}

var errConfig = errors.New("invalid config")

// Validate rejects timings the firmware cannot honour on a 1 ms tick.
func (c Config) Validate() error {
	ms := func(name string, d, floor time.Duration) error {
		if d < floor {
			return fmt.Errorf("%s %s below %s: %w", name, d, floor, errConfig)
		}
		if d%time.Millisecond != 0 {
			return fmt.Errorf("%s %s is not a whole number of milliseconds: %w", name, d, errConfig)
		}
		return nil
	}
	return errors.Join(
		ms("sample period", c.SamplePeriod, time.Millisecond),
		ms("estimate interval", c.EstimateInterval, c.SamplePeriod),
		ms("no-finger backoff", c.NoFingerBackoff, 0),
		ms("session tick", c.SessionTick, time.Millisecond),
		ms("settle delay", c.SettleDelay, 0),
		ms("cue gap", c.CueGap, 0),
		ms("display refresh", c.DisplayRefresh, time.Millisecond),
	)
}

type system struct {
	k   *kernel.Kernel
	log *zap.Logger
}

// New initializes and starts the firmware with the default config.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, DefaultConfig())
}

// Run starts the firmware and blocks forever (TinyGo entrypoint).
func Run(h hal.HAL) {
	_ = New(h)
	select {}
}

func NewWithConfig(h hal.HAL, cfg Config) func() error {
	if err := cfg.Validate(); err != nil {
		if l := h.Logger(); l != nil {
			l.WriteLineString("config: " + err.Error() + "; using defaults")
		}
		rec := cfg.Recorder
		cfg = DefaultConfig()
		cfg.Recorder = rec
	}
	_ = newSystem(h, cfg)
	return func() error { return nil }
}

func RunWithConfig(h hal.HAL, cfg Config) {
	_ = NewWithConfig(h, cfg)
	select {}
}

func newSystem(h hal.HAL, cfg Config) *system {
	log := logging.New(h.Logger(), cfg.LogLevel, cfg.LogFormat, "therapy")
	rec := telemetry.OrNop(cfg.Recorder)
	installPanicHandler(h, log.Named("panic"))
	log.Info("boot", zap.String("build", buildinfo.String()))

	k := kernel.New()
	newEP := func() kernel.Capability { return k.NewEndpoint(kernel.RightSend | kernel.RightRecv) }
	controlEP := newEP()
	actuatorEP := newEP()
	audioEP := newEP()
	linkEP := newEP()
	displayEP := newEP()

	bootStep(h, "actuator")
	drv := actuator.NewDriver(h.Motor(), h.GPIO(), log.Named("actuator"))
	k.AddTask(actuator.New(drv, actuatorEP.Restrict(kernel.RightRecv), log.Named("actuator")))

	bootStep(h, "audio")
	var pwm hal.PWMAudio
	if a := h.Audio(); a != nil {
		pwm = a.PWM()
	}
	k.AddTask(audio.New(audioEP.Restrict(kernel.RightRecv), pwm, audio.Config{
		Gap:        cfg.CueGap,
		StartupCue: true,
	}, log.Named("audio"), rec))

	bootStep(h, "display")
	k.AddTask(display.New(h.Display(), displayEP.Restrict(kernel.RightRecv),
		uint64(cfg.DisplayRefresh/time.Millisecond), log.Named("display")))

	bootStep(h, "control")
	k.AddTask(control.New(control.Caps{
		Inbox:    controlEP.Restrict(kernel.RightRecv),
		Actuator: actuatorEP.Restrict(kernel.RightSend),
		Audio:    audioEP.Restrict(kernel.RightSend),
		Display:  displayEP.Restrict(kernel.RightSend),
	}, control.Config{
		Tick:        cfg.SessionTick,
		SettleDelay: cfg.SettleDelay,
	}, log.Named("control"), rec))

	bootStep(h, "link")
	var keys hal.Keyboard
	if in := h.Input(); cfg.Keypad && in != nil {
		keys = in.Keyboard()
	}
	k.AddTask(link.New(h.Link(), keys, link.Caps{
		Inbox:   linkEP.Restrict(kernel.RightRecv),
		Control: controlEP.Restrict(kernel.RightSend),
		Audio:   audioEP.Restrict(kernel.RightSend),
		Display: displayEP.Restrict(kernel.RightSend),
	}, log.Named("link"), rec))

	bootStep(h, "acquire")
	led, err := hal.OutputPin(h.GPIO(), hal.PinLED)
	if err != nil {
		log.Warn("beat indicator unavailable", zap.Error(err))
	}
	k.AddTask(acquire.New(h.PPG(), led, acquire.Outputs{
		Link:    linkEP.Restrict(kernel.RightSend),
		Display: displayEP.Restrict(kernel.RightSend),
	}, acquire.Config{
		Period:   cfg.SamplePeriod,
		Estimate: cfg.EstimateInterval,
		Backoff:  cfg.NoFingerBackoff,
	}, log.Named("acquire"), rec))

	if ht := h.Time(); ht != nil {
		if ch := ht.Ticks(); ch != nil {
			go func() {
				for seq := range ch {
					k.TickTo(seq)
				}
			}()
		}
	}
	bootStep(h, "running")

	return &system{k: k, log: log}
}
