// Package session implements the timed therapy session lifecycle.
package session

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"therapy/firmware/device"
	"therapy/firmware/proto"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
)

// Limits for a session configuration.
const (
	MinLevel    = 1
	MaxLevel    = device.MaxLevel
	MinDuration = 1
	MaxDuration = 60

	WarningSeconds = 60
	statusEvery    = 30

	DefaultSettleDelay = 500 * time.Millisecond
)

// Phase is the lifecycle position of the session.
type Phase uint8

const (
	Idle Phase = iota
	Active
	Warned
	Complete
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Warned:
		return "warned"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Event reports what a Tick did.
type Event uint8

const (
	EventNone Event = iota
	EventWarning
	EventCompleted
)

// Config is a validated session request.
type Config struct {
	Level           uint8
	Heat            bool
	DurationMinutes uint16
}

// Validate checks the level and duration ranges.
func (c Config) Validate() error {
	if c.Level < MinLevel || c.Level > MaxLevel {
		return fmt.Errorf("level %d outside [%d,%d]: %w", c.Level, MinLevel, MaxLevel, ErrInvalidArgument)
	}
	if c.DurationMinutes < MinDuration || c.DurationMinutes > MaxDuration {
		return fmt.Errorf("duration %d min outside [%d,%d]: %w", c.DurationMinutes, MinDuration, MaxDuration, ErrInvalidArgument)
	}
	return nil
}

// Status is a point-in-time view of the session.
type Status struct {
	Phase     Phase
	Config    Config
	Elapsed   uint32
	Remaining uint32
}

// Active reports whether a session is running.
func (s Status) Active() bool { return s.Phase == Active || s.Phase == Warned }

// Options configures a Machine.
type Options struct {
	// Now returns monotonic time since boot.
	Now func() time.Duration
	// Sleep blocks for the settle delay when a running session is replaced.
	Sleep       func(time.Duration)
	SettleDelay time.Duration
	Log         *zap.Logger
}

// Machine owns the single session instance. It shares the device controller
// with the command dispatcher; both must run on the same goroutine.
type Machine struct {
	dev *device.Controller
	ann device.Announcer
	log *zap.Logger

	now    func() time.Duration
	sleep  func(time.Duration)
	settle time.Duration

	phase      Phase
	cfg        Config
	start      time.Duration
	announced  bool
	statusMark uint32
}

// New returns an idle Machine.
func New(dev *device.Controller, ann device.Announcer, opts Options) *Machine {
	m := &Machine{
		dev:    dev,
		ann:    ann,
		log:    opts.Log,
		now:    opts.Now,
		sleep:  opts.Sleep,
		settle: opts.SettleDelay,
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.now == nil {
		boot := time.Now()
		m.now = func() time.Duration { return time.Since(boot) }
	}
	if m.sleep == nil {
		m.sleep = time.Sleep
	}
	if m.settle <= 0 {
		m.settle = DefaultSettleDelay
	}
	return m
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Active reports whether a session is running.
func (m *Machine) Active() bool { return m.phase == Active || m.phase == Warned }

// Config returns the configuration of the current or last session.
func (m *Machine) Config() Config { return m.cfg }

// Configure starts a session, replacing any running one after the settle delay.
func (m *Machine) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		m.log.Error("session configure rejected", zap.Error(err))
		return err
	}

	if m.Active() {
		m.log.Warn("replacing running session",
			zap.Uint8("old_level", m.cfg.Level),
			zap.Uint16("old_duration_min", m.cfg.DurationMinutes))
		_ = m.Stop()
		m.sleep(m.settle)
	}

	m.cfg = cfg
	m.start = m.now()
	m.phase = Active
	m.announced = false
	m.statusMark = 0

	m.dev.SetLevel(cfg.Level)
	m.dev.SetHeat(cfg.Heat)

	m.announceStart()
	if c, ok := proto.LevelCue(cfg.Level); ok {
		m.notify(c)
	}
	if cfg.Heat {
		m.notify(proto.CueHeatOn)
	}
	m.notify(proto.CueReadingOK)

	m.log.Info("session started",
		zap.Uint8("intensity", cfg.Level),
		zap.Bool("heat", cfg.Heat),
		zap.Uint16("duration_min", cfg.DurationMinutes))
	return nil
}

// Stop ends the running session and turns the actuators off.
func (m *Machine) Stop() error {
	if !m.Active() {
		m.log.Warn("no active session to stop")
		return fmt.Errorf("stop: %w", ErrInvalidState)
	}
	m.phase = Idle
	m.dev.StopAll()
	m.notify(proto.CueRotate)
	m.log.Info("session stopped", zap.Uint32("elapsed_s", m.elapsed()))
	return nil
}

// Tick advances the session clock. It is called about once per second.
func (m *Machine) Tick() Event {
	if !m.Active() {
		return EventNone
	}

	elapsed := m.elapsed()
	total := m.total()
	var remaining uint32
	if elapsed < total {
		remaining = total - elapsed
	}

	if elapsed == 0 {
		m.announceStart()
	}

	if remaining == 0 {
		m.notify(proto.CueSessionComplete)
		m.phase = Complete
		m.log.Info("session complete", zap.Uint32("total_s", total))
		m.phase = Idle
		return EventCompleted
	}

	if mark := elapsed / statusEvery; mark > m.statusMark {
		m.statusMark = mark
		m.log.Info("session status",
			zap.Uint32("elapsed_s", elapsed),
			zap.Uint32("total_s", total),
			zap.Uint32("remaining_s", remaining))
	}

	if remaining <= WarningSeconds && m.phase != Warned {
		m.notify(proto.CueOneMinuteWarning)
		m.phase = Warned
		m.log.Info("one minute remaining")
		return EventWarning
	}
	return EventNone
}

// ElapsedSeconds returns whole seconds since the session started, or 0 when idle.
func (m *Machine) ElapsedSeconds() uint32 {
	if !m.Active() {
		return 0
	}
	return m.elapsed()
}

// RemainingSeconds returns whole seconds left, or 0 when idle.
func (m *Machine) RemainingSeconds() uint32 {
	if !m.Active() {
		return 0
	}
	elapsed, total := m.elapsed(), m.total()
	if elapsed >= total {
		return 0
	}
	return total - elapsed
}

// Status returns a snapshot of the session.
func (m *Machine) Status() Status {
	return Status{
		Phase:     m.phase,
		Config:    m.cfg,
		Elapsed:   m.ElapsedSeconds(),
		Remaining: m.RemainingSeconds(),
	}
}

func (m *Machine) elapsed() uint32 {
	d := m.now() - m.start
	if d < 0 {
		return 0
	}
	return uint32(d / time.Second)
}

func (m *Machine) total() uint32 { return uint32(m.cfg.DurationMinutes) * 60 }

func (m *Machine) announceStart() {
	if m.announced {
		return
	}
	m.announced = true
	m.notify(proto.CueSessionStart)
}

func (m *Machine) notify(c proto.Cue) {
	if m.ann != nil {
		m.ann.Notify(c)
	}
}
