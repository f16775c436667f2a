package session

import (
	"errors"
	"testing"
	"time"

	"therapy/firmware/device"
	"therapy/firmware/proto"
)

type fakeClock struct {
	t     time.Duration
	slept []time.Duration
}

func (c *fakeClock) now() time.Duration { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.t += d
}

type cueLog struct {
	cues []proto.Cue
}

func (l *cueLog) Notify(c proto.Cue) { l.cues = append(l.cues, c) }

func (l *cueLog) count(c proto.Cue) int {
	n := 0
	for _, got := range l.cues {
		if got == c {
			n++
		}
	}
	return n
}

type nopActuator struct {
	stops int
}

func (a *nopActuator) SetLevel(uint8)    {}
func (a *nopActuator) SetHeat(bool)      {}
func (a *nopActuator) SetDirection(bool) {}
func (a *nopActuator) StopAll()          { a.stops++ }

type fixture struct {
	clock *fakeClock
	cues  *cueLog
	act   *nopActuator
	dev   *device.Controller
	m     *Machine
}

func newFixture() *fixture {
	f := &fixture{clock: &fakeClock{t: 5 * time.Second}, cues: &cueLog{}, act: &nopActuator{}}
	f.dev = device.NewController(f.act)
	f.m = New(f.dev, f.cues, Options{Now: f.clock.now, Sleep: f.clock.sleep})
	return f
}

func (f *fixture) tickAt(elapsed time.Duration, start time.Duration) Event {
	f.clock.t = start + elapsed
	return f.m.Tick()
}

func TestConfigureStartsSession(t *testing.T) {
	f := newFixture()
	if err := f.m.Configure(Config{Level: 3, Heat: true, DurationMinutes: 10}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if f.m.Phase() != Active {
		t.Fatalf("Phase() = %s, want active", f.m.Phase())
	}
	if got := f.m.ElapsedSeconds(); got != 0 {
		t.Fatalf("ElapsedSeconds() = %d, want 0", got)
	}
	if got := f.m.RemainingSeconds(); got != 600 {
		t.Fatalf("RemainingSeconds() = %d, want 600", got)
	}
	want := device.State{Level: 3, Heat: true}
	if f.dev.State() != want {
		t.Fatalf("device state = %v, want %v", f.dev.State(), want)
	}
	wantCues := []proto.Cue{proto.CueSessionStart, proto.CueLevel3, proto.CueHeatOn, proto.CueReadingOK}
	if len(f.cues.cues) != len(wantCues) {
		t.Fatalf("cues = %v, want %v", f.cues.cues, wantCues)
	}
	for i := range wantCues {
		if f.cues.cues[i] != wantCues[i] {
			t.Fatalf("cues = %v, want %v", f.cues.cues, wantCues)
		}
	}
}

func TestConfigureRejectsOutOfRange(t *testing.T) {
	cases := []Config{
		{Level: 0, DurationMinutes: 10},
		{Level: 6, DurationMinutes: 10},
		{Level: 3, DurationMinutes: 0},
		{Level: 3, DurationMinutes: 61},
	}
	for _, cfg := range cases {
		f := newFixture()
		err := f.m.Configure(cfg)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Configure(%+v) = %v, want ErrInvalidArgument", cfg, err)
		}
		if f.m.Active() || len(f.cues.cues) != 0 || f.dev.State() != (device.State{}) {
			t.Fatalf("Configure(%+v) changed state", cfg)
		}
	}
}

func TestOneMinuteSessionLifecycle(t *testing.T) {
	f := newFixture()
	start := f.clock.t
	if err := f.m.Configure(Config{Level: 2, DurationMinutes: 1}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if ev := f.tickAt(0, start); ev != EventWarning {
		t.Fatalf("tick at 0s = %d, want warning (60s remaining)", ev)
	}
	if f.cues.count(proto.CueSessionStart) != 1 {
		t.Fatalf("session start announced %d times, want 1", f.cues.count(proto.CueSessionStart))
	}
	for s := 1; s <= 59; s++ {
		if ev := f.tickAt(time.Duration(s)*time.Second, start); ev != EventNone {
			t.Fatalf("tick at %ds = %d, want none", s, ev)
		}
	}
	if f.m.Phase() != Warned || !f.m.Active() {
		t.Fatalf("Phase() at 59s = %s, want warned", f.m.Phase())
	}
	if n := f.cues.count(proto.CueOneMinuteWarning); n != 1 {
		t.Fatalf("warning fired %d times, want 1", n)
	}

	if ev := f.tickAt(60*time.Second, start); ev != EventCompleted {
		t.Fatalf("tick at 60s = %d, want completed", ev)
	}
	if f.m.Phase() != Idle {
		t.Fatalf("Phase() at 60s = %s, want idle", f.m.Phase())
	}
	if ev := f.tickAt(61*time.Second, start); ev != EventNone {
		t.Fatalf("tick at 61s = %d, want none", ev)
	}
	if n := f.cues.count(proto.CueSessionComplete); n != 1 {
		t.Fatalf("complete fired %d times, want 1", n)
	}
	if f.act.stops != 0 || f.dev.State().Level != 2 {
		t.Fatalf("completion touched actuators: stops=%d state=%v", f.act.stops, f.dev.State())
	}
	if f.m.ElapsedSeconds() != 0 || f.m.RemainingSeconds() != 0 {
		t.Fatal("expected zero elapsed/remaining when idle")
	}
}

func TestWarningFiresOnceInLongSession(t *testing.T) {
	f := newFixture()
	start := f.clock.t
	_ = f.m.Configure(Config{Level: 1, DurationMinutes: 5})
	for s := 0; s < 300; s++ {
		f.tickAt(time.Duration(s)*time.Second, start)
		if s < 240 && f.m.Phase() != Active {
			t.Fatalf("Phase() at %ds = %s, want active", s, f.m.Phase())
		}
	}
	if n := f.cues.count(proto.CueOneMinuteWarning); n != 1 {
		t.Fatalf("warning fired %d times, want 1", n)
	}
}

func TestStop(t *testing.T) {
	f := newFixture()
	_ = f.m.Configure(Config{Level: 4, Heat: true, DurationMinutes: 10})
	f.cues.cues = nil

	if err := f.m.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if f.m.Active() {
		t.Fatal("expected session to be inactive")
	}
	if st := f.dev.State(); st.Level != 0 || st.Heat {
		t.Fatalf("device state after stop = %v", st)
	}
	if len(f.cues.cues) != 1 || f.cues.cues[0] != proto.CueRotate {
		t.Fatalf("stop cues = %v, want [rotate]", f.cues.cues)
	}
}

func TestStopWithoutSession(t *testing.T) {
	f := newFixture()
	f.dev.SetLevel(2)
	if err := f.m.Stop(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Stop() = %v, want ErrInvalidState", err)
	}
	if f.dev.State().Level != 2 || len(f.cues.cues) != 0 {
		t.Fatal("failed Stop changed device state or played a cue")
	}
}

func TestReconfigureReplacesSession(t *testing.T) {
	f := newFixture()
	_ = f.m.Configure(Config{Level: 5, Heat: true, DurationMinutes: 30})
	f.clock.t += 10 * time.Second

	if err := f.m.Configure(Config{Level: 2, Heat: false, DurationMinutes: 5}); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if len(f.clock.slept) != 1 || f.clock.slept[0] != DefaultSettleDelay {
		t.Fatalf("settle sleeps = %v, want [%v]", f.clock.slept, DefaultSettleDelay)
	}
	if got := f.m.Config(); got != (Config{Level: 2, Heat: false, DurationMinutes: 5}) {
		t.Fatalf("Config() = %+v", got)
	}
	if st := f.dev.State(); st.Level != 2 || st.Heat {
		t.Fatalf("device state = %v, want level 2 heat off", st)
	}
	if got := f.m.RemainingSeconds(); got != 300 {
		t.Fatalf("RemainingSeconds() = %d, want 300", got)
	}
	if n := f.cues.count(proto.CueSessionStart); n != 2 {
		t.Fatalf("session start announced %d times, want once per session", n)
	}
}

func TestConfigureWhenIdleDoesNotSettle(t *testing.T) {
	f := newFixture()
	_ = f.m.Configure(Config{Level: 1, DurationMinutes: 1})
	if len(f.clock.slept) != 0 {
		t.Fatalf("unexpected settle delay %v", f.clock.slept)
	}
}
