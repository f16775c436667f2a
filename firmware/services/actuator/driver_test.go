package actuator

import (
	"testing"

	"therapy/hal"
)

type fakePin struct {
	name   string
	level  bool
	writes int
}

func (p *fakePin) Name() string                               { return p.name }
func (p *fakePin) Caps() hal.GPIOCaps                         { return hal.GPIOCapOutput }
func (p *fakePin) Configure(hal.GPIOMode, hal.GPIOPull) error { return nil }
func (p *fakePin) Read() (bool, error)                        { return p.level, nil }

func (p *fakePin) Write(level bool) error {
	p.level = level
	p.writes++
	return nil
}

type fakeGPIO struct{ pins []*fakePin }

func (g *fakeGPIO) PinCount() int { return len(g.pins) }
func (g *fakeGPIO) Pin(id int) hal.GPIOPin {
	if id < 0 || id >= len(g.pins) {
		return nil
	}
	return g.pins[id]
}

type fakeMotor struct {
	duty  uint16
	calls []uint16
}

func (m *fakeMotor) SetDuty(d uint16) error {
	m.duty = d
	m.calls = append(m.calls, d)
	return nil
}

type rig struct {
	motor          *fakeMotor
	in1, in2, heat *fakePin
	drv            *Driver
}

func newRig() *rig {
	r := &rig{
		motor: &fakeMotor{},
		in1:   &fakePin{name: hal.PinIN1},
		in2:   &fakePin{name: hal.PinIN2},
		heat:  &fakePin{name: hal.PinHeat},
	}
	g := &fakeGPIO{pins: []*fakePin{{name: hal.PinLED}, r.in1, r.in2, r.heat}}
	r.drv = NewDriver(r.motor, g, nil)
	return r
}

func TestDutyTable(t *testing.T) {
	want := []uint16{0, 0, 1024, 2048, 3072, 4095, 4095, 4095}
	for level, w := range want {
		if got := Duty(uint8(level)); got != w {
			t.Fatalf("Duty(%d) = %d, want %d", level, got, w)
		}
	}
}

func TestSetLevelForward(t *testing.T) {
	r := newRig()
	if err := r.drv.SetLevel(3); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if r.motor.duty != 2048 {
		t.Fatalf("duty = %d, want 2048", r.motor.duty)
	}
	if !r.in1.level || r.in2.level {
		t.Fatalf("IN1/IN2 = %v/%v, want high/low", r.in1.level, r.in2.level)
	}
}

func TestSetLevelClamps(t *testing.T) {
	r := newRig()
	_ = r.drv.SetLevel(9)
	if r.drv.Level() != 5 || r.motor.duty != hal.MotorDutyMax {
		t.Fatalf("level=%d duty=%d, want 5/%d", r.drv.Level(), r.motor.duty, hal.MotorDutyMax)
	}
}

func TestDirectionChangeReappliesDuty(t *testing.T) {
	r := newRig()
	_ = r.drv.SetLevel(4)
	before := len(r.motor.calls)

	if err := r.drv.SetDirection(true); err != nil {
		t.Fatalf("SetDirection: %v", err)
	}
	if r.in1.level || !r.in2.level {
		t.Fatalf("IN1/IN2 = %v/%v, want low/high", r.in1.level, r.in2.level)
	}
	if len(r.motor.calls) != before+1 || r.motor.duty != 3072 {
		t.Fatalf("duty calls=%v, want 3072 re-applied", r.motor.calls)
	}
}

func TestLevelZeroReleasesBridge(t *testing.T) {
	r := newRig()
	_ = r.drv.SetDirection(true)
	_ = r.drv.SetLevel(2)
	_ = r.drv.SetLevel(0)
	if r.motor.duty != 0 || r.in1.level || r.in2.level {
		t.Fatalf("duty=%d IN1=%v IN2=%v, want all off", r.motor.duty, r.in1.level, r.in2.level)
	}
	if !r.drv.Reverse() {
		t.Fatal("expected direction to be kept")
	}
}

func TestStopAll(t *testing.T) {
	r := newRig()
	_ = r.drv.SetLevel(5)
	_ = r.drv.SetHeat(true)
	if !r.heat.level {
		t.Fatal("expected heat pin high")
	}

	if err := r.drv.StopAll(); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if r.motor.duty != 0 || r.heat.level || r.drv.Heat() || r.drv.Level() != 0 {
		t.Fatalf("after StopAll duty=%d heat=%v level=%d", r.motor.duty, r.heat.level, r.drv.Level())
	}
}

func TestDriverWithoutPins(t *testing.T) {
	m := &fakeMotor{}
	d := NewDriver(m, &fakeGPIO{}, nil)
	if err := d.SetLevel(2); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if m.duty != 1024 {
		t.Fatalf("duty = %d, want 1024", m.duty)
	}
}
