package device

import "testing"

type recordingActuator struct {
	calls []string
}

func (r *recordingActuator) SetLevel(level uint8) {
	r.calls = append(r.calls, "level:"+string(rune('0'+level)))
}
func (r *recordingActuator) SetHeat(on bool) {
	if on {
		r.calls = append(r.calls, "heat:on")
		return
	}
	r.calls = append(r.calls, "heat:off")
}
func (r *recordingActuator) SetDirection(reverse bool) {
	if reverse {
		r.calls = append(r.calls, "dir:rev")
		return
	}
	r.calls = append(r.calls, "dir:fwd")
}
func (r *recordingActuator) StopAll() { r.calls = append(r.calls, "stop") }

func TestSetLevelClamps(t *testing.T) {
	act := &recordingActuator{}
	c := NewController(act)
	if got := c.SetLevel(9); got != MaxLevel {
		t.Fatalf("SetLevel(9) = %d, want %d", got, MaxLevel)
	}
	if c.State().Level != MaxLevel || act.calls[0] != "level:5" {
		t.Fatalf("state=%v calls=%v", c.State(), act.calls)
	}
}

func TestToggleDirectionReappliesLevel(t *testing.T) {
	act := &recordingActuator{}
	c := NewController(act)
	c.SetLevel(3)
	act.calls = nil

	if !c.ToggleDirection() {
		t.Fatal("expected reverse after first toggle")
	}
	if len(act.calls) != 2 || act.calls[0] != "dir:rev" || act.calls[1] != "level:3" {
		t.Fatalf("calls = %v", act.calls)
	}
}

func TestToggleDirectionIdleDoesNotStartMotor(t *testing.T) {
	act := &recordingActuator{}
	c := NewController(act)
	c.ToggleDirection()
	if len(act.calls) != 1 || act.calls[0] != "dir:rev" {
		t.Fatalf("calls = %v", act.calls)
	}
}

func TestStopAllKeepsDirection(t *testing.T) {
	c := NewController(nil)
	c.SetLevel(2)
	c.SetHeat(true)
	c.ToggleDirection()
	c.StopAll()
	want := State{Reverse: true}
	if c.State() != want {
		t.Fatalf("State() = %v, want %v", c.State(), want)
	}
}
