package actuator

import (
	"testing"
	"time"

	"therapy/firmware/kernel"
	"therapy/firmware/kernel/kerneltest"
	"therapy/firmware/proto"
)

type chanMotor struct{ duty chan uint16 }

func (m chanMotor) SetDuty(d uint16) error {
	m.duty <- d
	return nil
}

func recvDuty(t *testing.T, ch <-chan uint16) uint16 {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(kerneltest.Timeout):
		t.Fatal("timed out waiting for duty")
		return 0
	}
}

func TestServiceAppliesMessages(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)

	m := chanMotor{duty: make(chan uint16, 16)}
	drv := NewDriver(m, &fakeGPIO{}, nil)
	if got := recvDuty(t, m.duty); got != 0 {
		t.Fatalf("initial duty = %d, want 0", got)
	}
	k.AddTask(New(drv, ep.Restrict(kernel.RightRecv), nil))

	ctx := kernel.NewContext(k)
	send := func(kind proto.Kind, payload []byte) {
		if res := ctx.SendToCapResult(ep, uint16(kind), payload, kernel.Capability{}); res != kernel.SendOK {
			t.Fatalf("send %s: %s", kind, res)
		}
	}

	send(proto.MsgActuatorLevel, proto.ActuatorLevelPayload(5))
	if got := recvDuty(t, m.duty); got != 4095 {
		t.Fatalf("duty = %d, want 4095", got)
	}

	send(proto.MsgActuatorDirection, proto.FlagPayload(true))
	if got := recvDuty(t, m.duty); got != 4095 {
		t.Fatalf("duty after direction = %d, want 4095", got)
	}

	// A malformed payload is ignored; the stop that follows still applies.
	send(proto.MsgActuatorLevel, []byte{1, 2})
	send(proto.MsgActuatorStop, nil)
	if got := recvDuty(t, m.duty); got != 0 {
		t.Fatalf("duty after stop = %d, want 0", got)
	}
}
