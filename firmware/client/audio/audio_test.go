package audio

import (
	"testing"

	"therapy/firmware/kernel"
	"therapy/firmware/kernel/kerneltest"
	"therapy/firmware/proto"
	"therapy/firmware/telemetry"
)

type counter struct{ n map[string]int }

func (c *counter) Inc(name string)         { c.n[name]++ }
func (c *counter) IncLabel(name, _ string) { c.n[name]++ }
func (c *counter) Set(string, float64)     {}

func TestNotifyQueuesCue(t *testing.T) {
	k := kernel.New()
	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	inbox := kerneltest.Inbox(t, k, ep)

	c := New(kernel.NewContext(k), ep.Restrict(kernel.RightSend), nil)
	c.Notify(proto.CueLevel3)
	c.Notify(proto.CueHeatOn)

	for _, want := range []proto.Cue{proto.CueLevel3, proto.CueHeatOn} {
		msg := kerneltest.Recv(t, inbox)
		if proto.Kind(msg.Kind) != proto.MsgCue {
			t.Fatalf("kind = %s, want cue", proto.Kind(msg.Kind))
		}
		got, ok := proto.DecodeCuePayload(msg.Payload())
		if !ok || got != want {
			t.Fatalf("cue = %s ok=%v, want %s", got, ok, want)
		}
	}
}

func TestNotifyWithoutCapabilityCountsDrop(t *testing.T) {
	rec := &counter{n: map[string]int{}}
	New(kernel.NewContext(kernel.New()), kernel.Capability{}, rec).Notify(proto.CueRotate)
	if rec.n[telemetry.CuesDropped] != 1 {
		t.Fatalf("cues_dropped = %d, want 1", rec.n[telemetry.CuesDropped])
	}
}
