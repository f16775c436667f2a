package link

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"therapy/firmware/kernel"
	"therapy/firmware/kernel/kerneltest"
	"therapy/firmware/proto"
	"therapy/hal"
)

type fakeLink struct {
	frames chan []byte
	events chan hal.LinkEvent
	sent   chan []byte
	err    error
}

func newFakeLink() *fakeLink {
	return &fakeLink{
		frames: make(chan []byte, 4),
		events: make(chan hal.LinkEvent, 4),
		sent:   make(chan []byte, 16),
	}
}

func (l *fakeLink) Frames() <-chan []byte        { return l.frames }
func (l *fakeLink) Events() <-chan hal.LinkEvent { return l.events }

func (l *fakeLink) Notify(frame []byte) error {
	if l.err != nil {
		return l.err
	}
	l.sent <- append([]byte(nil), frame...)
	return nil
}

type fakeKeys chan hal.KeyEvent

func (k fakeKeys) Events() <-chan hal.KeyEvent { return k }

type rig struct {
	ctx     *kernel.Context
	inbox   kernel.Capability
	link    *fakeLink
	keys    fakeKeys
	control <-chan kernel.Message
	audio   <-chan kernel.Message
	display <-chan kernel.Message
}

func start(t *testing.T, link *fakeLink) *rig {
	t.Helper()
	k := kernel.New()
	newEP := func() kernel.Capability { return k.NewEndpoint(kernel.RightSend | kernel.RightRecv) }
	inbox, control, audio, display := newEP(), newEP(), newEP(), newEP()

	r := &rig{
		ctx:     kernel.NewContext(k),
		inbox:   inbox,
		link:    link,
		keys:    make(fakeKeys, 4),
		control: kerneltest.Inbox(t, k, control),
		audio:   kerneltest.Inbox(t, k, audio),
		display: kerneltest.Inbox(t, k, display),
	}
	k.AddTask(New(link, r.keys, Caps{
		Inbox:   inbox.Restrict(kernel.RightRecv),
		Control: control.Restrict(kernel.RightSend),
		Audio:   audio.Restrict(kernel.RightSend),
		Display: display.Restrict(kernel.RightSend),
	}, nil, nil))
	return r
}

func (r *rig) send(t *testing.T, kind proto.Kind, payload []byte) {
	t.Helper()
	if res := r.ctx.SendToCapResult(r.inbox, uint16(kind), payload, kernel.Capability{}); res != kernel.SendOK {
		t.Fatalf("send %s: %s", kind, res)
	}
}

func recvSent(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(kerneltest.Timeout):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func TestNotificationFrames(t *testing.T) {
	r := start(t, newFakeLink())

	r.send(t, proto.MsgVitals, proto.VitalsPayload(72, 98))
	if got, want := recvSent(t, r.link.sent), []byte{0xF1, 72, 98}; !bytes.Equal(got, want) {
		t.Fatalf("vitals frame = %x, want %x", got, want)
	}

	r.send(t, proto.MsgWaveform, proto.WaveformPayload(0x01E240))
	if got, want := recvSent(t, r.link.sent), []byte{0xF2, 0x01, 0xE2, 0x40}; !bytes.Equal(got, want) {
		t.Fatalf("waveform frame = %x, want %x", got, want)
	}

	r.send(t, proto.MsgVitals, proto.VitalsPayload(0, 0))
	if got, want := recvSent(t, r.link.sent), []byte{0xF1, 0, 0}; !bytes.Equal(got, want) {
		t.Fatalf("not-ready frame = %x, want %x", got, want)
	}
}

func TestNotConnectedDropsSilently(t *testing.T) {
	link := newFakeLink()
	link.err = hal.ErrNotConnected
	r := start(t, link)

	r.send(t, proto.MsgVitals, proto.VitalsPayload(72, 98))
	kerneltest.ExpectNone(t, r.display, 50*time.Millisecond)

	// The bridge is still serving after the drop.
	r.link.frames <- []byte{byte(proto.OpRotate)}
	kerneltest.RecvKind(t, r.control, uint16(proto.MsgCommandFrame))
}

func TestInboundFramesReachControl(t *testing.T) {
	r := start(t, newFakeLink())

	frame := proto.AssistantConfigFrame(2, false, 15)
	r.link.frames <- frame
	msg := kerneltest.RecvKind(t, r.control, uint16(proto.MsgCommandFrame))
	if !bytes.Equal(msg.Payload(), frame) {
		t.Fatalf("forwarded %x, want %x", msg.Payload(), frame)
	}

	long := bytes.Repeat([]byte{byte(proto.OpLevel), 3}, kernel.MaxMessageBytes)
	r.link.frames <- long
	msg = kerneltest.RecvKind(t, r.control, uint16(proto.MsgCommandFrame))
	if len(msg.Payload()) != kernel.MaxMessageBytes {
		t.Fatalf("forwarded %d bytes, want %d", len(msg.Payload()), kernel.MaxMessageBytes)
	}
}

func TestLinkEventsCueAndDisplay(t *testing.T) {
	r := start(t, newFakeLink())

	r.link.events <- hal.LinkConnected
	r.link.events <- hal.LinkConnected
	r.link.events <- hal.LinkDisconnected

	for _, want := range []proto.Cue{proto.CueLinkConnected, proto.CueLinkDisconnected} {
		msg := kerneltest.RecvKind(t, r.audio, uint16(proto.MsgCue))
		if c, _ := proto.DecodeCuePayload(msg.Payload()); c != want {
			t.Fatalf("cue = %s, want %s", c, want)
		}
	}
	kerneltest.ExpectNone(t, r.audio, 20*time.Millisecond)

	for _, want := range []bool{true, false} {
		msg := kerneltest.RecvKind(t, r.display, uint16(proto.MsgLinkState))
		if on, _ := proto.DecodeFlagPayload(msg.Payload()); on != want {
			t.Fatalf("link state = %v, want %v", on, want)
		}
	}
}

func TestKeypadSendsCommandFrames(t *testing.T) {
	r := start(t, newFakeLink())

	r.keys <- hal.KeyEvent{Press: false, Rune: '4'}
	r.keys <- hal.KeyEvent{Press: true, Rune: 'x'}
	r.keys <- hal.KeyEvent{Press: true, Rune: '4'}

	msg := kerneltest.RecvKind(t, r.control, uint16(proto.MsgCommandFrame))
	if want := proto.LevelFrame(4); !bytes.Equal(msg.Payload(), want) {
		t.Fatalf("frame = %x, want %x", msg.Payload(), want)
	}
	kerneltest.ExpectNone(t, r.control, 20*time.Millisecond)
}

func TestKeyFrame(t *testing.T) {
	tests := []struct {
		r    rune
		want []byte
	}{
		{'0', []byte{0x04, 0}},
		{'5', []byte{0x04, 5}},
		{'r', []byte{0x01}},
		{'H', []byte{0x02}},
		{'a', []byte{0x06, 3, 1, 0, 10}},
		{'s', []byte{0x07}},
	}
	for _, tt := range tests {
		got, ok := KeyFrame(hal.KeyEvent{Press: true, Rune: tt.r})
		if !ok || !bytes.Equal(got, tt.want) {
			t.Fatalf("KeyFrame(%q) = %x, %v; want %x", tt.r, got, ok, tt.want)
		}
	}
	if _, ok := KeyFrame(hal.KeyEvent{Press: true, Rune: '6'}); ok {
		t.Fatal("KeyFrame('6') accepted")
	}
}

func TestNotifyErrorIsCountedNotFatal(t *testing.T) {
	link := newFakeLink()
	link.err = errors.New("broker gone")
	r := start(t, link)

	r.send(t, proto.MsgWaveform, proto.WaveformPayload(1))
	r.send(t, proto.MsgWaveform, proto.WaveformPayload(2))
	r.link.frames <- []byte{byte(proto.OpHeat)}
	kerneltest.RecvKind(t, r.control, uint16(proto.MsgCommandFrame))
}
