package proto

import "testing"

func TestWaveformFrameLayout(t *testing.T) {
	frame := WaveformFrame(0x3ABCDE)
	want := []byte{0xF2, 0x3A, 0xBC, 0xDE}
	if string(frame) != string(want) {
		t.Fatalf("WaveformFrame() = % x, want % x", frame, want)
	}
	ir, ok := DecodeWaveformFrame(frame)
	if !ok || ir != 0x3ABCDE {
		t.Fatalf("DecodeWaveformFrame() = %#x, %v", ir, ok)
	}
}

func TestVitalsFrameLayout(t *testing.T) {
	frame := VitalsFrame(72, 98)
	if len(frame) != 3 || frame[0] != 0xF1 || frame[1] != 72 || frame[2] != 98 {
		t.Fatalf("VitalsFrame() = % x", frame)
	}
	if _, _, ok := DecodeVitalsFrame(frame[:2]); ok {
		t.Fatal("expected short vitals frame to be rejected")
	}
}

func TestAssistantConfigFrameDuration(t *testing.T) {
	frame := AssistantConfigFrame(3, true, 0x0102)
	want := []byte{0x06, 3, 1, 0x01, 0x02}
	if string(frame) != string(want) {
		t.Fatalf("AssistantConfigFrame() = % x, want % x", frame, want)
	}
}

func TestLevelCue(t *testing.T) {
	if _, ok := LevelCue(0); ok {
		t.Fatal("expected no cue for level 0")
	}
	c, ok := LevelCue(5)
	if !ok || c != CueLevel5 {
		t.Fatalf("LevelCue(5) = %s, %v", c, ok)
	}
	if CueMeasuring.String() != "measuring" || Cue(200).String() != "unknown" {
		t.Fatal("unexpected cue names")
	}
}

func TestDeviceStatusPayloadRoundTrip(t *testing.T) {
	b := DeviceStatusPayload(4, StatusHeat|StatusSessionActive, 599, 10)
	level, flags, remaining, duration, ok := DecodeDeviceStatusPayload(b)
	if !ok || level != 4 || flags != StatusHeat|StatusSessionActive || remaining != 599 || duration != 10 {
		t.Fatalf("decode: level=%d flags=%b remaining=%d duration=%d ok=%v", level, flags, remaining, duration, ok)
	}
}

func TestDecodeCueRejectsUnknown(t *testing.T) {
	if _, ok := DecodeCuePayload([]byte{uint8(cueCount)}); ok {
		t.Fatal("expected unknown cue id to be rejected")
	}
}

func TestMinFrameLen(t *testing.T) {
	cases := []struct {
		op   Opcode
		want int
		ok   bool
	}{
		{OpRotate, 1, true},
		{OpLevel, 2, true},
		{OpAssistantConfig, 5, true},
		{Opcode(0x05), 0, false},
	}
	for _, tc := range cases {
		got, ok := tc.op.MinFrameLen()
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%s.MinFrameLen() = %d, %v; want %d, %v", tc.op, got, ok, tc.want, tc.ok)
		}
	}
}
