package ppg

import (
	"testing"
	"time"
)

func historyOf(ms ...int) *History {
	var h History
	for _, v := range ms {
		h.Push(time.Duration(v) * time.Millisecond)
	}
	return &h
}

func TestHeartRate(t *testing.T) {
	cases := []struct {
		name string
		h    *History
		want uint8
	}{
		{"empty", historyOf(), 0},
		{"single interval", historyOf(800), 0},
		{"steady 75", historyOf(800, 800), 75},
		{"average of four", historyOf(1000, 1000, 500, 500), 80},
		{"upper bound", historyOf(300, 300), 200},
		{"lower bound", historyOf(1500, 1500), 40},
		{"too fast", historyOf(250, 250), 0},
		{"too slow", historyOf(2000, 2000), 0},
	}
	for _, tc := range cases {
		if got := HeartRate(tc.h); got != tc.want {
			t.Fatalf("%s: HeartRate() = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := historyOf(100, 200, 300, 400, 500)
	got := h.Intervals()
	if len(got) != HistorySize || got[0] != 200*time.Millisecond || got[3] != 500*time.Millisecond {
		t.Fatalf("Intervals() = %v", got)
	}
}

// fillSquare buffers SpO2Window samples alternating between lo and hi on each channel.
func fillSquare(redLo, redHi, irLo, irHi uint32) *Buffer {
	var b Buffer
	for i := 0; i < SpO2Window; i++ {
		if i%2 == 0 {
			b.Push(Sample{Red: redLo, IR: irLo})
		} else {
			b.Push(Sample{Red: redHi, IR: irHi})
		}
	}
	return &b
}

func TestSpO2EqualRatiosGives85(t *testing.T) {
	b := fillSquare(100000, 110000, 100000, 110000)
	if got := SpO2(b); got != 85 {
		t.Fatalf("SpO2() = %d, want 85", got)
	}
}

func TestSpO2ClampsHigh(t *testing.T) {
	// red AC/DC is 0.4 of the IR ratio.
	b := fillSquare(103000, 107000, 100000, 110000)
	if got := SpO2(b); got != 100 {
		t.Fatalf("SpO2() = %d, want 100", got)
	}
}

func TestSpO2ClampsLow(t *testing.T) {
	b := fillSquare(95000, 115000, 100000, 110000)
	if got := SpO2(b); got != 70 {
		t.Fatalf("SpO2() = %d, want 70", got)
	}
}

func TestSpO2NotReady(t *testing.T) {
	var b Buffer
	for i := 0; i < SpO2Window-1; i++ {
		b.Push(Sample{Red: 100000 + uint32(i), IR: 100000 + uint32(i)})
	}
	if got := SpO2(&b); got != 0 {
		t.Fatalf("SpO2() = %d with %d samples, want 0", got, b.Len())
	}

	flat := fillSquare(100000, 110000, 105000, 105000)
	if got := SpO2(flat); got != 0 {
		t.Fatalf("SpO2() = %d with zero IR AC, want 0", got)
	}
}
