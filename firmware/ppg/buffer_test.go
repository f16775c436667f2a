package ppg

import "testing"

func TestBufferOverwritesOldest(t *testing.T) {
	var b Buffer
	for i := 0; i < BufferSize+5; i++ {
		b.Push(Sample{Red: uint32(i), IR: uint32(i)})
	}
	if b.Len() != BufferSize {
		t.Fatalf("Len() = %d, want %d", b.Len(), BufferSize)
	}
	newest, _ := b.At(0)
	oldest, _ := b.At(BufferSize - 1)
	if newest.IR != BufferSize+4 || oldest.IR != 5 {
		t.Fatalf("newest=%d oldest=%d", newest.IR, oldest.IR)
	}
}

func TestMovingAverageNotReady(t *testing.T) {
	var b Buffer
	for i := 0; i < DCWindow-1; i++ {
		b.Push(Sample{IR: 100})
	}
	if _, ok := b.MovingAverage(IR, DCWindow); ok {
		t.Fatal("expected moving average to be unavailable")
	}
	if got := AC(&b, Sample{IR: 500}, IR); got != 0 {
		t.Fatalf("AC() = %d before the window fills, want 0", got)
	}
}

func TestMovingAverageUsesNewestWindow(t *testing.T) {
	var b Buffer
	for i := 0; i < 30; i++ {
		b.Push(Sample{IR: 1000})
	}
	for i := 0; i < DCWindow; i++ {
		b.Push(Sample{IR: 2000, Red: 10})
	}
	avg, ok := b.MovingAverage(IR, DCWindow)
	if !ok || avg != 2000 {
		t.Fatalf("MovingAverage() = %d, %v; want 2000", avg, ok)
	}
	if got := AC(&b, Sample{IR: 2500}, IR); got != 500 {
		t.Fatalf("AC() = %d, want 500", got)
	}
	if got := AC(&b, Sample{IR: 1500}, IR); got != -500 {
		t.Fatalf("AC() = %d, want -500", got)
	}
}

func TestMinMax(t *testing.T) {
	var b Buffer
	for i := 0; i < SpO2Window; i++ {
		b.Push(Sample{Red: uint32(100 + i), IR: uint32(1000 - i)})
	}
	lo, hi, ok := b.MinMax(Red, SpO2Window)
	if !ok || lo != 100 || hi != 149 {
		t.Fatalf("MinMax(Red) = %d..%d, %v", lo, hi, ok)
	}
	p2p, ok := PeakToPeak(&b, IR)
	if !ok || p2p != 49 {
		t.Fatalf("PeakToPeak(IR) = %d, %v; want 49", p2p, ok)
	}
}

func TestResetEmptiesBuffer(t *testing.T) {
	var b Buffer
	b.Push(Sample{IR: 1})
	b.Reset()
	if b.Len() != 0 {
		t.Fatalf("Len() = %d after Reset, want 0", b.Len())
	}
	if _, ok := b.At(0); ok {
		t.Fatal("expected At to fail on an empty buffer")
	}
}
