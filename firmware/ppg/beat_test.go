package ppg

import (
	"testing"
	"time"
)

// pulse drives d through one rise to peak and a drop to trough at end.
func pulse(d *Detector, peak, trough int32, end time.Duration) (Beat, Outcome) {
	d.Update(peak/2, end-20*time.Millisecond)
	d.Update(peak, end-10*time.Millisecond)
	return d.Update(trough, end)
}

func TestDetectorStartsRising(t *testing.T) {
	var d Detector
	if d.Phase() != Rising {
		t.Fatalf("Phase() = %s, want rising", d.Phase())
	}
}

func TestDetectorAcceptsDrop(t *testing.T) {
	var d Detector
	b, out := pulse(&d, 5000, 1000, time.Second)
	if out != BeatAccepted {
		t.Fatalf("outcome = %s, want accepted", out)
	}
	if b.At != time.Second || b.Interval != 0 {
		t.Fatalf("beat = %+v, want first beat at 1s without interval", b)
	}
	if d.Phase() != Falling {
		t.Fatalf("Phase() = %s, want falling", d.Phase())
	}
}

func TestDetectorIgnoresSmallDrop(t *testing.T) {
	var d Detector
	if _, out := pulse(&d, 5000, 2500, time.Second); out != NoBeat {
		t.Fatalf("outcome = %s, want none", out)
	}
}

func TestDetectorRefractory(t *testing.T) {
	var d Detector
	if _, out := pulse(&d, 5000, 0, time.Second); out != BeatAccepted {
		t.Fatalf("first outcome = %s", out)
	}
	if _, out := pulse(&d, 5000, 0, time.Second+300*time.Millisecond); out != BeatRejected {
		t.Fatalf("outcome at +300ms = %s, want rejected", out)
	}
	b, out := pulse(&d, 5000, 0, time.Second+700*time.Millisecond)
	if out != BeatAccepted {
		t.Fatalf("outcome at +700ms = %s, want accepted", out)
	}
	if b.Interval != 700*time.Millisecond {
		t.Fatalf("Interval = %v, want 700ms (rejected candidates do not move the reference)", b.Interval)
	}
}

func TestDetectorFallingNeedsRise(t *testing.T) {
	var d Detector
	pulse(&d, 5000, 0, time.Second)
	if _, out := d.Update(-5000, 2*time.Second); out != NoBeat {
		t.Fatalf("outcome = %s while falling, want none", out)
	}
}

func TestDetectorReset(t *testing.T) {
	var d Detector
	pulse(&d, 5000, 0, time.Second)
	d.Reset()
	b, out := pulse(&d, 5000, 0, time.Second+100*time.Millisecond)
	if out != BeatAccepted || b.Interval != 0 {
		t.Fatalf("after Reset: outcome=%s interval=%v", out, b.Interval)
	}
}
