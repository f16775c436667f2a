package hal

import (
	"testing"
	"time"

	"therapy/firmware/ppg"
)

func TestSimPPGDrivesMonitorToConfiguredVitals(t *testing.T) {
	sim := newSimPPG(SimConfig{HeartRate: 75, SpO2: 97})
	m := ppg.NewMonitor(ppg.DefaultEstimateInterval)

	var last ppg.Vitals
	for i := 0; i < 1000; i++ {
		red, ir, err := sim.ReadSample()
		if err != nil {
			t.Fatalf("ReadSample: %v", err)
		}
		ev := m.Process(ppg.Sample{Red: red, IR: ir}, time.Duration(i)*10*time.Millisecond)
		if ev.SignalLost {
			t.Fatalf("sample %d: unexpected signal loss (ir=%d)", i, ir)
		}
		if ev.VitalsDue {
			last = ev.Vitals
		}
	}

	if last.HeartRate < 73 || last.HeartRate > 77 {
		t.Fatalf("heart rate = %d, want ~75", last.HeartRate)
	}
	if last.SpO2 < 94 || last.SpO2 > 99 {
		t.Fatalf("spo2 = %d, want ~97", last.SpO2)
	}
}

func TestSimPPGNoFinger(t *testing.T) {
	sim := newSimPPG(SimConfig{NoFinger: true})
	_, ir, err := sim.ReadSample()
	if err != nil {
		t.Fatalf("ReadSample: %v", err)
	}
	if ppg.ValidIR(ir) {
		t.Fatalf("ir = %d, want an invalid reading", ir)
	}

	sim.SetNoFinger(false)
	_, ir, _ = sim.ReadSample()
	if !ppg.ValidIR(ir) {
		t.Fatalf("ir = %d, want a valid reading", ir)
	}
}
