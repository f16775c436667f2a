package hal

import "sync"

// SimConfig shapes the synthetic pulse waveform.
type SimConfig struct {
	HeartRate int  // beats per minute
	SpO2      int  // target saturation, percent
	NoFinger  bool // report an empty sensor
}

const (
	simSampleRate = 100
	simIRBase     = 100000
	simRedBase    = 60000
	simPulse      = 14000
	simNoFingerIR = 1200
)

// simPPG produces a sawtooth-like pulse train, one sample per read at 100 Hz.
//
// The red channel is scaled so that 110-25R lands on the configured SpO2.
type simPPG struct {
	mu  sync.Mutex
	cfg SimConfig
	n   int
}

func newSimPPG(cfg SimConfig) *simPPG {
	if cfg.HeartRate <= 0 {
		cfg.HeartRate = 72
	}
	if cfg.SpO2 <= 0 {
		cfg.SpO2 = 97
	}
	return &simPPG{cfg: cfg}
}

// SetNoFinger toggles the empty sensor state.
func (s *simPPG) SetNoFinger(v bool) {
	s.mu.Lock()
	s.cfg.NoFinger = v
	s.mu.Unlock()
}

func (s *simPPG) ReadSample() (red, ir uint32, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.n
	s.n++
	if s.cfg.NoFinger {
		return simNoFingerIR * 3 / 5, simNoFingerIR, nil
	}

	period := simSampleRate * 60 / s.cfg.HeartRate
	if period < 4 {
		period = 4
	}
	rise := period / 8
	if rise < 1 {
		rise = 1
	}
	phase := i % period

	var wave int
	if phase < rise {
		wave = simPulse * (phase + 1) / rise
	} else {
		wave = simPulse - simPulse*(phase-rise+1)/(period-rise)
	}

	// R = (redAC/redDC)/(irAC/irDC), target R = (110-SpO2)/25.
	ratio100 := (110 - s.cfg.SpO2) * 4
	redWave := int64(wave) * int64(ratio100) * simRedBase / (100 * simIRBase)

	ir = uint32(simIRBase+wave) & 0x3FFFF
	red = uint32(int64(simRedBase)+redWave) & 0x3FFFF
	return red, ir, nil
}
