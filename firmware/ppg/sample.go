// Package ppg turns raw red/IR photoplethysmography samples into beats,
// heart rate and SpO2 estimates.
//
// The tuning constants (beat threshold, refractory window, IR validity range
// and the SpO2 approximation) are empirical values for the MAX30102 front end.
// They are not a calibrated clinical computation.
package ppg

// SampleMask keeps the 18 significant bits of a FIFO reading.
const SampleMask = 0x3FFFF

// Valid IR range. Readings outside it mean no finger or a saturated sensor.
const (
	MinValidIR = 50000
	MaxValidIR = 200000
)

// Sample is one red/IR reading.
type Sample struct {
	Red uint32
	IR  uint32
}

// Channel selects one optical channel of a Sample.
type Channel uint8

const (
	Red Channel = iota
	IR
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case IR:
		return "ir"
	default:
		return "unknown"
	}
}

// Value returns the reading for ch.
func (s Sample) Value(ch Channel) uint32 {
	if ch == Red {
		return s.Red
	}
	return s.IR
}

// ValidIR reports whether ir is inside the finger-present range.
func ValidIR(ir uint32) bool {
	return ir >= MinValidIR && ir <= MaxValidIR
}
