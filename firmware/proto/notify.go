package proto

// Outbound notification tags (first byte of a notification frame).
const (
	TagVitals   uint8 = 0xF1
	TagWaveform uint8 = 0xF2
)

// VitalsFrame encodes a vitals notification: 0xF1, hr, spo2.
func VitalsFrame(heartRate, spo2 uint8) []byte {
	return []byte{TagVitals, heartRate, spo2}
}

// WaveformFrame encodes a raw IR sample as 0xF2 followed by 24 bits, most significant byte first.
func WaveformFrame(ir uint32) []byte {
	return []byte{TagWaveform, uint8(ir >> 16), uint8(ir >> 8), uint8(ir)}
}

func DecodeVitalsFrame(b []byte) (heartRate, spo2 uint8, ok bool) {
	if len(b) != 3 || b[0] != TagVitals {
		return 0, 0, false
	}
	return b[1], b[2], true
}

func DecodeWaveformFrame(b []byte) (ir uint32, ok bool) {
	if len(b) != 4 || b[0] != TagWaveform {
		return 0, false
	}
	return uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), true
}
