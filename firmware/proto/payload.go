package proto

import "encoding/binary"

// VitalsPayload encodes a vitals reading.
//
// Layout:
//   - u8: heart rate (bpm, 0 = no reading)
//   - u8: SpO2 (percent, 0 = no reading)
func VitalsPayload(heartRate, spo2 uint8) []byte { return []byte{heartRate, spo2} }

func DecodeVitalsPayload(b []byte) (heartRate, spo2 uint8, ok bool) {
	if len(b) != 2 {
		return 0, 0, false
	}
	return b[0], b[1], true
}

// WaveformPayload encodes one raw IR sample.
//
// Layout (little-endian):
//   - u32: IR value (18 significant bits)
func WaveformPayload(ir uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, ir)
	return buf
}

func DecodeWaveformPayload(b []byte) (ir uint32, ok bool) {
	if len(b) != 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

// CuePayload encodes an audio cue request.
func CuePayload(c Cue) []byte { return []byte{uint8(c)} }

func DecodeCuePayload(b []byte) (c Cue, ok bool) {
	if len(b) != 1 || !Cue(b[0]).Valid() {
		return 0, false
	}
	return Cue(b[0]), true
}

// ActuatorLevelPayload encodes an intensity level (0..5).
func ActuatorLevelPayload(level uint8) []byte { return []byte{level} }

func DecodeActuatorLevelPayload(b []byte) (level uint8, ok bool) {
	if len(b) != 1 {
		return 0, false
	}
	return b[0], true
}

// FlagPayload encodes a single on/off value.
func FlagPayload(on bool) []byte {
	if on {
		return []byte{1}
	}
	return []byte{0}
}

func DecodeFlagPayload(b []byte) (on bool, ok bool) {
	if len(b) != 1 || b[0] > 1 {
		return false, false
	}
	return b[0] == 1, true
}

// StatusFlags carries boolean device state in MsgDeviceStatus.
type StatusFlags uint8

const (
	StatusReverse StatusFlags = 1 << iota
	StatusHeat
	StatusSessionActive
	StatusWarned
)

// DeviceStatusPayload encodes a device/session snapshot.
//
// Layout (little-endian):
//   - u8: level
//   - u8: flags (StatusFlags)
//   - u16: remaining session seconds
//   - u8: session duration minutes
func DeviceStatusPayload(level uint8, flags StatusFlags, remainingSec uint16, durationMin uint8) []byte {
	buf := make([]byte, 5)
	buf[0] = level
	buf[1] = uint8(flags)
	binary.LittleEndian.PutUint16(buf[2:4], remainingSec)
	buf[4] = durationMin
	return buf
}

func DecodeDeviceStatusPayload(b []byte) (level uint8, flags StatusFlags, remainingSec uint16, durationMin uint8, ok bool) {
	if len(b) != 5 {
		return 0, 0, 0, 0, false
	}
	return b[0], StatusFlags(b[1]), binary.LittleEndian.Uint16(b[2:4]), b[4], true
}

// EventLinePayload encodes a short human-readable event.
func EventLinePayload(line string) []byte {
	b := []byte(line)
	if len(b) > MaxEventLine {
		b = b[:MaxEventLine]
	}
	return b
}

// MaxEventLine bounds MsgEventLine payloads to one IPC message.
const MaxEventLine = 64
