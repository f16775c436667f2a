package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction.
type LED interface {
	High()
	Low()
}

var (
	ErrNotImplemented = errors.New("not implemented")

	// ErrNotConnected is returned by Link.Notify when no peer is attached.
	ErrNotConnected = errors.New("link not connected")
)

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEnter
	KeyEscape
)

// KeyEvent is a keyboard event.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// Time provides a base tick stream.
//
// Ticks are 1 ms apart on every platform.
type Time interface {
	Ticks() <-chan uint64
}

// PWMAudio is a mono sample sink.
type PWMAudio interface {
	Start(sampleRate uint32) error
	Stop() error
	SetVolume(vol uint8)
	WriteSample(sample int16)
}

// Audio provides the audio outputs of the board.
type Audio interface {
	PWM() PWMAudio
}

// MotorDutyMax is the full-scale motor duty (12-bit).
const MotorDutyMax = 4095

// Motor drives the massage motor PWM channel.
type Motor interface {
	SetDuty(duty uint16) error
}

// PPGSensor reads one red/IR sample pair from the optical front end.
//
// Values are 18-bit; the upper bits are always zero.
type PPGSensor interface {
	ReadSample() (red, ir uint32, err error)
}

// LinkEvent reports transport connection changes.
type LinkEvent uint8

const (
	LinkConnected LinkEvent = iota + 1
	LinkDisconnected
)

func (e LinkEvent) String() string {
	switch e {
	case LinkConnected:
		return "connected"
	case LinkDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Link is the companion transport: command frames in, notification frames out.
//
// Frames and Events may return nil when the link has no inbound side.
type Link interface {
	Frames() <-chan []byte
	Events() <-chan LinkEvent
	Notify(frame []byte) error
}

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	LED() LED
	GPIO() GPIO
	Display() Display
	Input() Input
	Time() Time
	Audio() Audio
	Motor() Motor
	PPG() PPGSensor
	Link() Link
}
