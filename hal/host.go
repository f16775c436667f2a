//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
)

// HostConfig configures the desktop HAL.
type HostConfig struct {
	Link LinkConfig
	Sim  SimConfig
	Mute bool
}

type hostHAL struct {
	logger *hostLogger
	led    *hostLED
	gpio   GPIO
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
	aud    Audio
	motor  *hostMotor
	ppg    *simPPG
	link   Link
}

// New returns a host HAL with a simulated sensor and no companion link.
func New() HAL {
	h, err := newHostHAL(HostConfig{})
	if err != nil {
		panic(err)
	}
	return h
}

func newHostHAL(cfg HostConfig) (*hostHAL, error) {
	logger := &hostLogger{w: os.Stdout}
	led := &hostLED{}
	pins := []GPIOPin{
		newLEDPin(PinLED, led),
		newVirtualPin(PinIN1, GPIOCapOutput),
		newVirtualPin(PinIN2, GPIOCapOutput),
		newVirtualPin(PinHeat, GPIOCapOutput),
	}

	link, err := newHostLink(cfg.Link, logger)
	if err != nil {
		return nil, err
	}

	var aud Audio = silentAudio{}
	if !cfg.Mute {
		aud = newHostAudio()
	}

	return &hostHAL{
		logger: logger,
		led:    led,
		gpio:   newVirtualGPIO(pins),
		fb:     newHostFramebuffer(320, 240),
		kbd:    newHostKeyboard(),
		t:      newHostTime(),
		aud:    aud,
		motor:  &hostMotor{logger: logger},
		ppg:    newSimPPG(cfg.Sim),
		link:   link,
	}, nil
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) LED() LED         { return h.led }
func (h *hostHAL) GPIO() GPIO       { return h.gpio }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Audio() Audio     { return h.aud }
func (h *hostHAL) Motor() Motor     { return h.motor }
func (h *hostHAL) PPG() PPGSensor   { return h.ppg }
func (h *hostHAL) Link() Link       { return h.link }

func (h *hostHAL) close() { closeLink(h.link) }

type silentAudio struct{}

func (silentAudio) PWM() PWMAudio { return nil }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostLED follows the beat indicator; it stays quiet since it toggles per beat.
type hostLED struct {
	mu sync.Mutex
	on bool
}

func (l *hostLED) High() {
	l.mu.Lock()
	l.on = true
	l.mu.Unlock()
}

func (l *hostLED) Low() {
	l.mu.Lock()
	l.on = false
	l.mu.Unlock()
}

type hostMotor struct {
	mu     sync.Mutex
	duty   uint16
	logger *hostLogger
}

func (m *hostMotor) SetDuty(duty uint16) error {
	if duty > MotorDutyMax {
		return fmt.Errorf("motor: duty %d out of range", duty)
	}
	m.mu.Lock()
	changed := m.duty != duty
	m.duty = duty
	m.mu.Unlock()
	if changed {
		m.logger.WriteLineString(fmt.Sprintf("motor: duty=%d/%d", duty, MotorDutyMax))
	}
	return nil
}
