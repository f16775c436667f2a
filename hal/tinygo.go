//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

type tinyGoHAL struct {
	logger *uartLogger
	led    *pinLED
	gpio   GPIO
	fb     Framebuffer
	kbd    Keyboard
	t      *tinyGoTime
	audio  Audio
	motor  Motor
	ppg    PPGSensor
	link   Link
}

// New returns a Pico 2 (RP2350) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
// Sensor: MAX30102 on I2C0, GP4 (SDA) / GP5 (SCL).
// Motor: PWM on GP15, direction IN1 GP14 / IN2 GP13, heat GP12.
// Audio: PWM on GP2.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led := &pinLED{pin: ledPin}

	pins := []GPIOPin{
		newLEDPin(PinLED, led),
		newMachinePin(PinIN1, machine.GP14),
		newMachinePin(PinIN2, machine.GP13),
		newMachinePin(PinHeat, machine.GP12),
	}

	var motor Motor = nullMotor{}
	if m := newPWMMotor(machine.GP15); m != nil {
		if err := m.configure(); err != nil {
			logger.WriteLineString("motor: " + err.Error())
		} else {
			motor = m
		}
	}

	var sensor PPGSensor = nullSensor{}
	bus := machine.I2C0
	if err := bus.Configure(machine.I2CConfig{
		SDA:       machine.GP4,
		SCL:       machine.GP5,
		Frequency: 400 * machine.KHz,
	}); err != nil {
		logger.WriteLineString("i2c: " + err.Error())
	} else {
		dev := NewMAX30102(bus, time.Sleep)
		if err := dev.Configure(); err != nil {
			logger.WriteLineString(err.Error())
		} else {
			sensor = dev
		}
	}

	return &tinyGoHAL{
		logger: logger,
		led:    led,
		gpio:   newVirtualGPIO(pins),
		fb:     &stubFramebuffer{w: 320, h: 240, format: PixelFormatRGB565},
		kbd:    &stubKeyboard{},
		t:      newTinyGoTime(),
		audio:  newTinyGoAudio(),
		motor:  motor,
		ppg:    sensor,
		link:   nullLink{},
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) LED() LED         { return h.led }
func (h *tinyGoHAL) GPIO() GPIO       { return h.gpio }
func (h *tinyGoHAL) Display() Display { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Input() Input     { return tinyGoInput{kbd: h.kbd} }
func (h *tinyGoHAL) Time() Time       { return h.t }
func (h *tinyGoHAL) Audio() Audio     { return h.audio }
func (h *tinyGoHAL) Motor() Motor     { return h.motor }
func (h *tinyGoHAL) PPG() PPGSensor   { return h.ppg }
func (h *tinyGoHAL) Link() Link       { return h.link }
