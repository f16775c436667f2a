package hal

import (
	"fmt"
	"time"

	"tinygo.org/x/drivers"
)

// MAX30102 I2C address and registers.
const (
	MAX30102Address = 0x57

	max30102RegFIFOWrite  = 0x04
	max30102RegFIFOOvf    = 0x05
	max30102RegFIFORead   = 0x06
	max30102RegFIFOData   = 0x07
	max30102RegMode       = 0x09
	max30102RegSpO2Config = 0x0A
	max30102RegLED1       = 0x0C
	max30102RegLED2       = 0x0D

	max30102ModeReset = 0x40
	max30102ModeSpO2  = 0x03
	// 4096 nA range, 100 samples/s, 411 us pulse width.
	max30102SpO2Config = 0x27
	// About 7 mA per LED.
	max30102LEDCurrent = 0x24

	max30102SampleMask = 0x3FFFF
	max30102ResetDelay = 100 * time.Millisecond
)

// MAX30102 reads red/IR samples from the pulse oximetry front end.
//
// It implements PPGSensor and drivers.Sensor (Luminosity).
type MAX30102 struct {
	bus   drivers.I2C
	addr  uint16
	sleep func(time.Duration)

	buf [6]byte
	red uint32
	ir  uint32
}

// NewMAX30102 returns a driver on bus. sleep may be nil to use time.Sleep.
func NewMAX30102(bus drivers.I2C, sleep func(time.Duration)) *MAX30102 {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &MAX30102{bus: bus, addr: MAX30102Address, sleep: sleep}
}

// Configure resets the chip and puts it in SpO2 mode.
func (d *MAX30102) Configure() error {
	if err := d.write(max30102RegMode, max30102ModeReset); err != nil {
		return fmt.Errorf("max30102: reset: %w", err)
	}
	d.sleep(max30102ResetDelay)

	steps := []struct {
		reg, val byte
	}{
		{max30102RegMode, max30102ModeSpO2},
		{max30102RegSpO2Config, max30102SpO2Config},
		{max30102RegLED1, max30102LEDCurrent},
		{max30102RegLED2, max30102LEDCurrent},
		{max30102RegFIFOWrite, 0},
		{max30102RegFIFOOvf, 0},
		{max30102RegFIFORead, 0},
	}
	for _, s := range steps {
		if err := d.write(s.reg, s.val); err != nil {
			return fmt.Errorf("max30102: write %#02x: %w", s.reg, err)
		}
	}
	return nil
}

// Update reads one FIFO sample when which includes drivers.Luminosity.
func (d *MAX30102) Update(which drivers.Measurement) error {
	if which&drivers.Luminosity == 0 {
		return nil
	}
	if err := d.bus.Tx(d.addr, []byte{max30102RegFIFOData}, d.buf[:]); err != nil {
		return fmt.Errorf("max30102: fifo read: %w", err)
	}
	b := d.buf
	d.red = (uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])) & max30102SampleMask
	d.ir = (uint32(b[3])<<16 | uint32(b[4])<<8 | uint32(b[5])) & max30102SampleMask
	return nil
}

// Red returns the last red reading.
func (d *MAX30102) Red() uint32 { return d.red }

// IR returns the last infrared reading.
func (d *MAX30102) IR() uint32 { return d.ir }

func (d *MAX30102) ReadSample() (red, ir uint32, err error) {
	if err := d.Update(drivers.Luminosity); err != nil {
		return 0, 0, err
	}
	return d.red, d.ir, nil
}

func (d *MAX30102) write(reg, val byte) error {
	return d.bus.Tx(d.addr, []byte{reg, val}, nil)
}
