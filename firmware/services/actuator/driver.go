package actuator

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"therapy/hal"
)

const maxLevel = 5

// dutyTable maps intensity levels to 12-bit motor duty. Level 1 is off on
// this motor; it only starts turning reliably from a quarter duty.
var dutyTable = [maxLevel + 1]uint16{0, 0, 1024, 2048, 3072, hal.MotorDutyMax}

// Duty returns the motor duty for level, clamping level to 5.
func Duty(level uint8) uint16 {
	if level > maxLevel {
		level = maxLevel
	}
	return dutyTable[level]
}

// Driver applies actuator commands to the motor PWM, the H-bridge direction
// pins and the heater pin.
type Driver struct {
	motor hal.Motor
	in1   hal.GPIOPin
	in2   hal.GPIOPin
	heat  hal.GPIOPin
	log   *zap.Logger

	level   uint8
	reverse bool
	heatOn  bool
}

// NewDriver looks up the IN1, IN2 and HEAT pins and drives everything off.
// Missing pins are logged and skipped.
func NewDriver(motor hal.Motor, gpio hal.GPIO, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Driver{motor: motor, log: log}
	d.in1 = d.output(gpio, hal.PinIN1)
	d.in2 = d.output(gpio, hal.PinIN2)
	d.heat = d.output(gpio, hal.PinHeat)
	if err := d.StopAll(); err != nil {
		log.Warn("initial stop", zap.Error(err))
	}
	return d
}

func (d *Driver) output(gpio hal.GPIO, name string) hal.GPIOPin {
	p, err := hal.OutputPin(gpio, name)
	if err != nil {
		d.log.Warn("pin unavailable", zap.String("pin", name), zap.Error(err))
		return nil
	}
	return p
}

// Level returns the applied intensity.
func (d *Driver) Level() uint8 { return d.level }

// Reverse reports the applied direction.
func (d *Driver) Reverse() bool { return d.reverse }

// Heat reports the heater state.
func (d *Driver) Heat() bool { return d.heatOn }

// SetLevel drives the motor at level. Level 0 releases both direction pins.
func (d *Driver) SetLevel(level uint8) error {
	if level > maxLevel {
		level = maxLevel
	}
	d.level = level
	return d.apply()
}

// SetDirection changes polarity, re-applying the current duty if running.
func (d *Driver) SetDirection(reverse bool) error {
	d.reverse = reverse
	return d.apply()
}

func (d *Driver) SetHeat(on bool) error {
	d.heatOn = on
	if err := write(d.heat, on); err != nil {
		return fmt.Errorf("actuator: heat: %w", err)
	}
	return nil
}

// StopAll turns the motor and heater off. Direction is kept.
func (d *Driver) StopAll() error {
	d.level = 0
	return errors.Join(d.apply(), d.SetHeat(false))
}

func (d *Driver) apply() error {
	in1, in2 := false, false
	if d.level > 0 {
		in1, in2 = !d.reverse, d.reverse
	}
	var errs []error
	if d.level == 0 {
		// Cut the PWM before releasing the bridge.
		errs = append(errs, d.setDuty(0))
	}
	errs = append(errs, write(d.in1, in1), write(d.in2, in2))
	if d.level > 0 {
		errs = append(errs, d.setDuty(Duty(d.level)))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("actuator: level %d: %w", d.level, err)
	}
	return nil
}

func (d *Driver) setDuty(duty uint16) error {
	if d.motor == nil {
		return nil
	}
	return d.motor.SetDuty(duty)
}

func write(p hal.GPIOPin, level bool) error {
	if p == nil {
		return nil
	}
	return p.Write(level)
}
