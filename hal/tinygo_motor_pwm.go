//go:build tinygo && baremetal

package hal

import "machine"

const motorPWMHz = 5000

// pwmMotor drives the motor at 5 kHz with 12-bit duty resolution.
type pwmMotor struct {
	pin machine.Pin
	pwm pwmDevice
	ch  uint8
	top uint32
}

func newPWMMotor(pin machine.Pin) *pwmMotor {
	pwm := pwmForPin(pin)
	if pwm == nil {
		return nil
	}
	return &pwmMotor{pin: pin, pwm: pwm}
}

func (m *pwmMotor) configure() error {
	if err := m.pwm.Configure(machine.PWMConfig{Period: 1e9 / motorPWMHz}); err != nil {
		return err
	}
	ch, err := m.pwm.Channel(m.pin)
	if err != nil {
		return err
	}
	m.ch = ch
	m.top = m.pwm.Top()
	m.pwm.Set(m.ch, 0)
	m.pwm.Enable(true)
	return nil
}

func (m *pwmMotor) SetDuty(duty uint16) error {
	if duty > MotorDutyMax {
		duty = MotorDutyMax
	}
	m.pwm.Set(m.ch, uint32(duty)*m.top/MotorDutyMax)
	return nil
}
