package hal

import "errors"

// ErrNoSensor is returned by boards without a working optical sensor.
var ErrNoSensor = errors.New("ppg sensor unavailable")

type nullMotor struct{}

func (nullMotor) SetDuty(uint16) error { return nil }

type nullSensor struct{}

func (nullSensor) ReadSample() (uint32, uint32, error) { return 0, 0, ErrNoSensor }
