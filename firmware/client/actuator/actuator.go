// Package actuator is the IPC client for the actuator service.
package actuator

import (
	"fmt"

	"therapy/firmware/kernel"
	"therapy/firmware/proto"
	"therapy/firmware/telemetry"
)

const retryLimit = 50

// Client implements device.Actuator by messaging the actuator service.
// It is bound to the calling task's context.
type Client struct {
	ctx *kernel.Context
	cap kernel.Capability
	rec telemetry.Recorder
}

func New(ctx *kernel.Context, actuatorCap kernel.Capability, rec telemetry.Recorder) *Client {
	return &Client{ctx: ctx, cap: actuatorCap, rec: telemetry.OrNop(rec)}
}

func (c *Client) SetLevel(level uint8) {
	c.post(proto.MsgActuatorLevel, proto.ActuatorLevelPayload(level))
}

func (c *Client) SetHeat(on bool) {
	c.post(proto.MsgActuatorHeat, proto.FlagPayload(on))
}

func (c *Client) SetDirection(reverse bool) {
	c.post(proto.MsgActuatorDirection, proto.FlagPayload(reverse))
}

func (c *Client) StopAll() {
	c.post(proto.MsgActuatorStop, nil)
}

func (c *Client) post(kind proto.Kind, payload []byte) {
	if err := c.send(kind, payload); err != nil {
		c.rec.Inc(telemetry.FramesDropped)
	}
}

func (c *Client) send(kind proto.Kind, payload []byte) error {
	if c.ctx == nil {
		return fmt.Errorf("actuator client: nil context for %s", kind)
	}
	if !c.cap.Valid() {
		return fmt.Errorf("actuator client: missing capability for %s", kind)
	}
	res := c.ctx.SendToCapRetry(c.cap, uint16(kind), payload, kernel.Capability{}, retryLimit)
	if res != kernel.SendOK {
		return fmt.Errorf("actuator client send %s: %s", kind, res)
	}
	return nil
}
