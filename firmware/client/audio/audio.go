// Package audio is the IPC client for the cue renderer.
package audio

import (
	"fmt"

	"therapy/firmware/kernel"
	"therapy/firmware/proto"
	"therapy/firmware/telemetry"
)

const retryLimit = 10

// Client implements device.Announcer. Notify only queues the cue.
type Client struct {
	ctx *kernel.Context
	cap kernel.Capability
	rec telemetry.Recorder
}

func New(ctx *kernel.Context, audioCap kernel.Capability, rec telemetry.Recorder) *Client {
	return &Client{ctx: ctx, cap: audioCap, rec: telemetry.OrNop(rec)}
}

func (c *Client) Notify(cue proto.Cue) {
	if err := c.send(cue); err != nil {
		c.rec.Inc(telemetry.CuesDropped)
	}
}

func (c *Client) send(cue proto.Cue) error {
	if c.ctx == nil {
		return fmt.Errorf("audio client: nil context for %s", cue)
	}
	if !c.cap.Valid() {
		return fmt.Errorf("audio client: missing capability for %s", cue)
	}
	res := c.ctx.SendToCapRetry(c.cap, uint16(proto.MsgCue), proto.CuePayload(cue), kernel.Capability{}, retryLimit)
	if res != kernel.SendOK {
		return fmt.Errorf("audio client send %s: %s", cue, res)
	}
	return nil
}
