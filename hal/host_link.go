//go:build !tinygo

package hal

import (
	"fmt"
	"strings"
)

// Link transports selectable on the host.
const (
	LinkNone = "none"
	LinkMQTT = "mqtt"
	LinkNATS = "nats"
)

// LinkConfig selects and addresses the host companion transport.
type LinkConfig struct {
	Kind     string
	URL      string
	Prefix   string
	ClientID string
}

type closer interface {
	Close()
}

func newHostLink(cfg LinkConfig, log Logger) (Link, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = "therapy"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "therapy-device"
	}

	switch strings.ToLower(cfg.Kind) {
	case "", LinkNone:
		return nullLink{}, nil
	case LinkMQTT:
		if cfg.URL == "" {
			cfg.URL = "tcp://127.0.0.1:1883"
		}
		return newMQTTLink(cfg, log)
	case LinkNATS:
		if cfg.URL == "" {
			cfg.URL = "nats://127.0.0.1:4222"
		}
		return newNATSLink(cfg, log)
	default:
		return nil, fmt.Errorf("link: unknown transport %q", cfg.Kind)
	}
}

func closeLink(l Link) {
	if c, ok := l.(closer); ok {
		c.Close()
	}
}
