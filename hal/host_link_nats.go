//go:build !tinygo

package hal

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// natsLink subscribes to <prefix>.cmd and publishes to <prefix>.notify.
type natsLink struct {
	*linkPipe
	conn          *nats.Conn
	log           Logger
	notifySubject string
}

func newNATSLink(cfg LinkConfig, log Logger) (*natsLink, error) {
	l := &natsLink{
		linkPipe:      newLinkPipe(),
		log:           log,
		notifySubject: cfg.Prefix + ".notify",
	}

	conn, err := nats.Connect(
		cfg.URL,
		nats.Name(cfg.ClientID),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			l.logf("link: nats disconnected: %v", err)
			l.event(LinkDisconnected)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			l.event(LinkConnected)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("link: nats connect %s: %w", cfg.URL, err)
	}
	l.conn = conn

	cmdSubject := cfg.Prefix + ".cmd"
	if _, err := conn.Subscribe(cmdSubject, func(m *nats.Msg) {
		if !l.deliver(m.Data) {
			l.logf("link: nats frame dropped (%d bytes)", len(m.Data))
		}
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("link: nats subscribe %s: %w", cmdSubject, err)
	}

	l.event(LinkConnected)
	return l, nil
}

func (l *natsLink) Notify(frame []byte) error {
	if !l.conn.IsConnected() {
		return ErrNotConnected
	}
	if err := l.conn.Publish(l.notifySubject, frame); err != nil {
		return fmt.Errorf("link: nats publish %s: %w", l.notifySubject, err)
	}
	return nil
}

func (l *natsLink) Close() {
	_ = l.conn.Drain()
}

func (l *natsLink) logf(format string, args ...any) {
	if l.log != nil {
		l.log.WriteLineString(fmt.Sprintf(format, args...))
	}
}
