//go:build !tinygo

package hal

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// mqttLink subscribes to <prefix>/cmd and publishes to <prefix>/notify.
type mqttLink struct {
	*linkPipe
	client      mqtt.Client
	log         Logger
	cmdTopic    string
	notifyTopic string
}

func newMQTTLink(cfg LinkConfig, log Logger) (*mqttLink, error) {
	l := &mqttLink{
		linkPipe:    newLinkPipe(),
		log:         log,
		cmdTopic:    cfg.Prefix + "/cmd",
		notifyTopic: cfg.Prefix + "/notify",
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.URL)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetOnConnectHandler(l.onConnect)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		l.logf("link: mqtt connection lost: %v", err)
		l.event(LinkDisconnected)
	})

	l.client = mqtt.NewClient(opts)
	if token := l.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("link: mqtt connect %s: %w", cfg.URL, token.Error())
	}
	return l, nil
}

// onConnect runs on every (re)connect; the clean session drops subscriptions.
func (l *mqttLink) onConnect(c mqtt.Client) {
	token := c.Subscribe(l.cmdTopic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		if !l.deliver(msg.Payload()) {
			l.logf("link: mqtt frame dropped (%d bytes)", len(msg.Payload()))
		}
	})
	go func() {
		if token.Wait() && token.Error() != nil {
			l.logf("link: mqtt subscribe %s: %v", l.cmdTopic, token.Error())
			return
		}
		l.event(LinkConnected)
	}()
}

func (l *mqttLink) Notify(frame []byte) error {
	if !l.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	// QoS 0: waveform frames are superseded 100 times a second.
	token := l.client.Publish(l.notifyTopic, 0, false, frame)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("link: mqtt publish %s: %w", l.notifyTopic, err)
	}
	return nil
}

func (l *mqttLink) Close() {
	l.client.Disconnect(250)
}

func (l *mqttLink) logf(format string, args ...any) {
	if l.log != nil {
		l.log.WriteLineString(fmt.Sprintf(format, args...))
	}
}
