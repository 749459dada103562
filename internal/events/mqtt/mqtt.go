package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/diogoX451/devicedb/internal/events"
)

const qosAtLeastOnce = 1

type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
}

// MQTTBus publishes events as MQTT messages (QoS 1, not retained).
type MQTTBus struct {
	cli paho.Client
}

// Verifica interface
var _ events.Bus = (*MQTTBus)(nil)

func New(cfg Config) (*MQTTBus, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "devicedb-" + time.Now().Format("150405.000")
	}
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	cli := paho.NewClient(opts)
	t := cli.Connect()
	if !t.WaitTimeout(timeout) {
		return nil, fmt.Errorf("mqtt connect to %s: timeout", cfg.Broker)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	return &MQTTBus{cli: cli}, nil
}

func (b *MQTTBus) Publish(ctx context.Context, topic string, payload []byte) error {
	t := b.cli.Publish(topic, qosAtLeastOnce, false, payload)
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MQTTBus) PublishEvent(ctx context.Context, topic string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return b.Publish(ctx, topic, data)
}

func (b *MQTTBus) Subscribe(topic string, handler events.Handler) (events.Subscription, error) {
	t := b.cli.Subscribe(topic, qosAtLeastOnce, func(_ paho.Client, msg paho.Message) {
		_ = handler(context.Background(), message{msg: msg})
	})
	if t.Wait() && t.Error() != nil {
		return nil, t.Error()
	}
	return subscription{cli: b.cli, topic: topic}, nil
}

func (b *MQTTBus) Close() error {
	b.cli.Disconnect(250)
	return nil
}

type message struct {
	msg paho.Message
}

func (m message) Data() []byte    { return m.msg.Payload() }
func (m message) Subject() string { return m.msg.Topic() }
func (m message) Ack() error {
	m.msg.Ack()
	return nil
}

type subscription struct {
	cli   paho.Client
	topic string
}

func (s subscription) Unsubscribe() error {
	t := s.cli.Unsubscribe(s.topic)
	if t.Wait() && t.Error() != nil {
		return t.Error()
	}
	return nil
}
