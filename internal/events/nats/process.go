package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/diogoX451/devicedb/internal/events"
)

const (
	DeviceStream        = "DEVICEDB_DEVICES"
	DeviceSubjectPrefix = "devicedb.device"
)

type NATSBus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// Verifica interface
var _ events.Bus = (*NATSBus)(nil)

type Config struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
	Name          string
}

func New(cfg Config) (*NATSBus, error) {
	name := cfg.Name
	if name == "" {
		name = "devicedb-bus"
	}
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Name(name),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connection failed: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream init failed: %w", err)
	}

	return &NATSBus{
		conn: conn,
		js:   js,
	}, nil
}

type StreamConfig struct {
	Name     string
	Subjects []string
	MaxMsgs  int64
	MaxAge   time.Duration
	Memory   bool
}

// CreateStream cria stream se não existir
func (n *NATSBus) CreateStream(cfg StreamConfig) error {
	storage := nats.FileStorage
	if cfg.Memory {
		storage = nats.MemoryStorage
	}

	_, err := n.js.AddStream(&nats.StreamConfig{
		Name:      cfg.Name,
		Subjects:  cfg.Subjects,
		Retention: nats.LimitsPolicy,
		MaxMsgs:   cfg.MaxMsgs,
		MaxAge:    cfg.MaxAge,
		Storage:   storage,
	})

	if errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return nil // Já existe, ok
	}

	return err
}

// SetupDeviceStreams cria o stream de eventos de device. name vazio usa
// DeviceStream.
func (n *NATSBus) SetupDeviceStreams(name string) error {
	if name == "" {
		name = DeviceStream
	}
	if err := n.CreateStream(StreamConfig{
		Name:     name,
		Subjects: []string{DeviceSubjectPrefix + ".>"},
		MaxMsgs:  100000,
		MaxAge:   7 * 24 * time.Hour,
	}); err != nil {
		return fmt.Errorf("devices stream: %w", err)
	}
	return nil
}

// Publish envia mensagem bruta
func (n *NATSBus) Publish(ctx context.Context, subject string, payload []byte) error {
	_, err := n.js.Publish(subject, payload, nats.Context(ctx))
	return err
}

// PublishEvent serializa e envia
func (n *NATSBus) PublishEvent(ctx context.Context, subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.Publish(ctx, subject, data)
}

// Subscribe registra handler push
func (n *NATSBus) Subscribe(subject string, handler events.Handler) (events.Subscription, error) {
	callback := func(msg *nats.Msg) {
		wrapped := &natsMessage{msg: msg}
		if err := handler(context.Background(), wrapped); err != nil {
			// Handler errou, não deu ack = redelivery automático
			return
		}
	}

	sub, err := n.js.Subscribe(subject, callback, nats.Durable(DurableFromSubject(subject)), nats.ManualAck())
	if err != nil {
		return nil, err
	}
	return &natsSubscription{sub: sub}, nil
}

// DurableFromSubject turns a subject into a valid consumer name.
func DurableFromSubject(subject string) string {
	var b strings.Builder
	b.Grow(len(subject))
	for _, r := range subject {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Close encerra conexão
func (n *NATSBus) Close() error {
	n.conn.Close()
	return nil
}

// --- Implementações internas ---

type natsMessage struct {
	msg *nats.Msg
}

func (m *natsMessage) Data() []byte {
	return m.msg.Data
}

func (m *natsMessage) Subject() string {
	return m.msg.Subject
}

func (m *natsMessage) Ack() error {
	return m.msg.Ack()
}

type natsSubscription struct {
	sub *nats.Subscription
}

func (s *natsSubscription) Unsubscribe() error {
	return s.sub.Unsubscribe()
}
