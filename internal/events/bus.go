package events

import "context"

// Bus abstração de fila de eventos
type Bus interface {
	// Publicação
	Publish(ctx context.Context, subject string, payload []byte) error
	PublishEvent(ctx context.Context, subject string, event interface{}) error

	// Subscrição push (callback)
	Subscribe(subject string, handler Handler) (Subscription, error)

	Close() error
}

// Handler processa mensagens
type Handler func(ctx context.Context, msg Message) error

type Message interface {
	Data() []byte
	Subject() string
	Ack() error
}

type Subscription interface {
	Unsubscribe() error
}
