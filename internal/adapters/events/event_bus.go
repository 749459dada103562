package events

import (
	"context"
	"strings"

	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/core/ports"
	"github.com/diogoX451/devicedb/internal/events"
	natsevents "github.com/diogoX451/devicedb/internal/events/nats"
)

// SubjectFunc decide o subject/tópico de cada evento.
type SubjectFunc func(event domain.DeviceEvent) string

// NATSSubjects maps events to devicedb.device.<action>.
func NATSSubjects(event domain.DeviceEvent) string {
	return natsevents.DeviceSubjectPrefix + "." + action(event.Type)
}

// MQTTTopics maps events to <prefix>/device/<id>/<action>.
func MQTTTopics(prefix string) SubjectFunc {
	prefix = topicPrefix(prefix)
	return func(event domain.DeviceEvent) string {
		return prefix + "/device/" + event.DeviceID + "/" + action(event.Type)
	}
}

func topicPrefix(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return "devicedb"
	}
	return prefix
}

// action extrai "created" de "device.created"
func action(t domain.DeviceEventType) string {
	s := string(t)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// EventBusImpl adapta um events.Bus para a interface do Core
type EventBusImpl struct {
	bus     events.Bus
	subject SubjectFunc
}

var _ ports.EventBus = (*EventBusImpl)(nil)

func NewEventBus(bus events.Bus, subject SubjectFunc) *EventBusImpl {
	return &EventBusImpl{bus: bus, subject: subject}
}

func (e *EventBusImpl) PublishDeviceEvent(ctx context.Context, event domain.DeviceEvent) error {
	return e.bus.PublishEvent(ctx, e.subject(event), event)
}

func (e *EventBusImpl) Close() error {
	return e.bus.Close()
}

// NopBus descarta eventos (events.driver = none).
type NopBus struct{}

var _ ports.EventBus = NopBus{}

func (NopBus) PublishDeviceEvent(context.Context, domain.DeviceEvent) error { return nil }
func (NopBus) Close() error                                                 { return nil }
