package events

import (
	"fmt"
	"time"

	"github.com/diogoX451/devicedb/internal/config"
	"github.com/diogoX451/devicedb/internal/core/ports"
	"github.com/diogoX451/devicedb/internal/events"
	mqttevents "github.com/diogoX451/devicedb/internal/events/mqtt"
	natsevents "github.com/diogoX451/devicedb/internal/events/nats"
)

// Connect abre o bus bruto do events.driver. Para "none" devolve nil.
// No NATS o stream de devices é criado aqui.
func Connect(cfg *config.Config) (events.Bus, error) {
	switch cfg.Events.Driver {
	case config.EventsNone, "":
		return nil, nil

	case config.EventsNATS:
		bus, err := natsevents.New(natsevents.Config{
			URL:           cfg.NATS.URL,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: 2 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		if err := bus.SetupDeviceStreams(cfg.NATS.Stream); err != nil {
			bus.Close()
			return nil, fmt.Errorf("setup streams: %w", err)
		}
		return bus, nil

	case config.EventsMQTT:
		return mqttevents.New(mqttevents.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
		})

	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Events.Driver)
	}
}

// Subjects devolve o mapeamento evento -> subject do driver.
func Subjects(cfg *config.Config) SubjectFunc {
	if cfg.Events.Driver == config.EventsMQTT {
		return MQTTTopics(cfg.MQTT.TopicPrefix)
	}
	return NATSSubjects
}

// Wildcard is the subscription pattern that matches every device event.
func Wildcard(cfg *config.Config) string {
	if cfg.Events.Driver == config.EventsMQTT {
		return topicPrefix(cfg.MQTT.TopicPrefix) + "/device/+/+"
	}
	return natsevents.DeviceSubjectPrefix + ".>"
}

// Open devolve a porta do Core; NopBus quando events.driver = none.
func Open(cfg *config.Config) (ports.EventBus, error) {
	bus, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		return NopBus{}, nil
	}
	return NewEventBus(bus, Subjects(cfg)), nil
}
