package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	eventsadapter "github.com/diogoX451/devicedb/internal/adapters/events"
	"github.com/diogoX451/devicedb/internal/config"
	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/events"
	"github.com/diogoX451/devicedb/internal/logger"
)

// device-events assina os eventos de device e loga cada um.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	bus, err := eventsadapter.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect event bus", "driver", cfg.Events.Driver, "error", err)
	}
	if bus == nil {
		log.Fatal("events.driver is none, nothing to subscribe to")
	}
	defer bus.Close()

	subject := eventsadapter.Wildcard(cfg)
	sub, err := bus.Subscribe(subject, func(_ context.Context, msg events.Message) error {
		var event domain.DeviceEvent
		if err := json.Unmarshal(msg.Data(), &event); err != nil {
			log.Warn("Dropping malformed event", "subject", msg.Subject(), "error", err)
			// ack para não reentregar lixo
			return msg.Ack()
		}

		log.Info("Device event",
			"subject", msg.Subject(),
			"type", string(event.Type),
			"device_id", event.DeviceID,
			"name", event.Name,
			"brand", event.Brand,
		)
		return msg.Ack()
	})
	if err != nil {
		log.Fatal("Failed to subscribe", "subject", subject, "error", err)
	}
	defer sub.Unsubscribe()

	log.Info("Listening for device events", "driver", cfg.Events.Driver, "subject", subject)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Subscriber stopped")
}
