package ports

import (
	"context"

	"github.com/diogoX451/devicedb/internal/core/domain"
)

// EventBus abstração de mensageria
type EventBus interface {
	PublishDeviceEvent(ctx context.Context, event domain.DeviceEvent) error
	Close() error
}
