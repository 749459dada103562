package ports

import (
	"context"
	"iter"

	"github.com/diogoX451/devicedb/internal/core/domain"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Page é offset/size simples, sem cursor
type Page struct {
	Offset int
	Size   int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// DeviceRepository abstração de persistência
// Implementado em infra (memory, relational, Redis), usado em service
type DeviceRepository interface {
	// GetDevice returns (nil, nil) when the id is unknown.
	GetDevice(ctx context.Context, id domain.DeviceID) (*domain.Device, error)

	// Listagens lazy: cada chamada relê o store.
	// Um erro é entregue uma vez como (nil, err) e encerra a sequência.
	GetAllDevices(ctx context.Context) iter.Seq2[*domain.Device, error]
	GetAllDevicesByBrand(ctx context.Context, brand domain.BrandID, page Page) iter.Seq2[*domain.Device, error]

	// SaveDevice faz upsert (substituição completa) pelo id.
	SaveDevice(ctx context.Context, device *domain.Device) error

	// DeleteDevice behaviour for unknown ids is adapter-defined; callers
	// check existence with GetDevice first.
	DeleteDevice(ctx context.Context, id domain.DeviceID) error

	Close() error
}
