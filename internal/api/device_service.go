package api

import (
	"context"
	"iter"

	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/core/ports"
	"github.com/diogoX451/devicedb/internal/patch"
)

// DeviceService é o que os handlers precisam do Core.
type DeviceService interface {
	CreateDevice(ctx context.Context, name, brand string) (*domain.Device, error)
	GetDevice(ctx context.Context, id domain.DeviceID) (*domain.Device, error)
	ListDevices(ctx context.Context) iter.Seq2[*domain.Device, error]
	ListDevicesByBrand(ctx context.Context, brand domain.BrandID, page ports.Page) iter.Seq2[*domain.Device, error]
	DeleteDevice(ctx context.Context, id domain.DeviceID) error
	PatchDevice(ctx context.Context, id domain.DeviceID, doc patch.Document) (*domain.Device, error)
}
