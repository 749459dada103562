// Package storetest holds the behaviour every ports.DeviceRepository must
// show, shared by the adapter test suites.
package storetest

import (
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/diogoX451/devicedb/internal/core/domain"
)

// DeviceBuilder generates fresh random values per builder; nothing is shared
// between tests.
type DeviceBuilder struct {
	id        uuid.UUID
	name      string
	brand     string
	createdOn time.Time
}

func NewDeviceBuilder() *DeviceBuilder {
	return &DeviceBuilder{
		id:        uuid.New(),
		name:      "device-" + strconv.Itoa(rand.IntN(1_000_000)),
		brand:     "brand-" + strconv.Itoa(rand.IntN(1_000_000)),
		createdOn: time.Now().UTC().Add(-time.Duration(rand.IntN(3600)) * time.Second).Truncate(time.Microsecond),
	}
}

func (b *DeviceBuilder) WithID(id uuid.UUID) *DeviceBuilder {
	b.id = id
	return b
}

func (b *DeviceBuilder) WithName(name string) *DeviceBuilder {
	b.name = name
	return b
}

func (b *DeviceBuilder) WithBrand(brand string) *DeviceBuilder {
	b.brand = brand
	return b
}

func (b *DeviceBuilder) WithCreatedOn(t time.Time) *DeviceBuilder {
	b.createdOn = t.UTC().Truncate(time.Microsecond)
	return b
}

func (b *DeviceBuilder) Build(t testing.TB) *domain.Device {
	t.Helper()
	id, err := domain.DeviceIDFrom(b.id)
	if err != nil {
		t.Fatalf("builder id: %v", err)
	}
	brand, err := domain.BrandIDFrom(b.brand)
	if err != nil {
		t.Fatalf("builder brand: %v", err)
	}
	return domain.RestoreDevice(id, b.name, brand, b.createdOn)
}
