package storetest

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/core/ports"
)

type Options struct {
	// DeleteMissingFails marks adapters that reject deleting unknown ids.
	DeleteMissingFails bool
}

// Collect drains a device sequence, failing the test on the first error.
func Collect(t testing.TB, seq iter.Seq2[*domain.Device, error]) []*domain.Device {
	t.Helper()
	var out []*domain.Device
	for device, err := range seq {
		if err != nil {
			t.Fatalf("iteration error: %v", err)
		}
		out = append(out, device)
	}
	return out
}

// AssertSameDevice compares every field of two devices.
func AssertSameDevice(t testing.TB, want, got *domain.Device) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected device %s, got nil", want.ID())
	}
	if got.ID() != want.ID() {
		t.Errorf("id: expected %s, got %s", want.ID(), got.ID())
	}
	if got.Name() != want.Name() {
		t.Errorf("name: expected %q, got %q", want.Name(), got.Name())
	}
	if got.BrandID() != want.BrandID() {
		t.Errorf("brand: expected %q, got %q", want.BrandID(), got.BrandID())
	}
	if !got.CreatedOn().Equal(want.CreatedOn()) {
		t.Errorf("created_on: expected %v, got %v", want.CreatedOn(), got.CreatedOn())
	}
}

// RunRepositoryContract runs the shared suite. newRepo must return an empty
// repository for every call.
func RunRepositoryContract(t *testing.T, newRepo func(t *testing.T) ports.DeviceRepository, opts Options) {
	ctx := context.Background()
	base := time.Date(2021, 10, 10, 23, 37, 0, 0, time.UTC)

	t.Run("get missing returns nil", func(t *testing.T) {
		repo := newRepo(t)
		device, err := repo.GetDevice(ctx, domain.NewDeviceID())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if device != nil {
			t.Fatalf("expected nil, got %+v", device.Snapshot())
		}
	})

	t.Run("save then get", func(t *testing.T) {
		repo := newRepo(t)
		device := NewDeviceBuilder().WithName("Phone").WithBrand("Acme").Build(t)

		if err := repo.SaveDevice(ctx, device); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := repo.GetDevice(ctx, device.ID())
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		AssertSameDevice(t, device, got)
	})

	t.Run("save is an upsert", func(t *testing.T) {
		repo := newRepo(t)
		device := NewDeviceBuilder().WithBrand("Acme").WithCreatedOn(base).Build(t)
		if err := repo.SaveDevice(ctx, device); err != nil {
			t.Fatalf("save: %v", err)
		}

		if err := device.Update(domain.UpdateDevice{Name: "Tablet", Brand: "Globex"}); err != nil {
			t.Fatalf("update: %v", err)
		}
		if err := repo.SaveDevice(ctx, device); err != nil {
			t.Fatalf("second save: %v", err)
		}
		if err := repo.SaveDevice(ctx, device); err != nil {
			t.Fatalf("third save: %v", err)
		}

		all := Collect(t, repo.GetAllDevices(ctx))
		if len(all) != 1 {
			t.Fatalf("expected 1 device, got %d", len(all))
		}
		AssertSameDevice(t, device, all[0])

		acme, _ := domain.BrandIDFrom("Acme")
		if stale := Collect(t, repo.GetAllDevicesByBrand(ctx, acme, ports.Page{})); len(stale) != 0 {
			t.Errorf("expected old brand to be empty, got %d", len(stale))
		}
	})

	t.Run("list all", func(t *testing.T) {
		repo := newRepo(t)
		if got := Collect(t, repo.GetAllDevices(ctx)); len(got) != 0 {
			t.Fatalf("expected empty list, got %d", len(got))
		}

		first := NewDeviceBuilder().WithCreatedOn(base).Build(t)
		second := NewDeviceBuilder().WithCreatedOn(base.Add(time.Minute)).Build(t)
		for _, d := range []*domain.Device{first, second} {
			if err := repo.SaveDevice(ctx, d); err != nil {
				t.Fatalf("save: %v", err)
			}
		}

		got := Collect(t, repo.GetAllDevices(ctx))
		if len(got) != 2 {
			t.Fatalf("expected 2 devices, got %d", len(got))
		}
		AssertSameDevice(t, first, got[0])
		AssertSameDevice(t, second, got[1])
	})

	t.Run("sequence rereads the store", func(t *testing.T) {
		repo := newRepo(t)
		seq := repo.GetAllDevices(ctx)

		if err := repo.SaveDevice(ctx, NewDeviceBuilder().WithCreatedOn(base).Build(t)); err != nil {
			t.Fatalf("save: %v", err)
		}
		if n := len(Collect(t, seq)); n != 1 {
			t.Fatalf("expected 1, got %d", n)
		}
		if err := repo.SaveDevice(ctx, NewDeviceBuilder().WithCreatedOn(base.Add(time.Second)).Build(t)); err != nil {
			t.Fatalf("save: %v", err)
		}
		if n := len(Collect(t, seq)); n != 2 {
			t.Fatalf("expected 2 after second save, got %d", n)
		}
	})

	t.Run("list by brand is paged newest first", func(t *testing.T) {
		repo := newRepo(t)
		var acme []*domain.Device
		for i := 0; i < 3; i++ {
			d := NewDeviceBuilder().WithBrand("Acme").WithCreatedOn(base.Add(time.Duration(i) * time.Hour)).Build(t)
			acme = append(acme, d)
			if err := repo.SaveDevice(ctx, d); err != nil {
				t.Fatalf("save: %v", err)
			}
		}
		other := NewDeviceBuilder().WithBrand("Globex").WithCreatedOn(base).Build(t)
		if err := repo.SaveDevice(ctx, other); err != nil {
			t.Fatalf("save: %v", err)
		}

		brand, _ := domain.BrandIDFrom("Acme")

		page := Collect(t, repo.GetAllDevicesByBrand(ctx, brand, ports.Page{Offset: 0, Size: 2}))
		if len(page) != 2 {
			t.Fatalf("expected 2, got %d", len(page))
		}
		AssertSameDevice(t, acme[2], page[0])
		AssertSameDevice(t, acme[1], page[1])

		page = Collect(t, repo.GetAllDevicesByBrand(ctx, brand, ports.Page{Offset: 2, Size: 2}))
		if len(page) != 1 {
			t.Fatalf("expected 1, got %d", len(page))
		}
		AssertSameDevice(t, acme[0], page[0])

		if page = Collect(t, repo.GetAllDevicesByBrand(ctx, brand, ports.Page{Offset: 10, Size: 2})); len(page) != 0 {
			t.Fatalf("expected empty page, got %d", len(page))
		}

		globex, _ := domain.BrandIDFrom("Globex")
		page = Collect(t, repo.GetAllDevicesByBrand(ctx, globex, ports.Page{}))
		if len(page) != 1 {
			t.Fatalf("expected 1, got %d", len(page))
		}
		AssertSameDevice(t, other, page[0])
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		device := NewDeviceBuilder().Build(t)
		if err := repo.SaveDevice(ctx, device); err != nil {
			t.Fatalf("save: %v", err)
		}

		if err := repo.DeleteDevice(ctx, device.ID()); err != nil {
			t.Fatalf("delete: %v", err)
		}
		got, err := repo.GetDevice(ctx, device.ID())
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != nil {
			t.Fatal("expected device to be gone")
		}
		if n := len(Collect(t, repo.GetAllDevices(ctx))); n != 0 {
			t.Fatalf("expected empty list, got %d", n)
		}

		err = repo.DeleteDevice(ctx, domain.NewDeviceID())
		if opts.DeleteMissingFails {
			if !errors.Is(err, domain.ErrInvalidOperation) {
				t.Fatalf("expected ErrInvalidOperation, got %v", err)
			}
		} else if err != nil {
			t.Fatalf("expected no-op, got %v", err)
		}
	})
}
