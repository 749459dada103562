package relational

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/core/ports"
	"github.com/diogoX451/devicedb/internal/store/storetest"
)

// openSQLite returns a private in-memory database for one test.
func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(Config{
		Driver:   DriverSQLite,
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestStoreContract(t *testing.T) {
	storetest.RunRepositoryContract(t, func(t *testing.T) ports.DeviceRepository {
		return New(openSQLite(t))
	}, storetest.Options{})
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	versions, err := AppliedVersions(ctx, db)
	if err != nil {
		t.Fatalf("applied versions: %v", err)
	}
	if len(versions) != len(migrations) || versions[0] != 202110102337 {
		t.Errorf("unexpected versions %v", versions)
	}
	if !db.Migrator().HasIndex(&deviceRecord{}, "idx_devices_brand_created") {
		t.Error("expected brand index")
	}
}

func TestUpsertKeepsCreatedOn(t *testing.T) {
	ctx := context.Background()
	store := New(openSQLite(t))

	original := time.Date(2021, 10, 10, 23, 37, 0, 0, time.UTC)
	device := storetest.NewDeviceBuilder().WithCreatedOn(original).Build(t)
	if err := store.SaveDevice(ctx, device); err != nil {
		t.Fatalf("save: %v", err)
	}

	brand, _ := domain.BrandIDFrom("Globex")
	replacement := domain.RestoreDevice(device.ID(), "Renamed", brand, original.Add(48*time.Hour))
	if err := store.SaveDevice(ctx, replacement); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.GetDevice(ctx, device.ID())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name() != "Renamed" || got.BrandID().String() != "Globex" {
		t.Errorf("mutable fields not replaced: %+v", got.Snapshot())
	}
	if !got.CreatedOn().Equal(original) {
		t.Errorf("created_on changed: %v", got.CreatedOn())
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected error")
	}
}
