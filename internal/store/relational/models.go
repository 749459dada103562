package relational

import (
	"time"

	"github.com/diogoX451/devicedb/internal/core/domain"
)

type deviceRecord struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey;not null"`
	Name      string    `gorm:"column:name;type:varchar(100);not null"`
	BrandID   string    `gorm:"column:brand_id;type:varchar(100);not null;index:idx_devices_brand_created,priority:1"`
	CreatedOn time.Time `gorm:"column:created_on;not null;index:idx_devices_brand_created,priority:2"`
}

func (deviceRecord) TableName() string { return "devices" }

type schemaMigration struct {
	Version   int64     `gorm:"column:version;primaryKey;autoIncrement:false"`
	Name      string    `gorm:"column:name;type:varchar(200);not null"`
	AppliedAt time.Time `gorm:"column:applied_at;not null"`
}

func (schemaMigration) TableName() string { return "schema_migrations" }

func toRecord(d *domain.Device) deviceRecord {
	s := d.Snapshot()
	return deviceRecord{
		ID:        s.ID,
		Name:      s.Name,
		BrandID:   s.Brand,
		CreatedOn: s.CreatedOn,
	}
}

func (r deviceRecord) toDomain() (*domain.Device, error) {
	return domain.RestoreFromSnapshot(domain.DeviceSnapshot{
		ID:        r.ID,
		Name:      r.Name,
		Brand:     r.BrandID,
		CreatedOn: r.CreatedOn,
	})
}
