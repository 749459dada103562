package relational

import (
	"context"
	"fmt"
	"iter"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/core/ports"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver   string
	DSN      string
	LogLevel logger.LogLevel
}

// Open connects with the dialect named by cfg.Driver.
func Open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.New(postgres.Config{DSN: cfg.DSN})
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported relational driver %q", cfg.Driver)
	}

	level := cfg.LogLevel
	if level == 0 {
		level = logger.Warn
	}
	gormLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger, NowFunc: func() time.Time { return time.Now().UTC() }})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	return db, nil
}

// Store persiste devices numa tabela única.
type Store struct {
	db *gorm.DB
}

// Verifica interface
var _ ports.DeviceRepository = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetDevice(ctx context.Context, id domain.DeviceID) (*domain.Device, error) {
	var records []deviceRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id.String()).Limit(1).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("get device %s: %w", id, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0].toDomain()
}

func (s *Store) GetAllDevices(ctx context.Context) iter.Seq2[*domain.Device, error] {
	return func(yield func(*domain.Device, error) bool) {
		query := s.db.WithContext(ctx).Model(&deviceRecord{}).Order("created_on ASC, id ASC")
		s.stream(query, yield)
	}
}

func (s *Store) GetAllDevicesByBrand(ctx context.Context, brand domain.BrandID, page ports.Page) iter.Seq2[*domain.Device, error] {
	page = page.Normalize()
	return func(yield func(*domain.Device, error) bool) {
		query := s.db.WithContext(ctx).Model(&deviceRecord{}).
			Where("brand_id = ?", brand.String()).
			Order("created_on DESC, id ASC").
			Offset(page.Offset).
			Limit(page.Size)
		s.stream(query, yield)
	}
}

// stream percorre as linhas sem carregar tudo em memória.
func (s *Store) stream(query *gorm.DB, yield func(*domain.Device, error) bool) {
	rows, err := query.Rows()
	if err != nil {
		yield(nil, fmt.Errorf("query devices: %w", err))
		return
	}
	defer rows.Close()

	for rows.Next() {
		var rec deviceRecord
		if err := s.db.ScanRows(rows, &rec); err != nil {
			yield(nil, fmt.Errorf("scan device: %w", err))
			return
		}
		device, err := rec.toDomain()
		if !yield(device, err) || err != nil {
			return
		}
	}
	if err := rows.Err(); err != nil {
		yield(nil, err)
	}
}

// SaveDevice faz upsert; created_on fica intacto em conflito.
func (s *Store) SaveDevice(ctx context.Context, device *domain.Device) error {
	if device == nil {
		return fmt.Errorf("%w: nil device", domain.ErrInvalidOperation)
	}
	rec := toRecord(device)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "brand_id"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save device %s: %w", rec.ID, err)
	}
	return nil
}

// DeleteDevice is a no-op for unknown ids.
func (s *Store) DeleteDevice(ctx context.Context, id domain.DeviceID) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&deviceRecord{}).Error; err != nil {
		return fmt.Errorf("delete device %s: %w", id, err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
