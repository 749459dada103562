package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Errorf("port: got %q", cfg.App.Port)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Errorf("storage driver: got %q", cfg.Storage.Driver)
	}
	if cfg.Events.Driver != EventsNone {
		t.Errorf("events driver: got %q", cfg.Events.Driver)
	}
	if cfg.App.ShutdownTimeout != 30*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.App.ShutdownTimeout)
	}
	if cfg.Redis.PoolSize != 10 {
		t.Errorf("pool size: got %d", cfg.Redis.PoolSize)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEVICEDB_APP_PORT", "9090")
	t.Setenv("DEVICEDB_STORAGE_DRIVER", "sqlite")
	t.Setenv("DEVICEDB_STORAGE_DSN", "file:devices.db")
	t.Setenv("DEVICEDB_EVENTS_DRIVER", "nats")
	t.Setenv("DEVICEDB_APP_SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "9090" {
		t.Errorf("port: got %q", cfg.App.Port)
	}
	if cfg.Storage.Driver != StorageSQLite || cfg.Storage.DSN != "file:devices.db" {
		t.Errorf("storage: got %+v", cfg.Storage)
	}
	if cfg.Events.Driver != EventsNATS {
		t.Errorf("events: got %q", cfg.Events.Driver)
	}
	if cfg.App.ShutdownTimeout != 5*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.App.ShutdownTimeout)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devicedb.yaml")
	body := `
app:
  port: "7000"
  log_mode: prod
storage:
  driver: redis
redis:
  addr: cache:6379
mqtt:
  topic_prefix: plant-1
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != "7000" || cfg.App.LogMode != "prod" {
		t.Errorf("app: got %+v", cfg.App)
	}
	if cfg.Storage.Driver != StorageRedis || cfg.Redis.Addr != "cache:6379" {
		t.Errorf("redis: got %+v / %+v", cfg.Storage, cfg.Redis)
	}
	if cfg.MQTT.TopicPrefix != "plant-1" {
		t.Errorf("mqtt prefix: got %q", cfg.MQTT.TopicPrefix)
	}
	// default mantido
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Errorf("nats url: got %q", cfg.NATS.URL)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			App:     AppConfig{Port: "8080", ShutdownTimeout: time.Second},
			Storage: StorageConfig{Driver: StorageMemory},
			Events:  EventsConfig{Driver: EventsNone},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "mongo" }, "unknown storage driver"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = StoragePostgres }, "storage.dsn"},
		{"sqlite with dsn", func(c *Config) { c.Storage.Driver = StorageSQLite; c.Storage.DSN = "file::memory:" }, ""},
		{"unknown events", func(c *Config) { c.Events.Driver = "kafka" }, "unknown events driver"},
		{"empty port", func(c *Config) { c.App.Port = "" }, "app.port"},
		{"zero shutdown", func(c *Config) { c.App.ShutdownTimeout = 0 }, "shutdown_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
