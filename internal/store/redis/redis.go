package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/core/ports"
)

const scanBatch = 100

type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ ports.DeviceRepository = (*RedisStore)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	// Prefix namespaces every key; defaults to "devicedb".
	Prefix string
}

func New(cfg Config) (*RedisStore, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = "devicedb"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
	}, nil
}

// Chaves Redis:
// {prefix}:device:{id} -> json DeviceSnapshot
// {prefix}:devices:index -> zset de ids, score = created_on (unix micro)
// {prefix}:brand:{brand}:devices -> zset de ids da marca, mesmo score

func (r *RedisStore) deviceKey(id string) string {
	return fmt.Sprintf("%s:device:%s", r.prefix, id)
}

func (r *RedisStore) indexKey() string {
	return fmt.Sprintf("%s:devices:index", r.prefix)
}

func (r *RedisStore) brandIndexKey(brand string) string {
	return fmt.Sprintf("%s:brand:%s:devices", r.prefix, brand)
}

func score(t time.Time) float64 {
	return float64(t.UnixMicro())
}

func (r *RedisStore) load(ctx context.Context, id string) (*domain.DeviceSnapshot, error) {
	data, err := r.client.Get(ctx, r.deviceKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap domain.DeviceSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal device: %w", err)
	}
	return &snap, nil
}

func (r *RedisStore) GetDevice(ctx context.Context, id domain.DeviceID) (*domain.Device, error) {
	snap, err := r.load(ctx, id.String())
	if err != nil || snap == nil {
		return nil, err
	}
	return domain.RestoreFromSnapshot(*snap)
}

// GetAllDevices percorre o índice em lotes, do mais antigo ao mais novo.
func (r *RedisStore) GetAllDevices(ctx context.Context) iter.Seq2[*domain.Device, error] {
	return func(yield func(*domain.Device, error) bool) {
		for start := int64(0); ; start += scanBatch {
			ids, err := r.client.ZRange(ctx, r.indexKey(), start, start+scanBatch-1).Result()
			if err != nil {
				yield(nil, err)
				return
			}
			if len(ids) == 0 {
				return
			}
			if !r.yieldAll(ctx, ids, yield) {
				return
			}
			if len(ids) < scanBatch {
				return
			}
		}
	}
}

func (r *RedisStore) GetAllDevicesByBrand(ctx context.Context, brand domain.BrandID, page ports.Page) iter.Seq2[*domain.Device, error] {
	page = page.Normalize()
	return func(yield func(*domain.Device, error) bool) {
		start := int64(page.Offset)
		stop := start + int64(page.Size) - 1
		ids, err := r.client.ZRevRange(ctx, r.brandIndexKey(brand.String()), start, stop).Result()
		if err != nil {
			yield(nil, err)
			return
		}
		if len(ids) == 0 {
			return
		}
		r.yieldAll(ctx, ids, yield)
	}
}

// yieldAll carrega um lote com MGET; ids removidos no meio são ignorados.
// Retorna false quando a iteração deve parar.
func (r *RedisStore) yieldAll(ctx context.Context, ids []string, yield func(*domain.Device, error) bool) bool {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.deviceKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		yield(nil, err)
		return false
	}

	for _, value := range values {
		data, ok := value.(string)
		if !ok {
			continue
		}
		var snap domain.DeviceSnapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			yield(nil, fmt.Errorf("failed to unmarshal device: %w", err))
			return false
		}
		device, err := domain.RestoreFromSnapshot(snap)
		if !yield(device, err) || err != nil {
			return false
		}
	}
	return true
}

// SaveDevice substitui o snapshot e reindexa a marca.
func (r *RedisStore) SaveDevice(ctx context.Context, device *domain.Device) error {
	if device == nil {
		return fmt.Errorf("%w: nil device", domain.ErrInvalidOperation)
	}
	snap := device.Snapshot()

	previous, err := r.load(ctx, snap.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	if previous != nil && previous.Brand != snap.Brand {
		pipe.ZRem(ctx, r.brandIndexKey(previous.Brand), snap.ID)
	}
	pipe.Set(ctx, r.deviceKey(snap.ID), data, 0)
	member := redis.Z{Score: score(snap.CreatedOn), Member: snap.ID}
	pipe.ZAdd(ctx, r.indexKey(), member)
	pipe.ZAdd(ctx, r.brandIndexKey(snap.Brand), member)

	_, err = pipe.Exec(ctx)
	return err
}

// DeleteDevice remove tudo; id desconhecido é no-op.
func (r *RedisStore) DeleteDevice(ctx context.Context, id domain.DeviceID) error {
	snap, err := r.load(ctx, id.String())
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.deviceKey(snap.ID))
	pipe.ZRem(ctx, r.indexKey(), snap.ID)
	pipe.ZRem(ctx, r.brandIndexKey(snap.Brand), snap.ID)

	_, err = pipe.Exec(ctx)
	return err
}

// Purge apaga todas as chaves do prefixo
func (r *RedisStore) Purge(ctx context.Context) error {
	keys := r.client.Scan(ctx, 0, r.prefix+":*", scanBatch).Iterator()
	for keys.Next(ctx) {
		if err := r.client.Del(ctx, keys.Val()).Err(); err != nil {
			return err
		}
	}
	return keys.Err()
}

// Count returns how many devices are indexed.
func (r *RedisStore) Count(ctx context.Context) (int64, error) {
	return r.client.ZCard(ctx, r.indexKey()).Result()
}

// Close fecha conexão
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) String() string {
	return "redis(" + r.client.Options().Addr + "/" + strconv.Itoa(r.client.Options().DB) + ")"
}
