package memory

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/core/ports"
)

// Store guarda devices em um map ordenado por inserção.
type Store struct {
	mu      sync.RWMutex
	order   []domain.DeviceID
	devices map[domain.DeviceID]domain.DeviceSnapshot
}

// Verifica interface
var _ ports.DeviceRepository = (*Store)(nil)

func New() *Store {
	return &Store{devices: make(map[domain.DeviceID]domain.DeviceSnapshot)}
}

func (s *Store) GetDevice(ctx context.Context, id domain.DeviceID) (*domain.Device, error) {
	s.mu.RLock()
	snap, ok := s.devices[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return domain.RestoreFromSnapshot(snap)
}

func (s *Store) GetAllDevices(ctx context.Context) iter.Seq2[*domain.Device, error] {
	return func(yield func(*domain.Device, error) bool) {
		for _, snap := range s.snapshot() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			device, err := domain.RestoreFromSnapshot(snap)
			if !yield(device, err) || err != nil {
				return
			}
		}
	}
}

func (s *Store) GetAllDevicesByBrand(ctx context.Context, brand domain.BrandID, page ports.Page) iter.Seq2[*domain.Device, error] {
	page = page.Normalize()
	return func(yield func(*domain.Device, error) bool) {
		var matched []domain.DeviceSnapshot
		for _, snap := range s.snapshot() {
			if snap.Brand == brand.String() {
				matched = append(matched, snap)
			}
		}
		// created_on desc, id como desempate
		slices.SortStableFunc(matched, func(a, b domain.DeviceSnapshot) int {
			if c := b.CreatedOn.Compare(a.CreatedOn); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})

		if page.Offset >= len(matched) {
			return
		}
		end := min(page.Offset+page.Size, len(matched))
		for _, snap := range matched[page.Offset:end] {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			device, err := domain.RestoreFromSnapshot(snap)
			if !yield(device, err) || err != nil {
				return
			}
		}
	}
}

// SaveDevice substitui o registro existente mantendo a posição original.
func (s *Store) SaveDevice(ctx context.Context, device *domain.Device) error {
	if device == nil {
		return fmt.Errorf("%w: nil device", domain.ErrInvalidOperation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.devices[device.ID()]; !exists {
		s.order = append(s.order, device.ID())
	}
	s.devices[device.ID()] = device.Snapshot()
	return nil
}

// DeleteDevice fails with ErrInvalidOperation when the id is unknown.
func (s *Store) DeleteDevice(ctx context.Context, id domain.DeviceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.devices[id]; !exists {
		return fmt.Errorf("%w: delete of unknown device %s", domain.ErrInvalidOperation, id)
	}
	delete(s.devices, id)
	s.order = slices.DeleteFunc(s.order, func(other domain.DeviceID) bool { return other == id })
	return nil
}

func (s *Store) Close() error {
	return nil
}

// snapshot copia o estado atual para iterar sem segurar o lock.
func (s *Store) snapshot() []domain.DeviceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DeviceSnapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.devices[id])
	}
	return out
}
