package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/diogoX451/devicedb/internal/core/domain"
	"github.com/diogoX451/devicedb/internal/core/ports"
	"github.com/diogoX451/devicedb/internal/logger"
	"github.com/diogoX451/devicedb/internal/observability"
	"github.com/diogoX451/devicedb/internal/patch"
)

// DeviceService orquestra os casos de uso de device.
type DeviceService struct {
	repo     ports.DeviceRepository
	eventBus ports.EventBus
	log      *logger.Logger
}

func NewDeviceService(repo ports.DeviceRepository, bus ports.EventBus, log *logger.Logger) *DeviceService {
	if log == nil {
		log = logger.Nop()
	}
	return &DeviceService{
		repo:     repo,
		eventBus: bus,
		log:      log,
	}
}

// updatable é a cópia de trabalho que o patch altera.
type updatable struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

// CreateDevice valida a entrada, gera o id e persiste.
func (s *DeviceService) CreateDevice(ctx context.Context, name, brand string) (device *domain.Device, err error) {
	defer func() { observability.ObserveDeviceOperation("create", err) }()

	if err := domain.ValidateName(name); err != nil {
		return nil, err
	}
	brandID, err := domain.BrandIDFrom(brand)
	if err != nil {
		return nil, err
	}

	device = domain.NewDevice(domain.NewDeviceID(), name, brandID)
	if err := s.repo.SaveDevice(ctx, device); err != nil {
		return nil, fmt.Errorf("save device: %w", err)
	}

	s.publish(ctx, domain.DeviceCreated, device)
	return device, nil
}

// GetDevice returns ErrNotFound when the id is unknown.
func (s *DeviceService) GetDevice(ctx context.Context, id domain.DeviceID) (*domain.Device, error) {
	device, err := s.repo.GetDevice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}
	if device == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return device, nil
}

func (s *DeviceService) ListDevices(ctx context.Context) iter.Seq2[*domain.Device, error] {
	return s.repo.GetAllDevices(ctx)
}

func (s *DeviceService) ListDevicesByBrand(ctx context.Context, brand domain.BrandID, page ports.Page) iter.Seq2[*domain.Device, error] {
	return s.repo.GetAllDevicesByBrand(ctx, brand, page.Normalize())
}

// DeleteDevice checks existence first so the repository never sees an
// unknown id.
func (s *DeviceService) DeleteDevice(ctx context.Context, id domain.DeviceID) (err error) {
	defer func() { observability.ObserveDeviceOperation("delete", err) }()

	device, err := s.GetDevice(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDevice(ctx, id); err != nil {
		return fmt.Errorf("delete device: %w", err)
	}

	s.publish(ctx, domain.DeviceDeleted, device)
	return nil
}

// PatchDevice aplica um JSON Patch (só "replace") ao device.
//
// O documento é validado antes de buscar o device, então um op inválido é
// rejeitado mesmo para ids inexistentes.
func (s *DeviceService) PatchDevice(ctx context.Context, id domain.DeviceID, doc patch.Document) (device *domain.Device, err error) {
	defer func() { observability.ObserveDeviceOperation("patch", err) }()

	// 1. Documento vazio
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidPatch, patch.ErrEmpty)
	}
	// 2. Só replace
	if err := doc.OnlyReplace(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidPatch, err)
	}

	// 3. Carrega device
	device, err = s.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}

	// 4. Cópia de trabalho a partir do estado atual
	seed, err := json.Marshal(updatable{Name: device.Name(), Brand: device.BrandID().String()})
	if err != nil {
		return nil, err
	}

	// 5. Aplica os replaces em ordem
	patched, err := doc.Apply(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidPatch, err)
	}
	var changes updatable
	if err := json.Unmarshal(patched, &changes); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidPatch, err)
	}

	// 6. Valida e atualiza o aggregate
	if err := domain.ValidateName(changes.Name); err != nil {
		return nil, err
	}
	if err := device.Update(domain.UpdateDevice{Name: changes.Name, Brand: changes.Brand}); err != nil {
		return nil, err
	}

	// 7. Persiste
	if err := s.repo.SaveDevice(ctx, device); err != nil {
		return nil, fmt.Errorf("save device: %w", err)
	}

	s.publish(ctx, domain.DeviceUpdated, device)
	return device, nil
}

// publish é best-effort: o store é a fonte da verdade.
func (s *DeviceService) publish(ctx context.Context, kind domain.DeviceEventType, device *domain.Device) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishDeviceEvent(ctx, domain.NewDeviceEvent(kind, device)); err != nil {
		s.log.Warn("failed to publish device event",
			"event", string(kind),
			"device_id", device.ID().String(),
			"error", err,
		)
	}
}

// IsClientError reports whether err comes from caller input rather than
// infrastructure.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidIdentifier) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidPatch)
}
