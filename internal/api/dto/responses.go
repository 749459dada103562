package dto

import (
	"time"

	"github.com/diogoX451/devicedb/internal/core/domain"
)

type DeviceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	CreatedOn time.Time `json:"created_on"`
}

func FromDevice(d *domain.Device) DeviceResponse {
	return DeviceResponse{
		ID:        d.ID().String(),
		Name:      d.Name(),
		Brand:     d.BrandID().String(),
		CreatedOn: d.CreatedOn().UTC(),
	}
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
