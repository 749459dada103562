package domain

import "time"

type DeviceEventType string

const (
	DeviceCreated DeviceEventType = "device.created"
	DeviceUpdated DeviceEventType = "device.updated"
	DeviceDeleted DeviceEventType = "device.deleted"
)

// DeviceEvent notifies listeners that a device changed.
type DeviceEvent struct {
	Type       DeviceEventType `json:"type"`
	DeviceID   string          `json:"device_id"`
	Name       string          `json:"name"`
	Brand      string          `json:"brand"`
	CreatedOn  time.Time       `json:"created_on"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func NewDeviceEvent(t DeviceEventType, d *Device) DeviceEvent {
	s := d.Snapshot()
	return DeviceEvent{
		Type:       t,
		DeviceID:   s.ID,
		Name:       s.Name,
		Brand:      s.Brand,
		CreatedOn:  s.CreatedOn,
		OccurredAt: now(),
	}
}
