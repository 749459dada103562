package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// DeviceID identifies a single device.
//
// The current scheme is a random UUID; the zero UUID is never a valid id.
type DeviceID struct {
	value uuid.UUID
}

func NewDeviceID() DeviceID {
	return DeviceID{value: uuid.New()}
}

// DeviceIDFrom wraps an existing UUID, rejecting uuid.Nil.
func DeviceIDFrom(id uuid.UUID) (DeviceID, error) {
	if id == uuid.Nil {
		return DeviceID{}, fmt.Errorf("%w: empty device id", ErrInvalidIdentifier)
	}
	return DeviceID{value: id}, nil
}

// ParseDeviceID parses the textual form of a device id.
func ParseDeviceID(raw string) (DeviceID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return DeviceID{}, fmt.Errorf("%w: device id %q: %v", ErrInvalidIdentifier, raw, err)
	}
	return DeviceIDFrom(id)
}

func (d DeviceID) Value() uuid.UUID {
	return d.value
}

func (d DeviceID) String() string {
	return d.value.String()
}

// IsZero reports whether d was never set by a constructor.
func (d DeviceID) IsZero() bool {
	return d.value == uuid.Nil
}
