package domain

import "time"

// Device é o aggregate root.
// ID e CreatedOn são imutáveis; Name e BrandID só mudam via Update.
type Device struct {
	id        DeviceID
	name      string
	brandID   BrandID
	createdOn time.Time
}

// UpdateDevice carries both mutable fields. Callers resolve partial patches
// before calling Update, so both fields are always applied.
type UpdateDevice struct {
	Name  string
	Brand string
}

// DeviceSnapshot is the flat form adapters persist.
type DeviceSnapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	CreatedOn time.Time `json:"created_on"`
}

var now = func() time.Time { return time.Now().UTC() }

// NewDevice creates a device stamped with the current UTC time.
func NewDevice(id DeviceID, name string, brand BrandID) *Device {
	return &Device{
		id:        id,
		name:      name,
		brandID:   brand,
		createdOn: now(),
	}
}

// RestoreDevice rebuilds a device from persisted state without validation.
func RestoreDevice(id DeviceID, name string, brand BrandID, createdOn time.Time) *Device {
	return &Device{
		id:        id,
		name:      name,
		brandID:   brand,
		createdOn: createdOn.UTC(),
	}
}

// RestoreFromSnapshot validates identifiers coming back from a store.
func RestoreFromSnapshot(s DeviceSnapshot) (*Device, error) {
	id, err := ParseDeviceID(s.ID)
	if err != nil {
		return nil, err
	}
	brand, err := BrandIDFrom(s.Brand)
	if err != nil {
		return nil, err
	}
	return RestoreDevice(id, s.Name, brand, s.CreatedOn), nil
}

func (d *Device) ID() DeviceID         { return d.id }
func (d *Device) Name() string         { return d.name }
func (d *Device) BrandID() BrandID     { return d.brandID }
func (d *Device) CreatedOn() time.Time { return d.createdOn }

// Update replaces name and brand. The brand is validated first so a failure
// leaves the device unchanged.
func (d *Device) Update(changes UpdateDevice) error {
	brand, err := BrandIDFrom(changes.Brand)
	if err != nil {
		return err
	}
	d.name = changes.Name
	d.brandID = brand
	return nil
}

func (d *Device) Snapshot() DeviceSnapshot {
	return DeviceSnapshot{
		ID:        d.id.String(),
		Name:      d.name,
		Brand:     d.brandID.String(),
		CreatedOn: d.createdOn,
	}
}
