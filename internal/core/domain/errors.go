package domain

import "errors"

var (
	// ErrInvalidIdentifier indica DeviceID ou BrandID inválido
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrValidation covers input rules checked at the transport boundary.
	ErrValidation = errors.New("validation failed")

	ErrNotFound = errors.New("device not found")

	// ErrInvalidOperation is returned by adapters when the caller breaks the
	// repository protocol, e.g. deleting an id it never checked for.
	ErrInvalidOperation = errors.New("invalid operation")

	ErrInvalidPatch = errors.New("invalid patch")
)
