package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxBrandLength = 100
	MaxNameLength  = 100
)

// BrandID identifies a brand. The raw string is kept as given.
type BrandID struct {
	value string
}

// BrandIDFrom valida e encapsula o brand.
func BrandIDFrom(raw string) (BrandID, error) {
	if strings.TrimSpace(raw) == "" {
		return BrandID{}, fmt.Errorf("%w: empty brand id", ErrInvalidIdentifier)
	}
	if utf8.RuneCountInString(raw) > MaxBrandLength {
		return BrandID{}, fmt.Errorf("%w: brand id longer than %d characters", ErrInvalidIdentifier, MaxBrandLength)
	}
	return BrandID{value: raw}, nil
}

func (b BrandID) String() string {
	return b.value
}

// ValidateName applies the name rules used by the HTTP layer. Device itself
// does not enforce them.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d characters", ErrValidation, MaxNameLength)
	}
	return nil
}
