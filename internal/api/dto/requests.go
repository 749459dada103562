package dto

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/diogoX451/devicedb/internal/core/domain"
)

type AddDeviceRequest struct {
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

// Validate checks both fields and reports every violation at once.
func (r AddDeviceRequest) Validate() error {
	return errors.Join(
		requiredText("name", r.Name, domain.MaxNameLength),
		requiredText("brand", r.Brand, domain.MaxBrandLength),
	)
}

func requiredText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%s must be at most %d characters", field, max)
	}
	return nil
}
