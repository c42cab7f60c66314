package items

import (
	"fmt"
	"strings"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

func (s *Service) validate(it Item) error {
	if strings.TrimSpace(it.Code) == "" {
		return fmt.Errorf("%w: item code is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("%w: item name is required", httpx.ErrValidation)
	}
	if it.SupplierID <= 0 {
		return fmt.Errorf("%w: supplier is required", httpx.ErrValidation)
	}
	if it.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price must be >= 0", httpx.ErrValidation)
	}
	if it.Discount1 < 0 || it.Discount1 > 100 {
		return fmt.Errorf("%w: discount1 must be within [0,100]", httpx.ErrValidation)
	}
	if it.Discount2 < 0 || it.Discount2 > 100 {
		return fmt.Errorf("%w: discount2 must be within [0,100]", httpx.ErrValidation)
	}
	return nil
}
