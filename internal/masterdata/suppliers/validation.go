package suppliers

import (
	"fmt"
	"strings"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

func (s *Service) validate(sup Supplier) error {
	if strings.TrimSpace(sup.Code) == "" {
		return fmt.Errorf("%w: supplier code is required", httpx.ErrValidation)
	}
	if strings.TrimSpace(sup.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", httpx.ErrValidation)
	}
	return nil
}
