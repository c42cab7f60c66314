package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors shared by the domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state transition")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrInvalidState):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &verrs):
		Problem(w, http.StatusBadRequest, "Validation Failed", verrs.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
