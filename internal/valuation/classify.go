package valuation

import (
	"errors"
	"net/http"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/schema"
)

// Classify maps a pipeline error to the HTTP-equivalent status: 400 for
// caller input, 404 for unknown history entries, 500 for everything else.
func Classify(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var validationErrs *schema.ValidationErrors
	var validationErr *schema.ValidationError
	switch {
	case errors.As(err, &validationErrs), errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
