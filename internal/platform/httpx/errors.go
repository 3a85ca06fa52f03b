// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/clinistock/clinistock/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var (
		validation   *shared.ValidationError
		notFound     *shared.NotFoundError
		insufficient *shared.InsufficientStockError
		invalidState *shared.InvalidStateError
		futureDate   *shared.FutureDateError
	)
	switch {
	case errors.As(err, &notFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &validation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &insufficient):
		Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.As(err, &invalidState):
		Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.As(err, &futureDate):
		Problem(w, http.StatusBadRequest, "Future Date", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
