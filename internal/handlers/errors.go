package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/diewo77/tutoring-app/internal/httpx"
	"github.com/diewo77/tutoring-app/internal/services"
)

var validate = validator.New()

// writeServiceError maps ledger/pricing errors onto HTTP status classes:
// validation 400, not found 404, referential conflict 409, anything else is a
// persistence failure.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrStudentNotFound),
		errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrPaymentNotFound):
		httpx.JSONError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, services.ErrMissingFeeFields),
		errors.Is(err, services.ErrInvalidCadence),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrDepositExceedsTotal),
		errors.Is(err, services.ErrInvalidPaymentAmount):
		httpx.JSONError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, services.ErrStudentHasPayments),
		errors.Is(err, services.ErrCourseHasPayments):
		httpx.JSONError(w, http.StatusConflict, err.Error(), nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
	}
}

// violations flattens validator errors into a field -> tag map for the
// details part of the error envelope.
func violations(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = fe.Tag()
		}
	}
	return out
}
