package handler

import (
	"errors"
	"net/http"

	"github.com/helloca/ai-service/internal/logging"
	"github.com/helloca/ai-service/internal/models"
	"github.com/helloca/ai-service/internal/validator"
)

// InternalError is any fault raised while building a response. Its message is
// returned to the caller verbatim.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	if e == nil || e.Err == nil {
		return "internal error"
	}
	return e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RenderError writes the error body for err. Validation failures become 422
// with field details, everything else becomes 500.
func (h *Handler) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.Entry(r.Context()).WithField("path", r.URL.Path)

	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		log.WithError(err).Debug("rejected request")
		writeJSON(w, r, http.StatusUnprocessableEntity, models.ErrorResponse{Detail: verr.Fields})
		return
	}

	var ierr *InternalError
	if !errors.As(err, &ierr) {
		ierr = &InternalError{Err: err}
	}
	log.WithError(ierr).Error("request failed")
	writeJSON(w, r, http.StatusInternalServerError, models.ErrorResponse{Detail: ierr.Error()})
}
