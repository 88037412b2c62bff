package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/envi/internal/catalog"
	"github.com/samcharles93/envi/pkg/envi"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps an error to an HTTP status and an error type string.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, envi.ErrInvalidChannel),
		errors.Is(err, envi.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, envi.ErrChannelNotFound):
		return http.StatusNotFound, "not_found_error"
	case errors.Is(err, envi.ErrMalformedHeader),
		errors.Is(err, envi.ErrUnknownDataType),
		errors.Is(err, envi.ErrUnsupportedInterleave),
		errors.Is(err, envi.ErrUnsupportedByteOrder),
		errors.Is(err, envi.ErrInconsistentBands),
		errors.Is(err, envi.ErrDuplicateKey):
		return http.StatusUnprocessableEntity, "raster_error"
	}
	return http.StatusInternalServerError, "server_error"
}
