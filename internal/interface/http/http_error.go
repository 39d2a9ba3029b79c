package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/rain-nowcast/internal/domain/nowcast"
	apperrors "github.com/yanqian/rain-nowcast/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError maps nowcast error kinds onto statuses. Upstream failures
// are gateway errors; fallback names anything unrecognised.
func fromDomainError(fallback string, err error) *HTTPError {
	status := http.StatusInternalServerError
	code := fallback
	switch {
	case apperrors.IsCode(err, nowcast.CodeInvalidInput):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, nowcast.CodeInvalidAuth):
		status = http.StatusUnauthorized
		code = nowcast.CodeInvalidAuth
	case apperrors.IsCode(err, nowcast.CodeCannotConnect):
		status = http.StatusBadGateway
		code = nowcast.CodeCannotConnect
	case nowcast.IsConnectionError(err), nowcast.IsParseError(err):
		status = http.StatusBadGateway
		code = apperrors.CodeOf(err)
	case apperrors.IsCode(err, nowcast.CodeStore):
		status = http.StatusServiceUnavailable
		code = nowcast.CodeStore
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return fromDomainError("internal_error", err)
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
