package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkrupp/jobboard/internal/domain"
	"github.com/mkrupp/jobboard/internal/infra/logging"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type errorClass struct {
	kind   error
	status int
}

// Order matters: the first class the error belongs to decides the status.
//
//nolint:gochecknoglobals
var errorClasses = []errorClass{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrPrecondition, http.StatusBadRequest},
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrAssetTooLarge, http.StatusRequestEntityTooLarge},
	{domain.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
	{ErrRateLimited, http.StatusTooManyRequests},
}

// StatusFromError maps a domain error to its HTTP status code.
func StatusFromError(err error) int {
	for _, class := range errorClasses {
		if errors.Is(err, class.kind) {
			return class.status
		}
	}

	return http.StatusInternalServerError
}

// MessageFromError returns the caller-facing message for err. For a sentinel
// declared as fmt.Errorf("%w: detail", kind) that is the detail; internal
// errors are never echoed.
func MessageFromError(err error) string {
	for _, class := range errorClasses {
		if !errors.Is(err, class.kind) {
			continue
		}

		if detail, ok := findDetail(err, class.kind); ok {
			return detail
		}

		return class.kind.Error()
	}

	return http.StatusText(http.StatusInternalServerError)
}

func findDetail(err, kind error) (string, bool) {
	var children []error

	switch e := err.(type) { //nolint:errorlint
	case interface{ Unwrap() error }:
		children = []error{e.Unwrap()}
	case interface{ Unwrap() []error }:
		children = e.Unwrap()
	}

	prefix := kind.Error() + ": "

	for _, child := range children {
		if child == kind && strings.HasPrefix(err.Error(), prefix) { //nolint:errorlint
			return strings.TrimPrefix(err.Error(), prefix), true
		}
	}

	for _, child := range children {
		if detail, ok := findDetail(child, kind); ok {
			return detail, true
		}
	}

	return "", false
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// WriteError writes the error response for err and returns the status used.
func WriteError(w http.ResponseWriter, err error) int {
	status := StatusFromError(err)
	resp := ErrorResponse{Message: MessageFromError(err)}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		resp.Errors = reqErr.Fields
	}

	_ = WriteJSON(w, status, resp)

	return status
}

// LogFailure logs a failed request at WARN when the client is at fault and at
// ERROR otherwise.
func LogFailure(ctx context.Context, log logging.Logger, msg string, err error) {
	level := logging.LevelWarn
	if StatusFromError(err) >= http.StatusInternalServerError {
		level = logging.LevelError
	}

	log.Log(ctx, level, msg, "error", err)
}
