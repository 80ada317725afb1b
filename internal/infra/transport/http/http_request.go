package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mkrupp/jobboard/internal/domain"
	context_ "github.com/mkrupp/jobboard/internal/infra/context"
)

// DefaultMaxBodyBytes is used by DecodeJSON when no limit is given.
const DefaultMaxBodyBytes = 1 << 20

// FieldError describes why a single request field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequestError is returned for malformed or invalid request bodies.
// It is a domain.ErrValidation.
type RequestError struct {
	Message string
	Fields  []FieldError
}

func (e *RequestError) Error() string {
	return domain.ErrValidation.Error() + ": " + e.Message
}

func (e *RequestError) Unwrap() error {
	return domain.ErrValidation
}

//nolint:gochecknoglobals
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared request validator. Field names in its errors
// are the JSON names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}

			return name
		})
	})

	return validate
}

// DecodeJSON reads the request body into dst and validates it.
// A non-positive maxBytes falls back to DefaultMaxBodyBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError

		switch {
		case errors.Is(err, io.EOF):
			return &RequestError{Message: "request body is empty"}
		case errors.As(err, &maxErr):
			return &RequestError{Message: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)}
		default:
			return &RequestError{Message: "malformed JSON: " + err.Error()}
		}
	}

	return ValidateStruct(dst)
}

// ValidateStruct runs the struct validation tags of v.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &RequestError{Message: err.Error()}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, ferr := range verrs {
		fields = append(fields, FieldError{
			Field:   fieldPath(ferr.Namespace()),
			Message: describe(ferr),
		})
	}

	return &RequestError{Message: "invalid request body", Fields: fields}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	_, path, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}

	return path
}

func describe(ferr validator.FieldError) string {
	switch ferr.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + ferr.Param() + " characters"
	case "max":
		return "must have at most " + ferr.Param() + " characters"
	case "gt":
		return "must be greater than " + ferr.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + ferr.Param()
	default:
		return "failed " + ferr.Tag() + " validation"
	}
}

// PathID parses the named path wildcard as a positive integer id.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &RequestError{Message: fmt.Sprintf("invalid %s %q", name, raw)}
	}

	return id, nil
}

// RequireUser returns the authenticated user of the request.
func RequireUser(r *http.Request) (*domain.User, error) {
	user, ok := context_.UserFromContext(r.Context())
	if !ok {
		return nil, domain.ErrNoAuthToken
	}

	return user, nil
}
