package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput        = "SERVICE_BAD_INPUT"
	ServiceErrorSigningFailed   = "SERVICE_SIGNING_FAILED"
	ServiceErrorExternalFailure = "SERVICE_EXTERNAL_FAILURE"
	ServiceErrorNotFound        = "SERVICE_NOT_FOUND"
	ServiceErrorInternal        = "SERVICE_INTERNAL_ERROR"
)

// ErrActivityNotFound is matched with errors.Is on activity reader lookups.
var ErrActivityNotFound = errors.New("core: dispatch activity not found")

// NewServiceError builds an envelope whose HTTP code and text code follow
// category.
func NewServiceError(message string, category goerrors.Category, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(serviceHTTPStatus(category)).
		WithTextCode(defaultServiceTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// WrapServiceError is NewServiceError around source. A nil source yields a
// plain envelope.
func WrapServiceError(source error, category goerrors.Category, message string, metadata map[string]any) *goerrors.Error {
	if source == nil {
		return NewServiceError(message, category, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(serviceHTTPStatus(category)).
		WithTextCode(defaultServiceTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// NewFieldError reports one invalid message field.
func NewFieldError(message string, field string, detail string) *goerrors.Error {
	return goerrors.NewValidation(message, goerrors.FieldError{Field: field, Message: detail}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func badInputError(message string, metadata map[string]any) *goerrors.Error {
	return NewServiceError(message, goerrors.CategoryBadInput, metadata)
}

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "unsupported"):
		return ensureServiceErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryBadInput))
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ServiceErrorSigningFailed
	case goerrors.CategoryNotFound:
		return ServiceErrorNotFound
	case goerrors.CategoryExternal:
		return ServiceErrorExternalFailure
	default:
		return ServiceErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
