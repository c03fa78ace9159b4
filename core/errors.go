package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ClientErrorBadInput       = "FINSNAP_BAD_INPUT"
	ClientErrorValidation     = "FINSNAP_VALIDATION_FAILED"
	ClientErrorAuth           = "FINSNAP_AUTH_FAILED"
	ClientErrorConflict       = "FINSNAP_CONFLICT"
	ClientErrorSyncInProgress = "FINSNAP_SYNC_IN_PROGRESS"
	ClientErrorLinkToken      = "FINSNAP_LINK_TOKEN_FAILED"
	ClientErrorNetwork        = "FINSNAP_NETWORK_FAILED"
	ClientErrorWidget         = "FINSNAP_WIDGET_FAILED"
	ClientErrorNotFound       = "FINSNAP_NOT_FOUND"
	ClientErrorInternal       = "FINSNAP_INTERNAL"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

// ClientErrorMapper normalizes arbitrary errors into enveloped rich errors
// carrying a FinSnap text code and an HTTP-ish status code.
func ClientErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureClientErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "sync") && strings.Contains(msg, "in progress"):
		return NewClientError(err.Error(), goerrors.CategoryConflict, ClientErrorSyncInProgress)
	case strings.Contains(msg, "link token"):
		return NewClientError(err.Error(), goerrors.CategoryOperation, ClientErrorLinkToken)
	case strings.Contains(msg, "credential"), strings.Contains(msg, "token"), strings.Contains(msg, "unauthorized"):
		return NewClientError(err.Error(), goerrors.CategoryAuth, ClientErrorAuth)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "connection refused"):
		return NewClientError(err.Error(), goerrors.CategoryExternal, ClientErrorNetwork)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "does not match"):
		return NewClientError(err.Error(), goerrors.CategoryBadInput, ClientErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureClientErrorEnvelope(mapped)
}

func NewClientError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureClientErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureClientErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = clientHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultClientTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultClientTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput:
		return ClientErrorBadInput
	case goerrors.CategoryValidation:
		return ClientErrorValidation
	case goerrors.CategoryNotFound:
		return ClientErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ClientErrorAuth
	case goerrors.CategoryConflict:
		return ClientErrorConflict
	case goerrors.CategoryExternal:
		return ClientErrorNetwork
	case goerrors.CategoryOperation:
		return ClientErrorLinkToken
	default:
		return ClientErrorInternal
	}
}

func clientHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HasTextCode reports whether err carries the given FinSnap text code.
func HasTextCode(err error, textCode string) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr != nil && richErr.TextCode == strings.TrimSpace(textCode)
}
