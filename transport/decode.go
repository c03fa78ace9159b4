package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/finsnap/finsnap-go/core"
)

// DecodeResponse maps non-2xx responses to enveloped errors and unmarshals
// successful bodies into out. A nil out skips body decoding.
func DecodeResponse(res core.TransportResponse, out any) error {
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return responseError(res)
	}
	if out == nil || len(res.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: decode response body",
			http.StatusBadGateway,
			map[string]any{"status_code": res.StatusCode},
		)
	}
	return nil
}

func responseError(res core.TransportResponse) error {
	detail := serverDetail(res.Body)
	if detail == "" {
		detail = http.StatusText(res.StatusCode)
	}

	category := responseCategory(res.StatusCode)
	return transportError(
		fmt.Sprintf("transport: api request failed: %s", detail),
		category,
		res.StatusCode,
		map[string]any{"status_code": res.StatusCode},
	)
}

func responseCategory(statusCode int) goerrors.Category {
	switch {
	case statusCode == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case statusCode == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case statusCode == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case statusCode == http.StatusConflict:
		return goerrors.CategoryConflict
	case statusCode == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError:
		return goerrors.CategoryBadInput
	default:
		return goerrors.CategoryExternal
	}
}

func serverDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload core.APIErrorResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Text()
}
