package camino

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ServiceName identifies the upstream in error messages.
const ServiceName = "Camino"

// APIError represents an error that occurred while communicating with
// the Camino API, with information to help callers recover.
type APIError struct {
	Service     string // The API service name
	StatusCode  int    // HTTP status code, 0 for transport failures
	Message     string // Human-readable detail
	Recoverable bool   // Whether retrying the call may succeed
	Guidance    string // Guidance for users on how to recover
}

// Error implements the error interface and provides a formatted error message.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s API error: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// Common error guidance messages
const (
	GuidanceRateLimit    = "Rate limit exceeded. Please try again in a few moments."
	GuidanceAuth         = "Check that CAMINO_API_KEY holds a valid Camino API key."
	GuidanceNotFound     = "The requested resource was not found. Check the location or query and try again."
	GuidanceTimeout      = "The request timed out. Try a smaller radius or a simpler query."
	GuidanceBadRequest   = "The request was invalid. Check your parameters and try again."
	GuidanceServer       = "The Camino API encountered an error. This is likely temporary, please try again later."
	GuidanceUnavailable  = "The Camino API is temporarily unavailable. Please try again later."
	GuidanceNetworkError = "Check your internet connection and the CAMINO_API_BASE_URL setting, then try again."
	GuidanceDataError    = "The data received was incomplete or malformed. Try different parameters."
	GuidanceGeneral      = "Please try again later or modify your request parameters."
)

// NewAPIError creates a new APIError with guidance inferred from the status code.
func NewAPIError(statusCode int, message string) *APIError {
	var guidance string
	switch {
	case statusCode == http.StatusTooManyRequests:
		guidance = GuidanceRateLimit
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		guidance = GuidanceAuth
	case statusCode == http.StatusNotFound:
		guidance = GuidanceNotFound
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusGatewayTimeout:
		guidance = GuidanceTimeout
	case statusCode == http.StatusBadRequest, statusCode == http.StatusUnprocessableEntity:
		guidance = GuidanceBadRequest
	case statusCode == http.StatusServiceUnavailable:
		guidance = GuidanceUnavailable
	case statusCode >= 500:
		guidance = GuidanceServer
	default:
		guidance = GuidanceGeneral
	}

	return &APIError{
		Service:     ServiceName,
		StatusCode:  statusCode,
		Message:     message,
		Recoverable: statusCode != http.StatusBadRequest && statusCode != http.StatusUnprocessableEntity,
		Guidance:    guidance,
	}
}

// NetworkError wraps a transport failure: DNS, connection, TLS or timeout.
func NetworkError(err error) *APIError {
	return &APIError{
		Service:     ServiceName,
		Message:     err.Error(),
		Recoverable: true,
		Guidance:    GuidanceNetworkError,
	}
}

// DataError reports a 2xx response whose body could not be used.
func DataError(message string) *APIError {
	return &APIError{
		Service:     ServiceName,
		Message:     message,
		Recoverable: true,
		Guidance:    GuidanceDataError,
	}
}

// errorDetail extracts a human-readable message from an error response body.
// It understands {"detail": "..."}, {"detail": [{"msg": "..."}]},
// {"message": "..."} and {"error": "..."}, and falls back to the raw body
// and finally the status text.
func errorDetail(statusCode int, body []byte) string {
	var parsed struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := detailText(parsed.Detail); msg != "" {
			return msg
		}
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}

	if raw := strings.TrimSpace(string(body)); raw != "" {
		return raw
	}

	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", statusCode)
}

func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}
	if err := json.Unmarshal(raw, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if len(it.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return ""
}
