package errors

import "fmt"

// ErrorType classifies what went wrong with an API call. The retry layer
// keys off it, so classification happens once, at the client.
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a classified API failure. Code holds the HTTP status (0 for
// transport-level failures); Body keeps the raw response body of a
// non-success status for diagnostics.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Body    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsRetryable reports whether another attempt could plausibly succeed.
// Auth, not-found and parsing failures won't fix themselves.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode is the status-code view of IsRetryable, for callers
// holding a bare response rather than a classified error.
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0, 429:
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
