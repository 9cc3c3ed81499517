//
//
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// API error codes returned by the non-control routes.
var (
	ErrMethodNotAllowed = errors.New("METHOD_NOT_ALLOWED")
	ErrNotFoundError    = errors.New("NOT_FOUND")
	ErrUnavailableError = errors.New("UNAVAILABLE")
)

// ToAPIError converts an error to an HTTP status code and JSON envelope.
func ToAPIError(err error) (int, []byte) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case errors.Is(err, ErrUnavailableError):
		return http.StatusServiceUnavailable, marshalErrorResponse("UNAVAILABLE", "Service is temporarily unavailable", nil)
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, marshalErrorResponse("METHOD_NOT_ALLOWED", err.Error(), nil)
	case errors.Is(err, ErrNotFoundError):
		return http.StatusNotFound, marshalErrorResponse("NOT_FOUND", "Resource not found", nil)
	}

	return http.StatusInternalServerError, marshalErrorResponse("INTERNAL", "Internal server error", map[string]interface{}{
		"original": err.Error(),
	})
}

// marshalErrorResponse creates a JSON error response with correlation ID.
func marshalErrorResponse(code, message string, details interface{}) []byte {
	jsonBytes, err := json.Marshal(Response{
		Result:        "error",
		Code:          code,
		Message:       message,
		Details:       details,
		CorrelationID: uuid.NewString(),
	})
	if err != nil {
		fallback, _ := json.Marshal(map[string]interface{}{
			"result":        "error",
			"code":          "INTERNAL",
			"message":       "Failed to marshal error response",
			"correlationId": uuid.NewString(),
		})
		return fallback
	}
	return jsonBytes
}

func methodNotAllowed(allowed string) error {
	return fmt.Errorf("%w: only %s is allowed", ErrMethodNotAllowed, allowed)
}
