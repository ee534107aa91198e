package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoToken is returned before any network call when no token is stored.
var ErrNoToken = errors.New("No authentication token found")

// Error is a non 2xx answer from the API.
type Error struct {
	Status  int
	Message string
}

func newError(status int, body []byte) *Error {
	e := &Error{Status: status}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		e.Message = payload.Error
		if e.Message == "" {
			e.Message = payload.Message
		}
	}
	return e
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, strings.ToLower(http.StatusText(e.Status)))
}

// StatusCode returns the HTTP status of the response.
func (e *Error) StatusCode() int {
	return e.Status
}

// APIMessage returns the body's error field, if any.
func (e *Error) APIMessage() string {
	return e.Message
}

// IsNotFound checks for a 404 answer
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// ErrorMessage returns the text a view shows for err, or fallback.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}

	if msg := firstValidationError(err); msg != "" {
		return msg
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

var errLoginResponse = errors.New("login response missing token or admin")
