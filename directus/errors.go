package directus

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from Directus.
type APIError struct {
	StatusCode int
	Errors     []ErrorItem
}

// ErrorItem is one entry of the Directus "errors" array.
type ErrorItem struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

func newAPIError(status int, body []byte) *APIError {
	e := &APIError{StatusCode: status}
	var payload struct {
		Errors []ErrorItem `json:"errors"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Errors = payload.Errors
	}
	return e
}

func (e *APIError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		if item.Message != "" {
			msgs = append(msgs, item.Message)
		}
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("directus: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("directus: %d: %s", e.StatusCode, strings.Join(msgs, "; "))
}

// Code returns the Directus error code of the first error (e.g. FORBIDDEN,
// INVALID_PAYLOAD), or "" when the response carried none.
func (e *APIError) Code() string {
	for _, item := range e.Errors {
		if item.Extensions.Code != "" {
			return item.Extensions.Code
		}
	}
	return ""
}
