package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Issue is one validation problem reported by the API.
type Issue struct {
	Code    string `json:"code"`
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

// APIError represents an error response from the Tally API.
type APIError struct {
	StatusCode int
	Message    string
	Issues     []Issue
	RequestID  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if len(e.Issues) > 0 {
		parts := make([]string, 0, len(e.Issues))
		for _, is := range e.Issues {
			parts = append(parts, issueString(is))
		}
		msg = strings.Join(parts, "; ")
	}
	if e.RequestID != "" {
		return fmt.Sprintf("tally: %d: %s (request_id=%s)", e.StatusCode, msg, e.RequestID)
	}
	return fmt.Sprintf("tally: %d: %s", e.StatusCode, msg)
}

func issueString(is Issue) string {
	if len(is.Path) == 0 {
		return is.Message
	}
	path := make([]string, len(is.Path))
	for i, p := range is.Path {
		path[i] = fmt.Sprint(p)
	}
	return strings.Join(path, ".") + ": " + is.Message
}

func hasStatus(err error, status int) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == status
}

// IsNotFound returns true if the error is a 404 not found.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsConflict returns true if the error is a 409 conflict (duplicate key).
func IsConflict(err error) bool { return hasStatus(err, http.StatusConflict) }

// IsValidation returns true if the API rejected the request payload.
func IsValidation(err error) bool {
	var e *APIError
	return errors.As(err, &e) && len(e.Issues) > 0
}

// IsRateLimited returns true if the error is a 429 rate limit.
func IsRateLimited(err error) bool { return hasStatus(err, http.StatusTooManyRequests) }

// errorBody covers both the plain and the validation error shapes.
type errorBody struct {
	Message string `json:"message"`
	Error   *struct {
		Issues []Issue `json:"issues"`
	} `json:"error"`
}

// parseAPIError decodes a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, requestID string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, RequestID: requestID}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
	} else {
		apiErr.Message = eb.Message
		if eb.Error != nil {
			apiErr.Issues = eb.Error.Issues
		}
	}
	if apiErr.Message == "" && len(apiErr.Issues) == 0 {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}
