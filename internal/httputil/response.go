// Package httputil provides shared HTTP response helpers.
package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StackKey is the gin context key under which recovery stores a panic stack.
const StackKey = "error_stack"

// ErrorBody is the generic failure response.
type ErrorBody struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Stack      string `json:"stack,omitempty"`
}

// RespondError writes {message, statusCode} and aborts the request.
// A stack stored under StackKey is included when present.
func RespondError(c *gin.Context, status int, message string) {
	body := ErrorBody{Message: message, StatusCode: status}

	if v, ok := c.Get(StackKey); ok {
		if s, ok := v.(string); ok {
			body.Stack = s
		}
	}

	c.AbortWithStatusJSON(status, body)
}

// RespondStatus writes the standard status phrase as the message.
func RespondStatus(c *gin.Context, status int) {
	RespondError(c, status, http.StatusText(status))
}

// Issue is one validation problem. Path holds field names and array indices.
type Issue struct {
	Code    string `json:"code"`
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

// ValidationError is the error member of a validation response.
type ValidationError struct {
	Issues []Issue `json:"issues"`
	Name   string  `json:"name"`
}

// ValidationBody is the response for validation-style failures.
type ValidationBody struct {
	Success    bool            `json:"success"`
	Error      ValidationError `json:"error"`
	StatusCode int             `json:"statusCode"`
}

// ValidationErrorName is reported in ValidationError.Name.
const ValidationErrorName = "ValidationError"

// RespondValidation writes a validation body with the given issues and aborts.
func RespondValidation(c *gin.Context, status int, issues []Issue) {
	if issues == nil {
		issues = []Issue{}
	}

	for i := range issues {
		if issues[i].Path == nil {
			issues[i].Path = []any{}
		}
	}

	c.AbortWithStatusJSON(status, ValidationBody{
		Error:      ValidationError{Issues: issues, Name: ValidationErrorName},
		StatusCode: status,
	})
}
