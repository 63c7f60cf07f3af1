package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/tallyhq/tally/internal/httputil"
)

// Issue codes reported in validation bodies.
const (
	IssueInvalidType    = "invalid_type"
	IssueInvalidString  = "invalid_string"
	IssueInvalidDate    = "invalid_date"
	IssueInvalidJSON    = "invalid_json"
	IssueInvalidUpdates = "invalid_updates"
	IssueTooSmall       = "too_small"
	IssueTooBig         = "too_big"
	IssueCustom         = "custom"
)

// Issue messages shared with clients.
const (
	MsgRequired   = "Required"
	MsgExpectedID = "Expected a properly formatted identifier"
	MsgNoUpdates  = "No updates provided"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report json field names so issue paths
// match the request body.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			default:
				return name
			}
		})
	})
}

// bindJSON decodes and validates the body into dst, answering 413 or 422 on
// failure. It reports whether the handler may continue.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondStatus(c, http.StatusRequestEntityTooLarge)

		return false
	}

	respondValidation(c, http.StatusUnprocessableEntity, bindingIssues(err))

	return false
}

func bindingIssues(err error) []httputil.Issue {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		issues := make([]httputil.Issue, 0, len(verrs))
		for _, fe := range verrs {
			issues = append(issues, fieldIssue(fe))
		}

		return issues
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []httputil.Issue{{
			Code:    IssueInvalidType,
			Path:    splitPath(typeErr.Field),
			Message: fmt.Sprintf("Expected %s, received %s", typeErr.Type.Kind(), typeErr.Value),
		}}
	}

	return []httputil.Issue{{
		Code:    IssueInvalidJSON,
		Path:    []any{},
		Message: "Malformed JSON in request body",
	}}
}

func fieldIssue(fe validator.FieldError) httputil.Issue {
	issue := httputil.Issue{Path: namespacePath(fe.Namespace())}

	switch fe.Tag() {
	case "required":
		issue.Code, issue.Message = IssueInvalidType, MsgRequired
	case "min":
		issue.Code = IssueTooSmall
		issue.Message = fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
	case "max":
		issue.Code = IssueTooBig
		issue.Message = fmt.Sprintf("String must contain at most %s character(s)", fe.Param())
	case "len", "hexadecimal":
		issue.Code, issue.Message = IssueInvalidString, MsgExpectedID
	case "email":
		issue.Code, issue.Message = IssueInvalidString, "Invalid email"
	default:
		issue.Code = IssueCustom
		issue.Message = fmt.Sprintf("Invalid value (%s)", fe.Tag())
	}

	return issue
}

// namespacePath turns "CreateUserRequest.roles[1]" into ["roles", 1].
func namespacePath(ns string) []any {
	_, rest, found := strings.Cut(ns, ".")
	if !found {
		return []any{}
	}

	return splitPath(rest)
}

// splitPath turns "a.b[2]" into ["a", "b", 2].
func splitPath(p string) []any {
	path := []any{}
	if p == "" {
		return path
	}

	for _, part := range strings.Split(p, ".") {
		name, idx, hasIdx := strings.Cut(part, "[")
		if name != "" {
			path = append(path, name)
		}

		if hasIdx {
			if n, err := strconv.Atoi(strings.TrimSuffix(idx, "]")); err == nil {
				path = append(path, n)
			}
		}
	}

	return path
}
