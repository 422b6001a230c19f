package apierror

import (
	"fmt"
	"net/http"
)

const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
)

// APIError is the error type surfaced to clients. Message is what the
// client sees; Details is optional context such as the offending field.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}

	return e.Message
}

// Extensions is picked up by the GraphQL executor and rendered under
// errors[].extensions.
func (e *APIError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": e.Code}
	if e.Details != "" {
		ext["details"] = e.Details
	}
	return ext
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func BadRequest(message string, details string) *APIError {
	return New(CodeBadRequest, message, details, http.StatusBadRequest)
}

func NotFound(message string, details string) *APIError {
	return New(CodeNotFound, message, details, http.StatusNotFound)
}

func Conflict(message string, details string) *APIError {
	return New(CodeConflict, message, details, http.StatusConflict)
}

// Unauthenticated and Forbidden deliberately share the same message so a
// client cannot tell "not logged in" from "insufficient role".
func Unauthenticated() *APIError {
	return New(CodeUnauthenticated, "Unauthorized", "", http.StatusUnauthorized)
}

func Forbidden() *APIError {
	return New(CodeForbidden, "Unauthorized", "", http.StatusForbidden)
}

func Internal() *APIError {
	return New(CodeInternal, "Internal server error", "", http.StatusInternalServerError)
}
