package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a referenced entity does not exist
var ErrNotFound = errors.New("not found")

// ConfigurationError reports required settings that are missing or unusable.
// It is raised before any network call and is never retried.
type ConfigurationError struct {
	Fields []string
	Reason string
}

func (e *ConfigurationError) Error() string {
	msg := "configuration incomplete: " + strings.Join(e.Fields, ", ")
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// AuthenticationError is returned when the tenant token endpoint rejects the credentials
type AuthenticationError struct {
	StatusCode int
	Code       int
	Msg        string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("tenant_access_token error: status=%d code=%d msg=%s", e.StatusCode, e.Code, e.Msg)
}

// DeliveryError is returned when the message endpoint (or a webhook) refuses a message
type DeliveryError struct {
	StatusCode int
	Code       int
	Msg        string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("send message error: %v", e.Err)
	}
	return fmt.Sprintf("send message error: status=%d code=%d msg=%s", e.StatusCode, e.Code, e.Msg)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// UploadErrorKind distinguishes where an upload went wrong
type UploadErrorKind string

const (
	UploadErrorEncoding UploadErrorKind = "encoding"
	UploadErrorHTTP     UploadErrorKind = "http"
	UploadErrorParse    UploadErrorKind = "parse"
	UploadErrorAPI      UploadErrorKind = "api"
	UploadErrorResponse UploadErrorKind = "response"
)

// UploadError is returned by the file uploader
type UploadError struct {
	Kind       UploadErrorKind
	FileName   string
	StatusCode int
	Code       int
	Msg        string
	Err        error
}

func (e *UploadError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("upload %s failed (%s): %v", e.FileName, e.Kind, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("upload %s failed (%s): status=%d code=%d msg=%s", e.FileName, e.Kind, e.StatusCode, e.Code, e.Msg)
	default:
		return fmt.Sprintf("upload %s failed (%s): status=%d", e.FileName, e.Kind, e.StatusCode)
	}
}

func (e *UploadError) Unwrap() error { return e.Err }

// PartialListError records a chat listing sweep that stopped early.
// It is reported as a warning alongside the partial result, never returned.
type PartialListError struct {
	Sweep string
	Page  int
	Err   error
}

func (e *PartialListError) Error() string {
	if e.Page == 0 {
		return fmt.Sprintf("list chats (%s): %v", e.Sweep, e.Err)
	}
	return fmt.Sprintf("list chats (%s sweep) stopped at page %d: %v", e.Sweep, e.Page, e.Err)
}

func (e *PartialListError) Unwrap() error { return e.Err }

// ValidationError reports user input that failed shape validation
type ValidationError struct {
	Entity   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(e.Problems, "; "))
}

// APIError is a failed Lark API call outside the send, upload and token paths
type APIError struct {
	Op         string
	StatusCode int
	Code       int
	Msg        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s error: status=%d code=%d msg=%s", e.Op, e.StatusCode, e.Code, e.Msg)
}

// CodeOf extracts the Lark error code carried by err, if any
func CodeOf(err error) (int, bool) {
	var apiErr *APIError
	var delErr *DeliveryError
	var upErr *UploadError
	var authErr *AuthenticationError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code, true
	case errors.As(err, &delErr):
		return delErr.Code, delErr.Code != 0
	case errors.As(err, &upErr):
		return upErr.Code, upErr.Code != 0
	case errors.As(err, &authErr):
		return authErr.Code, authErr.Code != 0
	}
	return 0, false
}

// IsInvalidTokenCode reports whether a Lark error code means the tenant token
// is no longer usable
func IsInvalidTokenCode(code int) bool {
	switch code {
	case 99991661, 99991663, 99991668:
		return true
	}
	return false
}

// IsRateLimitCode reports whether a Lark error code signals throttling
func IsRateLimitCode(code int) bool {
	switch code {
	case 99991400, 11232, 230020:
		return true
	}
	return false
}
