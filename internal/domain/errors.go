package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession           = errors.New("no authenticated session")
	ErrSSOCookieMissing    = errors.New("login response did not set the SSO_ID cookie")
	ErrNoResult            = errors.New("no result")
	ErrHTMLResponse        = errors.New("server returned an html page")
	ErrUnexpectedStatus    = errors.New("unexpected http status")
	ErrTransport           = errors.New("transport failure")
	ErrFieldMissing        = errors.New("required field missing")
	ErrEnvironmentNotFound = errors.New("environment not found")
	ErrNodeNotFound        = errors.New("node not found")
	ErrLogFileNotFound     = errors.New("log file not found")
	ErrSecretNotFound      = errors.New("secret not found")
)

// FieldMissingError reports a required element absent from a response.
type FieldMissingError struct {
	Field string
	Path  string
}

func (e *FieldMissingError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrFieldMissing, e.Field)
	}
	return fmt.Sprintf("%s: %s under %s", ErrFieldMissing, e.Field, e.Path)
}

func (e *FieldMissingError) Is(target error) bool {
	return target == ErrFieldMissing
}

// StatusError carries the HTTP status of a rejected call.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %d", ErrUnexpectedStatus, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
