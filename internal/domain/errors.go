package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCredentialsMissing = errors.New("credentials missing")
	ErrLoginTimeout       = errors.New("login timed out waiting for form element")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalid     = errors.New("session invalid")
	ErrTransientFetch     = errors.New("transient fetch error")
	ErrSchemaCoercion     = errors.New("schema coercion failure")
	ErrCookieJarNotFound  = errors.New("cookie jar not found")
	ErrSecretNotFound     = errors.New("secret not found")
	ErrSyncInProgress     = errors.New("sync already in progress")
)

// FetchError carries the request context of a failed category fetch.
type FetchError struct {
	Category Category
	Window   DateWindow
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s %s: status %d: %v", e.Category, e.Window, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s %s: %v", e.Category, e.Window, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CoercionError reports the first value that could not be converted to its
// canonical column type. Row is the record position in the merged table.
type CoercionError struct {
	Column string
	Row    int
	Value  any
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("coerce column %q row %d (%v): %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *CoercionError) Unwrap() []error {
	return []error{ErrSchemaCoercion, e.Err}
}
