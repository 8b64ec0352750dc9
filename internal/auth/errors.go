// Package auth implements the token issuance and login lockout core:
// client registry, credential verification, token signing/introspection,
// and the login attempt tracker.
package auth

import (
	"errors"
	"fmt"
)

// Kind classifies an authentication error. The string values double as the
// wire-level OAuth error codes.
type Kind string

const (
	// KindInvalidClient covers a bad client id or secret as well as a
	// disallowed grant type or scope. It never reveals whether the client
	// exists.
	KindInvalidClient Kind = "invalid_client"

	// KindInvalidGrant covers bad resource-owner credentials and unknown
	// usernames alike, so callers cannot enumerate users.
	KindInvalidGrant Kind = "invalid_grant"

	// KindAccountDisabled means the user exists but the account is locked.
	KindAccountDisabled Kind = "account_disabled"

	// KindDirectoryUnavailable is an infrastructure fault talking to the
	// user directory, distinct from any credential judgment.
	KindDirectoryUnavailable Kind = "directory_unavailable"

	// KindInvalidToken is a bad signature, malformed token, or expiry.
	KindInvalidToken Kind = "invalid_token"

	// KindUnsupportedGrant is an unrecognized grant_type value.
	KindUnsupportedGrant Kind = "unsupported_grant_type"
)

// Error is an authentication failure with a taxonomy kind and a
// caller-facing description.
type Error struct {
	Kind        Kind
	Description string
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Description, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// newError builds an Error without a cause.
func newError(kind Kind, description string) *Error {
	return &Error{Kind: kind, Description: description}
}

// wrapError builds an Error wrapping an underlying cause.
func wrapError(kind Kind, description string, cause error) *Error {
	return &Error{Kind: kind, Description: description, cause: cause}
}

// KindOf extracts the error kind, or "" if err is not an auth Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// DescriptionOf extracts the caller-facing description, falling back to the
// full error text for non-auth errors.
func DescriptionOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Description
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
