package auth

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidation         = "VALIDATION_FAILED"
	TextCodeInvalidID          = "INVALID_ID_FORMAT"
	TextCodeEmailExists        = "EMAIL_EXISTS"
	TextCodeDuplicateField     = "DUPLICATE_FIELD"
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeNoUsers            = "NO_AVAILABLE_USERS"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodePasswordMismatch   = "EXISTING_PASSWORD_MISMATCH"
	TextCodeNotVerified        = "ACCOUNT_NOT_VERIFIED"
	TextCodeTokenMissing       = "TOKEN_MISSING"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenRevoked       = "TOKEN_REVOKED"
	TextCodeAdminRequired      = "ADMIN_REQUIRED"
	TextCodeInternal           = "INTERNAL_ERROR"
)

// DuplicateKeyError is returned by credential stores when a unique index
// rejects a write. Field names the offending attribute.
type DuplicateKeyError struct {
	Field string
	Err   error
}

func (e *DuplicateKeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("duplicate key on %s: %s", e.Field, e.Err)
	}
	return "duplicate key on " + e.Field
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// ErrUserNotFound is the sentinel store error for missing records.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

func NewValidationError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithCode(goerrors.CodeBadRequest)
}

func NewConflictError(field string) *goerrors.Error {
	textCode := TextCodeDuplicateField
	if field == "email" {
		textCode = TextCodeEmailExists
	}
	return goerrors.New(fmt.Sprintf("A user with this %s already exists.", field), goerrors.CategoryConflict).
		WithTextCode(textCode).
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"field": field})
}

func NewNotFoundError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithTextCode(TextCodeUserNotFound).
		WithCode(goerrors.CodeNotFound)
}

func NewUnauthorizedError(message, textCode string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithTextCode(textCode).
		WithCode(goerrors.CodeUnauthorized)
}

func NewForbiddenError(message, textCode string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuthz).
		WithTextCode(textCode).
		WithCode(goerrors.CodeForbidden)
}

func NewInternalError(err error, message string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithTextCode(TextCodeInternal).
		WithCode(goerrors.CodeInternal)
}

func newTokenExpiredError() *goerrors.Error {
	return NewUnauthorizedError("token is expired", TextCodeTokenExpired)
}

func newTokenMalformedError(cause error) *goerrors.Error {
	err := NewUnauthorizedError("token is malformed", TextCodeTokenMalformed)
	if cause != nil {
		err = err.WithMetadata(map[string]any{"cause": cause.Error()})
	}
	return err
}

// HasTextCode reports whether err is a rich error tagged with code.
func HasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// IsNotFound reports whether err means no matching record.
func IsNotFound(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryNotFound
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return HasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedError will check for tokens that failed to parse or verify
func IsMalformedError(err error) bool {
	return HasTextCode(err, TextCodeTokenMalformed)
}

// asRichError classifies any error coming out of a collaborator. Unknown
// errors become internal errors.
func asRichError(err error, message string) *goerrors.Error {
	if err == nil {
		return nil
	}
	var dup *DuplicateKeyError
	if goerrors.As(err, &dup) {
		return NewConflictError(dup.Field)
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return NewInternalError(err, message)
}
