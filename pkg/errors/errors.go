// Package errors defines the closed set of outcome codes the song server
// returns. Every API response carries exactly one of these codes; CodeSuccess
// (0) marks success and every failure maps to a negative code grouped by
// domain.
package errors

import (
	"fmt"
	"net/http"
)

// Outcome codes. The numeric values are part of the API contract and must
// never be renumbered.
const (
	CodeSuccess = 0

	// Request errors
	CodeInvalidDataFormat  = -1001
	CodeDBOperationFailure = -1002
	CodeRequestParseError  = -1003
	CodeInvalidPageNumber  = -1004

	// User errors
	CodeSignInFailure      = -2001
	CodeUsernameExists     = -2002
	CodeUserParseError     = -2003
	CodePrivilegeError     = -2004
	CodeInvalidUserDetails = -2005

	// Song errors
	CodeSongExists         = -3001
	CodeInvalidSongDetails = -3002
	CodeSongNotFound       = -3003
)

// Error is a structured application error. HTTPStatus is advisory transport
// metadata; clients branch on Code.
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithError returns a copy of e wrapping err as its cause. The copy keeps
// predefined errors immutable under concurrent use.
func (e *Error) WithError(err error) *Error {
	clone := *e
	clone.Err = err
	return &clone
}

// New creates an Error.
func New(code int, message string, httpStatus int) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Predefined request errors.
var (
	ErrInvalidDataFormat  = New(CodeInvalidDataFormat, "invalid data format", http.StatusBadRequest)
	ErrDBOperationFailure = New(CodeDBOperationFailure, "db operation failure", http.StatusInternalServerError)
	ErrRequestParseError  = New(CodeRequestParseError, "request parse error", http.StatusBadRequest)
	ErrInvalidPageNumber  = New(CodeInvalidPageNumber, "invalid page number", http.StatusBadRequest)
)

// Predefined user errors.
var (
	ErrSignInFailure      = New(CodeSignInFailure, "sign in failure", http.StatusUnauthorized)
	ErrUsernameExists     = New(CodeUsernameExists, "username exists", http.StatusConflict)
	ErrUserParseError     = New(CodeUserParseError, "user parse error", http.StatusUnauthorized)
	ErrPrivilegeError     = New(CodePrivilegeError, "privilege error", http.StatusForbidden)
	ErrInvalidUserDetails = New(CodeInvalidUserDetails, "invalid user details", http.StatusBadRequest)
)

// Predefined song errors.
var (
	ErrSongExists         = New(CodeSongExists, "song exists", http.StatusConflict)
	ErrInvalidSongDetails = New(CodeInvalidSongDetails, "invalid song details", http.StatusBadRequest)
	ErrSongNotFound       = New(CodeSongNotFound, "song not found", http.StatusNotFound)
)

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	appErr, ok := err.(*Error)
	if !ok {
		return false
	}
	return appErr.Code == target.Code
}

// CodeOf returns the outcome code for err: CodeSuccess for nil, the carried
// code for an *Error and CodeDBOperationFailure for anything unrecognized.
func CodeOf(err error) int {
	if err == nil {
		return CodeSuccess
	}
	appErr, ok := err.(*Error)
	if !ok {
		return CodeDBOperationFailure
	}
	return appErr.Code
}

// HTTPStatusOf returns the advisory HTTP status for err, defaulting to 500
// for unrecognized errors.
func HTTPStatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	appErr, ok := err.(*Error)
	if !ok {
		return http.StatusInternalServerError
	}
	return appErr.HTTPStatus
}
