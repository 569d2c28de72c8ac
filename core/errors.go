package core

import "errors"

var (
	ErrTokenExpired     = errors.New("token has expired")
	ErrTokenRevoked     = errors.New("token has been revoked")
	ErrTokenNotFound    = errors.New("token not found")
	ErrTokenMalformed   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrAccountNotFound  = errors.New("account not found")
	ErrEmailTaken       = errors.New("email already registered")
)

// Code is the external-safe error code returned to clients.
type Code string

const (
	CodeInvalidInput       Code = "invalid_input"
	CodeInvalidCaptcha     Code = "invalid_captcha"
	CodeWeakPassword       Code = "weak_password"
	CodeEmailTaken         Code = "email_taken"
	CodeUserNotFound       Code = "user_not_found"
	CodeWrongPassword      Code = "wrong_password"
	CodeUnauthorized       Code = "unauthorized"
	CodeInvalidDisplayName Code = "invalid_display_name"
)

// Error is a failure the caller is allowed to see. Code crosses the API
// boundary; Reason and Err stay in logs.
type Error struct {
	Code    Code
	Reason  string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error with the given code and internal reason.
func NewError(code Code, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf returns the external code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
