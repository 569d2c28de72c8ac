package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/layer-3/kana-auth/core"
)

const (
	minPasswordLength    = 8
	maxPasswordLength    = 16
	maxDisplayNameLength = 20
	defaultNamePrefix    = "用户"
)

// Whitespace covers \p{Zs} (full-width and no-break spaces) as well as ASCII.
var displayNamePattern = regexp.MustCompile(`^[\p{L}\p{N}\p{Zs}\s\v\x{2028}\x{2029}\x{FEFF}\-_.]+$`)

// RegisterInput is the body of a registration request
type RegisterInput struct {
	Email         string `json:"email" validate:"required,email,max=254"`
	Password      string `json:"password" validate:"required,max=128"`
	CaptchaID     string `json:"captchaId" validate:"required,max=64"`
	CaptchaAnswer string `json:"captchaAnswer" validate:"required,max=8"`
}

// LoginInput is the body of a login request
type LoginInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkShape runs the struct validation rules and reports failures as an
// invalid_input error keyed by JSON field name.
func checkShape(v *validator.Validate, input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return core.NewError(core.CodeInvalidInput, "shape_unreadable", err)
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return &core.Error{
		Code:    core.CodeInvalidInput,
		Reason:  "shape_invalid",
		Details: details,
		Err:     err,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PasswordIsStrong reports whether password satisfies the strength policy:
// 8 to 16 characters with at least one digit, one ASCII letter and one
// symbol.
func PasswordIsStrong(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength || n > maxPasswordLength {
		return false
	}

	var digit, letter, symbol bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		default:
			symbol = true
		}
	}
	return digit && letter && symbol
}

// CleanDisplayName trims name and checks it against the display name policy.
func CleanDisplayName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 1 || n > maxDisplayNameLength {
		return "", false
	}
	if !displayNamePattern.MatchString(name) {
		return "", false
	}
	return name, true
}

// defaultDisplayName derives a placeholder name from the account id.
func defaultDisplayName(accountID string) string {
	short := accountID
	if len(short) > 8 {
		short = short[:8]
	}
	return defaultNamePrefix + short
}
