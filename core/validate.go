package core

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MinPasswordLength matches the minimum the registration and reset
	// flows accept.
	MinPasswordLength = 8
	// MaxPasswordLength caps hashing cost on attacker-supplied input.
	MaxPasswordLength = 128
)

// emailPattern is deliberately loose: one "@", no whitespace, a dot in the
// domain. Real ownership is proven by the verification link, not the regexp.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FieldError reports a validation failure on a single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-level failures so the boundary can
// report them all at once.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field string, err error) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: err.Error()})
}

// or returns the aggregate as a plain error, avoiding a typed-nil interface
// when no field failed.
func (e *ValidationError) or() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NormalizeEmail fixes the email case policy: addresses are compared and
// stored lower-cased, trimmed. Must be applied before both creation and
// lookup so uniqueness and login agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func checkPassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateRegistration checks the shape of registration input. Returns a
// *ValidationError listing every failing field, or nil.
func ValidateRegistration(name, email, password string) error {
	var v ValidationError
	if strings.TrimSpace(name) == "" {
		v.add("name", ErrNameRequired)
	}
	if err := checkEmail(email); err != nil {
		v.add("email", err)
	}
	if err := checkPassword(password); err != nil {
		v.add("password", err)
	}
	return v.or()
}

// ValidateLogin checks the shape of login input.
func ValidateLogin(email, password string) error {
	var v ValidationError
	if err := checkEmail(email); err != nil {
		v.add("email", err)
	}
	if password == "" {
		v.add("password", ErrPasswordRequired)
	}
	return v.or()
}

// ValidateEmail checks a bare email input (password reset request).
func ValidateEmail(email string) error {
	var v ValidationError
	if err := checkEmail(email); err != nil {
		v.add("email", err)
	}
	return v.or()
}

// ValidatePasswordReset checks the shape of reset input, including the
// confirmation echo of the new password.
func ValidatePasswordReset(email, token, password, confirmation string) error {
	var v ValidationError
	if err := checkEmail(email); err != nil {
		v.add("email", err)
	}
	if token == "" {
		v.add("token", ErrTokenRequired)
	}
	if err := checkPassword(password); err != nil {
		v.add("password", err)
	} else if password != confirmation {
		v.add("password_confirmation", ErrPasswordMismatch)
	}
	return v.or()
}
