package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// ErrInvalidEmail is returned for addresses that fail RFC 5322 parsing.
var ErrInvalidEmail = errors.New("invalid email")

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts a bare addr-spec such as "a@example.com".
// Display-name forms like "A <a@example.com>" are rejected.
func ValidateEmail(email string) error {
	if email == "" || len(email) > 320 {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return ErrInvalidEmail
	}
	if !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return ErrInvalidEmail
	}
	return nil
}

// storedTime converts t to the UTC microsecond precision Postgres keeps.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
