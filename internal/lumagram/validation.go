// Package lumagram implements the Lumagram client: form validation, asset
// path resolution, deterministic theming, and the per-page controllers that
// talk to the Lumagram REST backend.
//
// This file validates form input before it is sent to the backend. It strips
// a fixed denylist of unsafe patterns and checks field-level constraints for
// usernames, emails, passwords, full names, and bios. Validation mirrors the
// server-side rules so that rejected input never reaches the network.
package lumagram

import (
	"fmt"
	"regexp"
	"strings"
)

// Input length limits matching the backend constraints
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxEmailLength    = 100
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxFullNameLength = 100
	MaxBioLength      = 500
)

// Pre-compiled patterns for sanitization and validation
var (
	angleBracketRegex = regexp.MustCompile(`[<>]`)
	jsSchemeRegex     = regexp.MustCompile(`(?i)javascript:`)
	eventAttrRegex    = regexp.MustCompile(`(?i)on\w+=`)
	usernameRegex     = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)
	emailRegex        = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// weakPasswords is a small denylist checked case-insensitively.
var weakPasswords = []string{"password", "12345678", "qwerty", "abc123"}

// FieldResult is the outcome of validating a single form field.
// Errors are user-facing strings in check order; callers surface only the
// first. Value holds the sanitized (and for emails, normalized) input.
type FieldResult struct {
	Valid  bool
	Errors []string
	Value  string
}

// Err returns the first validation error as a *ValidationError, or nil.
func (r *FieldResult) Err(field string) *ValidationError {
	if r.Valid || len(r.Errors) == 0 {
		return nil
	}
	return &ValidationError{Field: field, Message: r.Errors[0]}
}

// ValidationError is a field-level input error. It is never sent to the
// network; callers show Message inline next to Field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Sanitize strips a fixed denylist of unsafe patterns from user input:
// angle brackets, the javascript: scheme, and inline event-handler
// attribute prefixes. Whitespace is trimmed first. Pure.
func Sanitize(input string) string {
	s := strings.TrimSpace(input)
	s = angleBracketRegex.ReplaceAllString(s, "")
	s = jsSchemeRegex.ReplaceAllString(s, "")
	s = eventAttrRegex.ReplaceAllString(s, "")
	return s
}

// ValidateUsername checks a username: required, sanitized length in
// [3,30], charset letters/digits/dots/underscores.
func ValidateUsername(username string) *FieldResult {
	if strings.TrimSpace(username) == "" {
		return &FieldResult{Errors: []string{"Username is required"}}
	}

	sanitized := Sanitize(username)
	var errs []string

	if len(sanitized) < MinUsernameLength {
		errs = append(errs, fmt.Sprintf("Username must be at least %d characters", MinUsernameLength))
	}
	if len(sanitized) > MaxUsernameLength {
		errs = append(errs, fmt.Sprintf("Username must be %d characters or less", MaxUsernameLength))
	}
	if !usernameRegex.MatchString(sanitized) {
		errs = append(errs, "Username can only contain letters, numbers, dots, and underscores")
	}

	return &FieldResult{Valid: len(errs) == 0, Errors: errs, Value: sanitized}
}

// ValidateEmail checks an email address against a permissive
// local@domain.tld pattern and normalizes it to lowercase.
func ValidateEmail(email string) *FieldResult {
	if strings.TrimSpace(email) == "" {
		return &FieldResult{Errors: []string{"Email is required"}}
	}

	sanitized := Sanitize(email)
	var errs []string

	if !emailRegex.MatchString(sanitized) {
		errs = append(errs, "Please enter a valid email address")
	}
	if len(sanitized) > MaxEmailLength {
		errs = append(errs, fmt.Sprintf("Email must be %d characters or less", MaxEmailLength))
	}

	return &FieldResult{Valid: len(errs) == 0, Errors: errs, Value: strings.ToLower(sanitized)}
}

// ValidatePassword checks length bounds and rejects a small hardcoded list
// of weak passwords case-insensitively. Passwords are never sanitized:
// they are not rendered as HTML and may legitimately contain any character.
func ValidatePassword(password string) *FieldResult {
	if password == "" {
		return &FieldResult{Errors: []string{"Password is required"}}
	}

	var errs []string
	if len(password) < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		errs = append(errs, "Password is too long")
	}

	lower := strings.ToLower(password)
	for _, weak := range weakPasswords {
		if lower == weak {
			errs = append(errs, "Please choose a stronger password")
			break
		}
	}

	return &FieldResult{Valid: len(errs) == 0, Errors: errs, Value: password}
}

// ValidateFullName checks an optional display name. Empty input is valid
// with an empty value.
func ValidateFullName(fullName string) *FieldResult {
	if strings.TrimSpace(fullName) == "" {
		return &FieldResult{Valid: true}
	}

	sanitized := Sanitize(fullName)
	if len(sanitized) > MaxFullNameLength {
		return &FieldResult{
			Errors: []string{fmt.Sprintf("Full name must be %d characters or less", MaxFullNameLength)},
			Value:  sanitized,
		}
	}
	return &FieldResult{Valid: true, Value: sanitized}
}

// ValidateBio checks an optional bio. Empty input is valid with an empty
// value.
func ValidateBio(bio string) *FieldResult {
	if strings.TrimSpace(bio) == "" {
		return &FieldResult{Valid: true}
	}

	sanitized := Sanitize(bio)
	if len(sanitized) > MaxBioLength {
		return &FieldResult{
			Errors: []string{fmt.Sprintf("Bio must be %d characters or less", MaxBioLength)},
			Value:  sanitized,
		}
	}
	return &FieldResult{Valid: true, Value: sanitized}
}
