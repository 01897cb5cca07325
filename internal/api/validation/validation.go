// Package validation holds the eager request checks performed before any
// mutation reaches a repository.
package validation

import (
	"errors"
	"strings"

	"github.com/cmdstash/cmdstash/internal/command"
)

// ErrWeakCredentials covers both an empty email and a too-short password.
// The message is deliberately shared so callers see a single rule.
var ErrWeakCredentials = errors.New("email required and password must be at least 8 characters")

// ErrBadVisibility is returned for visibility values outside PUBLIC/PRIVATE.
var ErrBadVisibility = errors.New("visibility must be PUBLIC or PRIVATE")

// minPasswordLength is the registration floor.
const minPasswordLength = 8

// RegisterRequest validates registration input.
func RegisterRequest(email, password string) error {
	if strings.TrimSpace(email) == "" || len(password) < minPasswordLength {
		return ErrWeakCredentials
	}
	return nil
}

// Visibility validates a resolved visibility value. Callers default empty
// input before calling, so empty is rejected too.
func Visibility(v string) error {
	if !command.ValidVisibility(v) {
		return ErrBadVisibility
	}
	return nil
}

// CommandPayload validates the required fields of a command write.
func CommandPayload(text, platform string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("text is required")
	}
	if strings.TrimSpace(platform) == "" {
		return errors.New("platform is required")
	}
	return nil
}
