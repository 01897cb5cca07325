package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cmdstash/cmdstash/internal/api/validation"
)

func TestRegisterRequest(t *testing.T) {
	assert.NoError(t, validation.RegisterRequest("alice@example.com", "12345678"))
	assert.ErrorIs(t, validation.RegisterRequest("", "12345678"), validation.ErrWeakCredentials)
	assert.ErrorIs(t, validation.RegisterRequest("   ", "12345678"), validation.ErrWeakCredentials)
	assert.ErrorIs(t, validation.RegisterRequest("alice@example.com", "1234567"), validation.ErrWeakCredentials)
}

func TestVisibility(t *testing.T) {
	assert.NoError(t, validation.Visibility("PUBLIC"))
	assert.NoError(t, validation.Visibility("PRIVATE"))
	assert.ErrorIs(t, validation.Visibility("SECRET"), validation.ErrBadVisibility)
	assert.ErrorIs(t, validation.Visibility("public"), validation.ErrBadVisibility, "visibility is case-sensitive")
	assert.ErrorIs(t, validation.Visibility(""), validation.ErrBadVisibility)
}

func TestCommandPayload(t *testing.T) {
	assert.NoError(t, validation.CommandPayload("git status", "linux"))
	assert.Error(t, validation.CommandPayload("", "linux"))
	assert.Error(t, validation.CommandPayload("  ", "linux"))
	assert.Error(t, validation.CommandPayload("git status", ""))
}
