package devicecode

import (
	"time"

	"github.com/google/uuid"
)

// Code represents a row in the device_codes table: a short-lived numeric
// code bound to a bearer token, redeemable exactly once.
type Code struct {
	Code      string
	TokenID   uuid.UUID
	ExpiresAt time.Time
	Consumed  bool
}
