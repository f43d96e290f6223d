// Package device generates stable per-account device identifiers.
package device

import (
	"strings"

	"github.com/gofrs/uuid/v5"
)

// NewID returns a fresh device identifier in the upper-case UUIDv4 form the
// platform expects in x-rpc-device_id headers.
func NewID() string {
	return strings.ToUpper(uuid.Must(uuid.NewV4()).String())
}

// NewPair returns one identifier per platform variant (iOS, Android).
// Both are generated once per account and reused for all later requests.
func NewPair() (ios, android string) {
	return NewID(), NewID()
}
