// Package crypto provides cryptographic utilities for Brewlog.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SessionTokenBytes is the number of random bytes in a session token.
// 32 bytes gives 256 bits of entropy.
const SessionTokenBytes = 32

// GenerateSessionToken generates an opaque session token from a CSPRNG.
// The token is hex encoded so it is safe to use directly as a cookie value.
func GenerateSessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
