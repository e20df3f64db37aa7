// Package crypto provides cryptographic utilities for Brewlog.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Raising the cost constants affects new hashes only;
// existing ones keep verifying with their stored salt.
const (
	// argonTime is the number of passes over memory.
	argonTime = 3

	// argonMemory is the memory cost in KiB (64 MiB).
	argonMemory = 64 * 1024

	// argonThreads is the degree of parallelism.
	argonThreads = 2

	// SaltLength is the length of the random per-password salt in bytes.
	SaltLength = 16

	// KeyLength is the length of the derived hash in bytes.
	KeyLength = 32
)

// HashPassword derives a fresh random salt and the argon2id hash of the
// password with that salt. The plaintext is never retained.
func HashPassword(password string) (hash, salt []byte, err error) {
	salt = make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return hashWithSalt(password, salt), salt, nil
}

// VerifyPassword reports whether the password matches the stored hash and
// salt. Comparison is constant time.
func VerifyPassword(password string, salt, hash []byte) bool {
	if len(salt) == 0 || len(hash) == 0 {
		return false
	}
	computed := hashWithSalt(password, salt)
	return subtle.ConstantTimeCompare(computed, hash) == 1
}

// hashWithSalt computes the argon2id hash of the password with the given salt.
func hashWithSalt(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, KeyLength)
}
