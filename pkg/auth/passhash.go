// Package auth provides the UI authentication utilities: salted password
// hashing for the stored admin credential and short-lived JWT session
// tokens.
package auth

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Stored password format: hexHash:hexSalt:iterations. The iteration count
// travels with the hash so it can be raised over time without invalidating
// existing credentials.
const (
	hashIterations = 100_000
	saltLength     = 16
	keyLength      = sha1.Size
)

var ErrInvalidHashFormat = errors.New("invalid password hash format")

// GenerateHash hashes a password with a fresh random salt.
func GenerateHash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := pbkdf2.Key([]byte(password), salt, hashIterations, keyLength, sha1.New)
	return hex.EncodeToString(hash) + ":" + hex.EncodeToString(salt) + ":" +
		strconv.Itoa(hashIterations), nil
}

// ValidatePassword checks a password against a stored hash. A malformed
// stored value is an error, not a mismatch.
func ValidatePassword(password, stored string) (bool, error) {
	parts := strings.Split(stored, ":")
	if len(parts) != 3 {
		return false, fmt.Errorf("%w: expected hash:salt:iterations, got %d fields",
			ErrInvalidHashFormat, len(parts))
	}
	hash, err := hex.DecodeString(parts[0])
	if err != nil {
		return false, fmt.Errorf("%w: non-hex hash: %v", ErrInvalidHashFormat, err)
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("%w: non-hex salt: %v", ErrInvalidHashFormat, err)
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil {
		return false, fmt.Errorf("%w: iteration count is not a number: %v",
			ErrInvalidHashFormat, err)
	}
	if iterations <= 0 {
		return false, fmt.Errorf("%w: non-positive iteration count %d",
			ErrInvalidHashFormat, iterations)
	}
	candidate := pbkdf2.Key([]byte(password), salt, iterations, len(hash), sha1.New)
	return subtle.ConstantTimeCompare(hash, candidate) == 1, nil
}
