package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Stored credentials have the form "<salt hex>.<scrypt hex>".
const (
	saltBytes = 8
	keyLen    = 32

	scryptN = 16384
	scryptR = 8
	scryptP = 1

	separator = "."
)

var ErrMalformedCredential = errors.New("malformed credential")

// HashPassword salts and hashes a plain text password with a fresh random salt.
func HashPassword(plain string) (string, error) {
	salt := make([]byte, saltBytes)

	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return HashPasswordWithSalt(plain, hex.EncodeToString(salt))
}

// HashPasswordWithSalt derives the stored credential for a known salt.
// The hex salt string itself is the KDF salt input.
func HashPasswordWithSalt(plain, salt string) (string, error) {
	if salt == "" {
		return "", ErrMalformedCredential
	}

	key, err := scrypt.Key([]byte(plain), []byte(salt), scryptN, scryptR, scryptP, keyLen)

	if err != nil {
		return "", fmt.Errorf("derive key: %w", err)
	}

	return salt + separator + hex.EncodeToString(key), nil
}

// VerifyPassword reports whether plain matches the stored credential.
func VerifyPassword(plain, stored string) (bool, error) {
	salt, expected, ok := strings.Cut(stored, separator)

	if !ok || salt == "" || expected == "" {
		return false, ErrMalformedCredential
	}

	recomputed, err := HashPasswordWithSalt(plain, salt)

	if err != nil {
		return false, err
	}

	_, actual, _ := strings.Cut(recomputed, separator)

	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1, nil
}
