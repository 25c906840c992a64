package security

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashToken produces a salted one-way hash of a raw token for at-rest
// storage. The token is pre-digested with SHA-256 because bcrypt rejects
// inputs longer than 72 bytes and signed tokens always exceed that.
func HashToken(token string) (string, error) {
	digest := sha256.Sum256([]byte(token))
	hash, err := bcrypt.GenerateFromPassword(digest[:], bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}

// CompareTokenHash reports whether the presented raw token matches a stored
// hash produced by HashToken.
func CompareTokenHash(token, storedHash string) (bool, error) {
	digest := sha256.Sum256([]byte(token))
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), digest[:])
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("failed to compare token hash: %w", err)
	}
	return true, nil
}
