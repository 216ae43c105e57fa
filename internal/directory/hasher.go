package directory

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the one-way credential contract the directory depends on.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// SHA256Hasher is the default. Unsalted SHA-256 is a known weakness kept
// for compatibility with existing credential files; select bcrypt in the
// config to upgrade.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(secret string) (string, error) {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(secret, digest string) bool {
	computed, _ := h.Hash(secret)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// BcryptHasher is the salted alternative. Digests produced by one hasher
// cannot be verified by the other, so pick one per deployment.
type BcryptHasher struct{}

func (BcryptHasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (BcryptHasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
