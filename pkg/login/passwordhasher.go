package login

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Hasher names accepted by NewPasswordHasher.
const (
	HasherSHA256 = "sha256"
	HasherBcrypt = "bcrypt"
)

// PasswordHasher defines the interface for password hashing algorithms
type PasswordHasher interface {
	// Hash creates a hash from a password
	Hash(password string) (string, error)
	// Verify checks if a password matches a hash
	Verify(password, hashedPassword string) (bool, error)
}

// SHA256Hasher stores the unsalted hex SHA-256 digest of the password.
// It is weak, but it is the format existing user tables carry.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(password, hashedPassword string) (bool, error) {
	if password == "" || hashedPassword == "" {
		return false, nil
	}
	candidate, err := h.Hash(password)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(strings.ToLower(hashedPassword))) == 1, nil
}

// BcryptHasher implements PasswordHasher using golang.org/x/crypto/bcrypt
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher; a cost outside bcrypt's range uses bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hashedPassword string) (bool, error) {
	if password == "" || hashedPassword == "" {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// isBcryptHash reports whether hash is in bcrypt's modular crypt format.
func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}

// formatAwareHasher hashes with primary and verifies each stored hash with
// the algorithm that produced it, so switching PASSWORD_HASHER keeps
// existing accounts usable.
type formatAwareHasher struct {
	primary PasswordHasher
	sha     SHA256Hasher
	bcrypt  *BcryptHasher
}

func (h formatAwareHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

func (h formatAwareHasher) Verify(password, hashedPassword string) (bool, error) {
	if isBcryptHash(hashedPassword) {
		return h.bcrypt.Verify(password, hashedPassword)
	}
	return h.sha.Verify(password, hashedPassword)
}

// NewPasswordHasher returns the hasher named by algorithm ("sha256" or "bcrypt").
func NewPasswordHasher(algorithm string) (PasswordHasher, error) {
	h := formatAwareHasher{bcrypt: NewBcryptHasher(bcrypt.DefaultCost)}
	switch strings.ToLower(algorithm) {
	case "", HasherSHA256:
		h.primary = h.sha
	case HasherBcrypt:
		h.primary = h.bcrypt
	default:
		return nil, fmt.Errorf("unsupported password hasher: %s", algorithm)
	}
	return h, nil
}
