// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/markboard/criteria"
)

var ErrInvalidPassword = errors.New("invalid password")

// DefaultMasterKey unlocks every jury when no MASTER_KEY is configured.
const DefaultMasterKey = "CDD123"

// GenerateID creates a random UUID for database records
func GenerateID() string {
	return uuid.NewString()
}

// CheckJuryAccess reports whether input unlocks the named jury.
// Both sides are trimmed and upper-cased; the input matches either the
// jury name or the master key. An empty master key never matches.
func CheckJuryAccess(juryName, input, masterKey string) bool {
	entered := normalizeSecret(input)
	if entered == "" {
		return false
	}
	if entered == normalizeSecret(juryName) {
		return true
	}
	master := normalizeSecret(masterKey)
	return master != "" && entered == master
}

func normalizeSecret(s string) string {
	return criteria.Upper(strings.TrimSpace(s))
}

// HashPassword returns the bcrypt hash of an admin password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a candidate password against a bcrypt hash
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
