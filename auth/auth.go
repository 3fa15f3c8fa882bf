// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrKeyCount        = errors.New("key count must be between 1 and 1000")
)

// MaxGeneratedKeys caps a single roster generation request.
const MaxGeneratedKeys = 1000

// Purpose labels keep admin keys and share slugs from being derivable from
// one another even when the same salt is configured for both.
const (
	purposeAdmin = "admin:"
	purposeSlug  = "slug:"
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func mac(salt, purpose, value string) []byte {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(purpose))
	h.Write([]byte(value))
	return h.Sum(nil)
}

// GenerateAdminKey creates an HMAC-based admin key for an election.
// It is deterministic, so nothing needs to be stored to verify it.
func GenerateAdminKey(electionID, salt string) string {
	sum := mac(salt, purposeAdmin, electionID)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the election
func ValidateAdminKey(electionID, adminKey, salt string) error {
	expected := GenerateAdminKey(electionID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// GenerateVoterKeys mints n random roster keys.
func GenerateVoterKeys(n int) ([]string, error) {
	if n < 1 || n > MaxGeneratedKeys {
		return nil, ErrKeyCount
	}
	keys := make([]string, n)
	for i := range keys {
		id, err := uuid.NewRandom()
		if err != nil {
			return nil, fmt.Errorf("failed to generate voter key: %w", err)
		}
		keys[i] = id.String()
	}
	return keys, nil
}

// GenerateShareSlug creates a short, deterministic, alphanumeric URL slug
// for an election.
func GenerateShareSlug(electionID, salt string) string {
	sum := mac(salt, purposeSlug, electionID)
	return base62Encode(sum[:8])
}

// base62Encode converts up to 8 bytes to base62 (0-9, a-z, A-Z)
func base62Encode(data []byte) string {
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	var num uint64
	for i := 0; i < len(data) && i < 8; i++ {
		num = num<<8 | uint64(data[i])
	}
	if num == 0 {
		return "0"
	}

	var buf [11]byte // max length for uint64
	i := len(buf)
	for num > 0 {
		i--
		buf[i] = base62Chars[num%62]
		num /= 62
	}
	return string(buf[i:])
}

// HashIP creates a one-way salted hash of an IP address for privacy.
// Returns 16 hex chars, enough to spot repeated submitters.
func HashIP(ip, salt string) string {
	sum := mac(salt, "", ip)
	return hex.EncodeToString(sum[:8])
}
