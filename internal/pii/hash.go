// Package pii produces the one-way digests sent to the ad platform in place of
// raw contact details. An empty result means "absent": callers serialize the
// field with omitempty and never send a digest of the empty string.
package pii

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashEmail trims and lower-cases the address before hashing.
func HashEmail(email string) string {
	return digest(strings.ToLower(strings.TrimSpace(email)))
}

// HashPhone hashes the digits of phone, ignoring formatting.
func HashPhone(phone string) string {
	return digest(DigitsOnly(phone))
}

// HashValue hashes value exactly as given.
func HashValue(value string) string {
	return digest(value)
}

// DigitsOnly strips everything except ASCII digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func digest(s string) string {
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
