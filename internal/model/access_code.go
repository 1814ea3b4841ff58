package model

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

// AccessCodeLength is the fixed length of a module access code.
const AccessCodeLength = 6

var ErrMalformedAccessCode = errors.New("access code must be 6 letters or digits")

// NormalizeAccessCode trims and upper-cases a typed code and checks its shape.
// Every entry point (form, join link, server lookup) goes through here.
func NormalizeAccessCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != AccessCodeLength {
		return "", ErrMalformedAccessCode
	}
	for _, r := range code {
		if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return "", ErrMalformedAccessCode
		}
	}
	return code, nil
}

// GenerateAccessCode returns a random 6-character upper-case hex code.
func GenerateAccessCode() (string, error) {
	b := make([]byte, AccessCodeLength/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
