package utils

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// claim codes avoid padding and lower-case so they survive being typed in
var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateClaimCode returns a random upper-case code of n characters.
func GenerateClaimCode(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive")
	}
	buf := make([]byte, (n*5+7)/8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return codeEncoding.EncodeToString(buf)[:n], nil
}

// NormalizeClaimCode trims surrounding whitespace. Codes are otherwise matched
// exactly.
func NormalizeClaimCode(code string) string {
	return strings.TrimSpace(code)
}
