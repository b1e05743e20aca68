// Package redemption generates the one-time validation codes returned when a
// ticket is used. Codes are a response-time artifact only, never persisted.
package redemption

import (
	"crypto/rand"
)

const (
	charset    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	CodeLength = 8
)

// NewCode returns a short random alphanumeric token.
func NewCode() (string, error) {
	code := make([]byte, CodeLength)

	if _, err := rand.Read(code); err != nil {
		return "", err
	}

	for i := range code {
		code[i] = charset[int(code[i])%len(charset)]
	}

	return string(code), nil
}
