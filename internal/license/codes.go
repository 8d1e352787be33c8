// Package license implements license code issuance and redemption.
package license

import (
	"crypto/rand"
	"fmt"
	"strings"

	"hrdocs/internal/types"
)

// codeAlphabet is the character set for license codes. Visually confusable
// characters (I, L, O, 0, 1) are excluded so codes survive being read over
// the phone or typed from paper.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// codeLength is the fixed length of a license code literal.
const codeLength = 8

// Normalize canonicalizes user input: surrounding whitespace is stripped and
// the code is upper-cased. Codes are case-insensitive on input and stored
// uppercase.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateFormat checks that a normalized code is well-formed. It returns an
// AppError with ErrCodeValidationInvalidCode so malformed input is rejected
// before any storage lookup.
func ValidateFormat(code string) error {
	if len(code) != codeLength {
		return types.NewAppError(types.ErrCodeValidationInvalidCode,
			fmt.Sprintf("license code must be %d characters", codeLength), nil)
	}
	for _, c := range code {
		if !strings.ContainsRune(codeAlphabet, c) {
			return types.NewAppError(types.ErrCodeValidationInvalidCode,
				"license code contains invalid characters", nil)
		}
	}
	return nil
}

// Generate returns a new random code drawn from the reduced alphabet using a
// cryptographic source. Random bytes outside the largest multiple of the
// alphabet size are rejected so every character is equally likely. Uniqueness
// is enforced by the storage layer's primary key, not here.
func Generate() (string, error) {
	const limit = byte(len(codeAlphabet) * (256 / len(codeAlphabet)))

	code := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(code) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to generate license code", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == codeLength {
				break
			}
		}
	}
	return string(code), nil
}
