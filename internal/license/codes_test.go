package license

import (
	"errors"
	"strings"
	"testing"

	"hrdocs/internal/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abcd2345", "ABCD2345"},
		{"  ABCD2345  ", "ABCD2345"},
		{"AbCd2345", "ABCD2345"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	valid := []string{"ABCD2345", "WXYZ6789", "22222222", "QQQQQQQQ"}
	for _, code := range valid {
		if err := ValidateFormat(code); err != nil {
			t.Errorf("ValidateFormat(%q) = %v, want nil", code, err)
		}
	}

	invalid := []string{
		"ABC234",    // too short
		"ABCD23456", // too long
		"ABCD234O",  // O is excluded as confusable
		"ABCD2341",  // 1 is excluded as confusable
		"abcd2345",  // not normalized
		"ABCD 345",  // whitespace
		"",
	}
	for _, code := range invalid {
		err := ValidateFormat(code)
		if err == nil {
			t.Errorf("ValidateFormat(%q) = nil, want error", code)
			continue
		}
		var appErr *types.AppError
		if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeValidationInvalidCode {
			t.Errorf("ValidateFormat(%q) error = %v, want %s", code, err, types.ErrCodeValidationInvalidCode)
		}
	}
}

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if err := ValidateFormat(code); err != nil {
			t.Fatalf("generated code %q fails validation: %v", code, err)
		}
		for _, c := range code {
			if strings.ContainsRune("ILO01", c) {
				t.Fatalf("generated code %q contains confusable character %q", code, c)
			}
		}
		seen[code] = true
	}
	// 100 draws from a 31^8 space colliding would indicate a broken generator.
	if len(seen) < 95 {
		t.Errorf("only %d distinct codes out of 100", len(seen))
	}
}

func TestGenerate_CharacterDistribution(t *testing.T) {
	const draws = 4000
	counts := make(map[rune]int, len(codeAlphabet))
	for i := 0; i < draws; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		for _, c := range code {
			counts[c]++
		}
	}

	// Every alphabet character should land near the uniform expectation.
	// The band is many standard deviations wide, so a failure means bias,
	// not bad luck.
	expected := draws * codeLength / len(codeAlphabet)
	for _, c := range codeAlphabet {
		n := counts[c]
		if n < expected/2 || n > expected*2 {
			t.Errorf("character %q count = %d, expected around %d", c, n, expected)
		}
	}
}
