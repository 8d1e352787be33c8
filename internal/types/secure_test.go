package types

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestSecretString_Redaction(t *testing.T) {
	s := SecretString("postgres://user:hunter2@db:5432/hrdocs")

	if got := fmt.Sprintf("%v", s); got != "***REDACTED***" {
		t.Errorf("fmt output leaked secret: %q", got)
	}
	if got := s.String(); got != "***REDACTED***" {
		t.Errorf("String() = %q", got)
	}

	b, err := json.Marshal(struct {
		URL SecretString `json:"url"`
	}{URL: s})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"url":"***REDACTED***"}` {
		t.Errorf("JSON leaked secret: %s", b)
	}

	if got := s.LogValue().String(); got != "***REDACTED***" {
		t.Errorf("LogValue leaked secret: %q", got)
	}
}

func TestSecretString_Unmask(t *testing.T) {
	s := SecretString("sg_api_key_123")
	if got := s.Unmask(); got != "sg_api_key_123" {
		t.Errorf("Unmask() = %q", got)
	}
}
