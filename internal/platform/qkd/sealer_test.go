package qkd

import (
	"strings"
	"testing"
)

func newTestSealer(t *testing.T) (*Sealer, *Session) {
	t.Helper()
	session, err := SimulateExchange()
	if err != nil {
		t.Fatal(err)
	}
	sealer, err := NewSealer(session.Key)
	if err != nil {
		t.Fatal(err)
	}
	return sealer, session
}

func TestSealer_RoundTrip(t *testing.T) {
	sealer, _ := newTestSealer(t)

	sealed, err := sealer.Seal("acute bronchitis")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if strings.Contains(sealed, "bronchitis") {
		t.Error("sealed payload contains plaintext")
	}

	opened, err := sealer.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != "acute bronchitis" {
		t.Errorf("round trip mismatch: %q", opened)
	}
}

func TestSealer_WrongKeyFails(t *testing.T) {
	sealer, _ := newTestSealer(t)
	other, _ := newTestSealer(t)

	sealed, err := sealer.Seal("confidential")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Open(sealed); err == nil {
		t.Error("expected open with wrong key to fail")
	}
}

func TestSealer_RejectsShortKey(t *testing.T) {
	if _, err := NewSealer([]byte("too short")); err == nil {
		t.Error("expected error for short key")
	}
}

func TestSealer_RejectsGarbage(t *testing.T) {
	sealer, _ := newTestSealer(t)
	if _, err := sealer.Open("not base64!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := sealer.Open("aGk="); err == nil {
		t.Error("expected error for truncated ciphertext")
	}
}
