package transfer

import (
	"testing"

	"github.com/google/uuid"
)

func TestFingerprint_Deterministic(t *testing.T) {
	id := uuid.New()
	a := Fingerprint(id, 1, "St. Mary Medical Center")
	b := Fingerprint(id, 1, "St. Mary Medical Center")
	if a != b {
		t.Errorf("same inputs produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestFingerprint_SensitiveToEachInput(t *testing.T) {
	id := uuid.New()
	base := Fingerprint(id, 1, "St. Mary Medical Center")

	if got := Fingerprint(uuid.New(), 1, "St. Mary Medical Center"); got == base {
		t.Error("different record must change fingerprint")
	}
	if got := Fingerprint(id, 2, "St. Mary Medical Center"); got == base {
		t.Error("different content version must change fingerprint")
	}
	if got := Fingerprint(id, 1, "Lakeside Regional Hospital"); got == base {
		t.Error("different destination must change fingerprint")
	}
}
