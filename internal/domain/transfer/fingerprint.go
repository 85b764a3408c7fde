package transfer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Fingerprint derives the stable digest identifying one logical transfer:
// a specific record version bound for a specific destination. Equal inputs
// always yield equal digests, so re-sending the same version to the same
// destination collides with the entry already staged there.
func Fingerprint(recordID uuid.UUID, contentVersion int, destination string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", recordID, contentVersion, destination)))
	return hex.EncodeToString(sum[:])
}
