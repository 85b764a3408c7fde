package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds recorded in the ledger.
const (
	EventTransferred = "transferred"
	EventAccepted    = "accepted"
)

// Entry is one immutable ledger row. Entries are written once when a
// transfer is staged or accepted and are never edited or deleted; the ledger
// carries provenance and exchange statistics but no clinical content.
type Entry struct {
	ID               uuid.UUID `db:"id" json:"id"`
	EventKind        string    `db:"event_kind" json:"event_kind"`
	SenderHospital   string    `db:"sender_hospital" json:"sender_hospital"`
	SenderDoctor     string    `db:"sender_doctor" json:"sender_doctor"`
	ReceiverHospital string    `db:"receiver_hospital" json:"receiver_hospital"`
	RecordID         uuid.UUID `db:"record_id" json:"record_id"`
	Protocol         string    `db:"protocol" json:"protocol"`
	KeyHash          string    `db:"key_hash" json:"key_hash"`
	BitsExchanged    int       `db:"bits_exchanged" json:"bits_exchanged"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
