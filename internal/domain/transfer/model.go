package transfer

import (
	"time"

	"github.com/google/uuid"
)

// EnvelopeMetadata describes the simulated secure exchange that sealed a
// payload. Purely descriptive; it never gates acceptance.
type EnvelopeMetadata struct {
	Protocol      string `json:"protocol"`
	KeyHash       string `json:"key_hash"`
	BitsExchanged int    `json:"bits_exchanged"`
}

// InboxEntry is a staged transfer at a receiving facility. At most one entry
// exists per fingerprint; acceptance consumes the entry rather than deleting
// it, so the fingerprint keeps blocking duplicate sends of the same record
// version afterwards. The session key stays server-side so the receiver can
// unseal the payload on acceptance.
type InboxEntry struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	Fingerprint        string     `db:"fingerprint" json:"-"`
	SenderHospital     string     `db:"sender_hospital" json:"sender_hospital"`
	SenderDoctor       string     `db:"sender_doctor" json:"sender_doctor"`
	ReceiverHospital   string     `db:"receiver_hospital" json:"receiver_hospital"`
	RecordID           uuid.UUID  `db:"record_id" json:"record_id"`
	PatientIdentifier  string     `db:"patient_identifier" json:"patient_identifier"`
	SealedDiagnosis    string     `db:"sealed_diagnosis" json:"-"`
	SealedPrescription string     `db:"sealed_prescription" json:"-"`
	SessionKey         []byte     `db:"session_key" json:"-"`
	Protocol           string     `db:"protocol" json:"protocol"`
	KeyHash            string     `db:"key_hash" json:"key_hash"`
	BitsExchanged      int        `db:"bits_exchanged" json:"bits_exchanged"`
	StagedAt           time.Time  `db:"staged_at" json:"staged_at"`
	AcceptedAt         *time.Time `db:"accepted_at" json:"-"`
}

// Envelope returns the entry's exchange metadata.
func (e *InboxEntry) Envelope() EnvelopeMetadata {
	return EnvelopeMetadata{
		Protocol:      e.Protocol,
		KeyHash:       e.KeyHash,
		BitsExchanged: e.BitsExchanged,
	}
}

// InboxSummary is what a receiving facility sees before acceptance: sealed
// content plus provenance, nothing clinical in the clear.
type InboxSummary struct {
	ID                uuid.UUID        `json:"id"`
	From              string           `json:"from"`
	PatientIdentifier string           `json:"patient_identifier"`
	SealedPreview     string           `json:"sealed_preview"`
	Envelope          EnvelopeMetadata `json:"envelope"`
	StagedAt          time.Time        `json:"staged_at"`
}

// FailedRecord pairs a record identifier with the reason its transfer failed.
type FailedRecord struct {
	RecordID uuid.UUID `json:"id"`
	Reason   string    `json:"reason"`
}

// BatchResult partitions one batch invocation: every submitted identifier
// lands in exactly one of the three lists.
type BatchResult struct {
	Success []uuid.UUID    `json:"success"`
	Skipped []uuid.UUID    `json:"skipped"`
	Failed  []FailedRecord `json:"failed"`
}

func newBatchResult() *BatchResult {
	return &BatchResult{
		Success: []uuid.UUID{},
		Skipped: []uuid.UUID{},
		Failed:  []FailedRecord{},
	}
}

// AcceptedRecord summarizes a transfer that was just materialized at the
// accepting facility.
type AcceptedRecord struct {
	RecordID          uuid.UUID `json:"record_id"`
	Hospital          string    `json:"hospital"`
	PatientIdentifier string    `json:"patient_identifier"`
	Diagnosis         string    `json:"diagnosis"`
	Prescription      string    `json:"prescription"`
	TransferredFrom   string    `json:"transferred_from"`
	AcceptedAt        time.Time `json:"accepted_at"`
}
