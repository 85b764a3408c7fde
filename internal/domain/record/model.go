package record

import (
	"time"

	"github.com/google/uuid"
)

// Record is a clinical record owned by one facility. Diagnosis and
// prescription are sealed at rest with a per-record storage key; the storage
// key never leaves the server and is excluded from every response.
type Record struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Hospital          string     `db:"hospital" json:"hospital"`
	DoctorID          string     `db:"doctor_id" json:"doctor_id"`
	DoctorName        string     `db:"doctor_name" json:"doctor_name"`
	PatientIdentifier string     `db:"patient_identifier" json:"patient_identifier"`
	Diagnosis         string     `db:"diagnosis" json:"-"`
	Prescription      string     `db:"prescription" json:"-"`
	Notes             *string    `db:"notes" json:"notes,omitempty"`
	ContentVersion    int        `db:"content_version" json:"content_version"`
	StorageKey        []byte     `db:"storage_key" json:"-"`
	TransferredFrom   *string    `db:"transferred_from" json:"transferred_from,omitempty"`
	SourceRecordID    *uuid.UUID `db:"source_record_id" json:"source_record_id,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// Clinical is the plaintext clinical content of a record, only ever held
// transiently while serving an authorized caller.
type Clinical struct {
	Diagnosis    string  `json:"diagnosis"`
	Prescription string  `json:"prescription"`
	Notes        *string `json:"notes,omitempty"`
}

// View is a record as returned to its owner, clinical fields unsealed.
type View struct {
	ID                uuid.UUID `json:"id"`
	Hospital          string    `json:"hospital"`
	DoctorName        string    `json:"doctor_name"`
	PatientIdentifier string    `json:"patient_identifier"`
	Diagnosis         string    `json:"diagnosis"`
	Prescription      string    `json:"prescription"`
	Notes             *string   `json:"notes,omitempty"`
	TransferredFrom   *string   `json:"transferred_from,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Materialization describes the record to create at a receiving facility
// when an inbox entry is accepted.
type Materialization struct {
	Hospital          string
	DoctorID          string
	DoctorName        string
	PatientIdentifier string
	Clinical          Clinical
	SourceHospital    string
	SourceRecordID    uuid.UUID
}
