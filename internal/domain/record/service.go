package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medxfer/medxfer/internal/platform/auth"
	"github.com/medxfer/medxfer/internal/platform/qkd"
)

// ErrNotOwner is returned when a caller asks for a record they have no
// rights to.
var ErrNotOwner = errors.New("caller does not own record")

type Service struct {
	records Repository
}

func NewService(records Repository) *Service {
	return &Service{records: records}
}

// CreateRecord seals the clinical content with a fresh exchange key and
// stores the record under the calling doctor's facility.
func (s *Service) CreateRecord(ctx context.Context, ident auth.Identity, patientIdentifier string, clin Clinical) (*View, error) {
	if ident.Role != auth.RoleDoctor && ident.Role != auth.RoleAdmin {
		return nil, ErrNotOwner
	}
	if patientIdentifier == "" {
		return nil, fmt.Errorf("patient_identifier is required")
	}
	if clin.Diagnosis == "" {
		return nil, fmt.Errorf("diagnosis is required")
	}

	session, err := qkd.SimulateExchange()
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	sealer, err := qkd.NewSealer(session.Key)
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	sealedDiagnosis, err := sealer.Seal(clin.Diagnosis)
	if err != nil {
		return nil, fmt.Errorf("seal diagnosis: %w", err)
	}
	sealedPrescription, err := sealer.Seal(clin.Prescription)
	if err != nil {
		return nil, fmt.Errorf("seal prescription: %w", err)
	}

	rec := &Record{
		Hospital:          ident.Hospital,
		DoctorID:          ident.UserID,
		DoctorName:        ident.FullName,
		PatientIdentifier: patientIdentifier,
		Diagnosis:         sealedDiagnosis,
		Prescription:      sealedPrescription,
		Notes:             clin.Notes,
		ContentVersion:    1,
		StorageKey:        session.Key,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	return s.view(rec, clin), nil
}

// ListMine returns the caller's records with clinical content unsealed:
// a doctor sees the records they authored, a patient the records filed
// under their identifier.
func (s *Service) ListMine(ctx context.Context, ident auth.Identity, limit, offset int) ([]*View, int, error) {
	var (
		recs  []*Record
		total int
		err   error
	)
	switch ident.Role {
	case auth.RolePatient:
		recs, total, err = s.records.ListByPatient(ctx, ident.UserID, limit, offset)
	default:
		recs, total, err = s.records.ListByDoctor(ctx, ident.UserID, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}

	views := make([]*View, 0, len(recs))
	for _, rec := range recs {
		clin, err := s.open(rec)
		if err != nil {
			return nil, 0, fmt.Errorf("unseal record %s: %w", rec.ID, err)
		}
		views = append(views, s.view(rec, clin))
	}
	return views, total, nil
}

// Resolve loads a record and verifies the caller has transfer rights over
// it: the record must belong to the caller and to the caller's facility.
// The returned Clinical is the unsealed content.
func (s *Service) Resolve(ctx context.Context, ident auth.Identity, id uuid.UUID) (*Record, Clinical, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, Clinical{}, err
	}

	// Ownership is never waived, not even for admin: transfer rights belong
	// to the authoring doctor at the record's facility.
	if rec.DoctorID != ident.UserID || rec.Hospital != ident.Hospital {
		return nil, Clinical{}, ErrNotOwner
	}

	clin, err := s.open(rec)
	if err != nil {
		return nil, Clinical{}, fmt.Errorf("unseal record %s: %w", rec.ID, err)
	}
	return rec, clin, nil
}

// Materialize creates an active record at the receiving facility from an
// accepted transfer, sealed at rest under a fresh key and carrying a
// provenance marker of the sending facility.
func (s *Service) Materialize(ctx context.Context, m Materialization) (*Record, error) {
	session, err := qkd.SimulateExchange()
	if err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}
	sealer, err := qkd.NewSealer(session.Key)
	if err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}

	sealedDiagnosis, err := sealer.Seal(m.Clinical.Diagnosis)
	if err != nil {
		return nil, fmt.Errorf("materialize: seal diagnosis: %w", err)
	}
	sealedPrescription, err := sealer.Seal(m.Clinical.Prescription)
	if err != nil {
		return nil, fmt.Errorf("materialize: seal prescription: %w", err)
	}

	from := m.SourceHospital
	srcID := m.SourceRecordID
	rec := &Record{
		Hospital:          m.Hospital,
		DoctorID:          m.DoctorID,
		DoctorName:        m.DoctorName,
		PatientIdentifier: m.PatientIdentifier,
		Diagnosis:         sealedDiagnosis,
		Prescription:      sealedPrescription,
		Notes:             m.Clinical.Notes,
		ContentVersion:    1,
		StorageKey:        session.Key,
		TransferredFrom:   &from,
		SourceRecordID:    &srcID,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}
	return rec, nil
}

func (s *Service) open(rec *Record) (Clinical, error) {
	sealer, err := qkd.NewSealer(rec.StorageKey)
	if err != nil {
		return Clinical{}, err
	}
	diagnosis, err := sealer.Open(rec.Diagnosis)
	if err != nil {
		return Clinical{}, err
	}
	prescription, err := sealer.Open(rec.Prescription)
	if err != nil {
		return Clinical{}, err
	}
	return Clinical{Diagnosis: diagnosis, Prescription: prescription, Notes: rec.Notes}, nil
}

func (s *Service) view(rec *Record, clin Clinical) *View {
	return &View{
		ID:                rec.ID,
		Hospital:          rec.Hospital,
		DoctorName:        rec.DoctorName,
		PatientIdentifier: rec.PatientIdentifier,
		Diagnosis:         clin.Diagnosis,
		Prescription:      clin.Prescription,
		Notes:             rec.Notes,
		TransferredFrom:   rec.TransferredFrom,
		CreatedAt:         rec.CreatedAt,
	}
}
