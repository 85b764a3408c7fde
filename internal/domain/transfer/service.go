package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medxfer/medxfer/internal/domain/audit"
	"github.com/medxfer/medxfer/internal/domain/record"
	"github.com/medxfer/medxfer/internal/platform/auth"
	"github.com/medxfer/medxfer/internal/platform/db"
	"github.com/medxfer/medxfer/internal/platform/qkd"
)

const sealedPreviewLen = 48

// RecordStore is the slice of the record service the engine needs: resolving
// a sender's record with its unsealed content, and materializing an accepted
// transfer at the receiving facility.
type RecordStore interface {
	Resolve(ctx context.Context, ident auth.Identity, id uuid.UUID) (*record.Record, record.Clinical, error)
	Materialize(ctx context.Context, m record.Materialization) (*record.Record, error)
}

// AuditLedger appends ledger entries alongside engine state changes.
type AuditLedger interface {
	Append(ctx context.Context, e *audit.Entry) error
}

// HospitalDirectory answers whether a destination facility is registered.
type HospitalDirectory interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// Service orchestrates batch transfers and inbox acceptance. Staging and
// acceptance each run in one transaction so the inbox, the record store, and
// the ledger never drift apart.
type Service struct {
	inbox     InboxRepository
	records   RecordStore
	ledger    AuditLedger
	hospitals HospitalDirectory
	tx        db.TxRunner
	log       zerolog.Logger
}

func NewService(inbox InboxRepository, records RecordStore, ledger AuditLedger, hospitals HospitalDirectory, tx db.TxRunner, log zerolog.Logger) *Service {
	return &Service{
		inbox:     inbox,
		records:   records,
		ledger:    ledger,
		hospitals: hospitals,
		tx:        tx,
		log:       log,
	}
}

// ExecuteBatch stages each requested record for the destination facility and
// partitions the batch into success, skipped, and failed. One record's
// outcome never affects another's; a batch as a whole only errors on empty
// input or a destination lookup failure.
func (s *Service) ExecuteBatch(ctx context.Context, ident auth.Identity, recordIDs []uuid.UUID, destination string) (*BatchResult, error) {
	if len(recordIDs) == 0 {
		return nil, fmt.Errorf("batch contains no records")
	}

	ids := dedupe(recordIDs)
	result := newBatchResult()

	if destination == ident.Hospital {
		return failAll(result, ids, ReasonInvalidDestination), nil
	}
	known, err := s.hospitals.Exists(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}
	if !known {
		return failAll(result, ids, ReasonInvalidDestination), nil
	}

	for _, id := range ids {
		outcome, reason := s.transferOne(ctx, ident, id, destination)
		switch outcome {
		case outcomeSuccess:
			result.Success = append(result.Success, id)
		case outcomeSkipped:
			result.Skipped = append(result.Skipped, id)
		default:
			result.Failed = append(result.Failed, FailedRecord{RecordID: id, Reason: reason})
		}
	}

	s.log.Info().
		Str("destination", destination).
		Int("success", len(result.Success)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Msg("transfer batch executed")
	return result, nil
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (s *Service) transferOne(ctx context.Context, ident auth.Identity, id uuid.UUID, destination string) (outcome, string) {
	rec, clin, err := s.records.Resolve(ctx, ident, id)
	switch {
	case errors.Is(err, record.ErrNotFound):
		return outcomeFailed, ReasonNotFound
	case errors.Is(err, record.ErrNotOwner):
		return outcomeFailed, ReasonUnauthorized
	case err != nil:
		s.log.Error().Err(err).Str("record_id", id.String()).Msg("resolve failed")
		return outcomeFailed, ReasonTransferError
	}

	fp := Fingerprint(rec.ID, rec.ContentVersion, destination)
	live, err := s.inbox.HasLiveEntry(ctx, fp)
	if err != nil {
		s.log.Error().Err(err).Str("record_id", id.String()).Msg("fingerprint check failed")
		return outcomeFailed, ReasonTransferError
	}
	if live {
		return outcomeSkipped, ""
	}

	entry, err := s.sealEntry(rec, clin, ident, destination, fp)
	if err != nil {
		s.log.Error().Err(err).Str("record_id", id.String()).Msg("seal failed")
		return outcomeFailed, ReasonTransferError
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.inbox.Stage(ctx, entry); err != nil {
			return err
		}
		return s.ledger.Append(ctx, &audit.Entry{
			EventKind:        audit.EventTransferred,
			SenderHospital:   ident.Hospital,
			SenderDoctor:     ident.FullName,
			ReceiverHospital: destination,
			RecordID:         rec.ID,
			Protocol:         entry.Protocol,
			KeyHash:          entry.KeyHash,
			BitsExchanged:    entry.BitsExchanged,
		})
	})
	if errors.Is(err, ErrDuplicateFingerprint) {
		// Lost a concurrent staging race after the pre-check passed.
		return outcomeSkipped, ""
	}
	if err != nil {
		s.log.Error().Err(err).Str("record_id", id.String()).Msg("stage failed")
		return outcomeFailed, ReasonTransferError
	}
	return outcomeSuccess, ""
}

func (s *Service) sealEntry(rec *record.Record, clin record.Clinical, ident auth.Identity, destination, fp string) (*InboxEntry, error) {
	session, err := qkd.SimulateExchange()
	if err != nil {
		return nil, err
	}
	sealer, err := qkd.NewSealer(session.Key)
	if err != nil {
		return nil, err
	}
	sealedDiagnosis, err := sealer.Seal(clin.Diagnosis)
	if err != nil {
		return nil, err
	}
	sealedPrescription, err := sealer.Seal(clin.Prescription)
	if err != nil {
		return nil, err
	}

	return &InboxEntry{
		Fingerprint:        fp,
		SenderHospital:     ident.Hospital,
		SenderDoctor:       ident.FullName,
		ReceiverHospital:   destination,
		RecordID:           rec.ID,
		PatientIdentifier:  rec.PatientIdentifier,
		SealedDiagnosis:    sealedDiagnosis,
		SealedPrescription: sealedPrescription,
		SessionKey:         session.Key,
		Protocol:           qkd.ProtocolName,
		KeyHash:            session.KeyHash(),
		BitsExchanged:      session.BitsExchanged,
	}, nil
}

// Inbox lists the caller's facility inbox as sealed summaries.
func (s *Service) Inbox(ctx context.Context, ident auth.Identity, limit, offset int) ([]*InboxSummary, int, error) {
	entries, total, err := s.inbox.ListForHospital(ctx, ident.Hospital, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]*InboxSummary, 0, len(entries))
	for _, e := range entries {
		summaries = append(summaries, &InboxSummary{
			ID:                e.ID,
			From:              e.SenderHospital,
			PatientIdentifier: e.PatientIdentifier,
			SealedPreview:     preview(e.SealedDiagnosis),
			Envelope:          e.Envelope(),
			StagedAt:          e.StagedAt,
		})
	}
	return summaries, total, nil
}

// Accept consumes one inbox entry and materializes the record at the
// caller's facility. Removal, materialization, and the ledger append commit
// together; under concurrent accepts of the same entry exactly one caller
// wins and the rest see ErrEntryNotFound.
func (s *Service) Accept(ctx context.Context, ident auth.Identity, entryID uuid.UUID) (*AcceptedRecord, error) {
	entry, err := s.inbox.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.ReceiverHospital != ident.Hospital {
		return nil, ErrForbidden
	}

	sealer, err := qkd.NewSealer(entry.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}
	diagnosis, err := sealer.Open(entry.SealedDiagnosis)
	if err != nil {
		return nil, fmt.Errorf("accept: unseal diagnosis: %w", err)
	}
	prescription, err := sealer.Open(entry.SealedPrescription)
	if err != nil {
		return nil, fmt.Errorf("accept: unseal prescription: %w", err)
	}

	var rec *record.Record
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		// Remove first: the loser of a concurrent accept stops here and
		// nothing else it did in the transaction survives.
		if err := s.inbox.Remove(ctx, entryID); err != nil {
			return err
		}

		materialized, err := s.records.Materialize(ctx, record.Materialization{
			Hospital:          ident.Hospital,
			DoctorID:          ident.UserID,
			DoctorName:        ident.FullName,
			PatientIdentifier: entry.PatientIdentifier,
			Clinical:          record.Clinical{Diagnosis: diagnosis, Prescription: prescription},
			SourceHospital:    entry.SenderHospital,
			SourceRecordID:    entry.RecordID,
		})
		if err != nil {
			return err
		}
		rec = materialized

		return s.ledger.Append(ctx, &audit.Entry{
			EventKind:        audit.EventAccepted,
			SenderHospital:   entry.SenderHospital,
			SenderDoctor:     entry.SenderDoctor,
			ReceiverHospital: entry.ReceiverHospital,
			RecordID:         entry.RecordID,
			Protocol:         entry.Protocol,
			KeyHash:          entry.KeyHash,
			BitsExchanged:    entry.BitsExchanged,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("entry_id", entryID.String()).
		Str("hospital", ident.Hospital).
		Msg("transfer accepted")
	return &AcceptedRecord{
		RecordID:          rec.ID,
		Hospital:          rec.Hospital,
		PatientIdentifier: rec.PatientIdentifier,
		Diagnosis:         diagnosis,
		Prescription:      prescription,
		TransferredFrom:   entry.SenderHospital,
		AcceptedAt:        rec.CreatedAt,
	}, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func failAll(result *BatchResult, ids []uuid.UUID, reason string) *BatchResult {
	for _, id := range ids {
		result.Failed = append(result.Failed, FailedRecord{RecordID: id, Reason: reason})
	}
	return result
}

func preview(sealed string) string {
	if len(sealed) <= sealedPreviewLen {
		return sealed
	}
	return sealed[:sealedPreviewLen]
}
