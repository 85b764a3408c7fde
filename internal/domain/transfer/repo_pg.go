package transfer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medxfer/medxfer/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

func (r *RepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const entryCols = `id, fingerprint, sender_hospital, sender_doctor, receiver_hospital,
	record_id, patient_identifier, sealed_diagnosis, sealed_prescription,
	session_key, protocol, key_hash, bits_exchanged, staged_at, accepted_at`

func scanEntry(row pgx.Row) (*InboxEntry, error) {
	var e InboxEntry
	err := row.Scan(
		&e.ID, &e.Fingerprint, &e.SenderHospital, &e.SenderDoctor, &e.ReceiverHospital,
		&e.RecordID, &e.PatientIdentifier, &e.SealedDiagnosis, &e.SealedPrescription,
		&e.SessionKey, &e.Protocol, &e.KeyHash, &e.BitsExchanged, &e.StagedAt, &e.AcceptedAt,
	)
	return &e, err
}

// HasLiveEntry deliberately includes consumed entries: an accepted transfer
// still claims its fingerprint, so re-sending the same record version stays
// deduplicated.
func (r *RepoPG) HasLiveEntry(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inbox_entries WHERE fingerprint = $1)`,
		fingerprint).Scan(&exists)
	return exists, err
}

// Stage inserts a new entry. The unique index on fingerprint arbitrates
// concurrent staging: losers see no inserted row and get
// ErrDuplicateFingerprint.
func (r *RepoPG) Stage(ctx context.Context, e *InboxEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO inbox_entries (id, fingerprint, sender_hospital, sender_doctor,
			receiver_hospital, record_id, patient_identifier, sealed_diagnosis,
			sealed_prescription, session_key, protocol, key_hash, bits_exchanged)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 ON CONFLICT (fingerprint) DO NOTHING
		 RETURNING staged_at`,
		e.ID, e.Fingerprint, e.SenderHospital, e.SenderDoctor,
		e.ReceiverHospital, e.RecordID, e.PatientIdentifier, e.SealedDiagnosis,
		e.SealedPrescription, e.SessionKey, e.Protocol, e.KeyHash, e.BitsExchanged,
	).Scan(&e.StagedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDuplicateFingerprint
	}
	return err
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*InboxEntry, error) {
	e, err := scanEntry(r.conn(ctx).QueryRow(ctx,
		`SELECT `+entryCols+` FROM inbox_entries
		 WHERE id = $1 AND accepted_at IS NULL`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *RepoPG) ListForHospital(ctx context.Context, hospital string, limit, offset int) ([]*InboxEntry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM inbox_entries
		 WHERE receiver_hospital = $1 AND accepted_at IS NULL`,
		hospital).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+entryCols+` FROM inbox_entries
		 WHERE receiver_hospital = $1 AND accepted_at IS NULL
		 ORDER BY staged_at DESC LIMIT $2 OFFSET $3`, hospital, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*InboxEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

// Remove consumes the entry. The row is retained so its fingerprint keeps
// claiming the record version; the AND clause makes concurrent accepts of the
// same entry race to a single winner.
func (r *RepoPG) Remove(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE inbox_entries SET accepted_at = NOW()
		 WHERE id = $1 AND accepted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}
