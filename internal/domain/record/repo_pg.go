package record

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

const recordCols = `id, hospital, doctor_id, doctor_name, patient_identifier,
	diagnosis, prescription, notes, content_version, storage_key,
	transferred_from, source_record_id, created_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.Hospital, &rec.DoctorID, &rec.DoctorName, &rec.PatientIdentifier,
		&rec.Diagnosis, &rec.Prescription, &rec.Notes, &rec.ContentVersion, &rec.StorageKey,
		&rec.TransferredFrom, &rec.SourceRecordID, &rec.CreatedAt,
	)
	return &rec, err
}

func (r *RepoPG) Create(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx,
		`INSERT INTO records (id, hospital, doctor_id, doctor_name, patient_identifier,
			diagnosis, prescription, notes, content_version, storage_key,
			transferred_from, source_record_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		rec.ID, rec.Hospital, rec.DoctorID, rec.DoctorName, rec.PatientIdentifier,
		rec.Diagnosis, rec.Prescription, rec.Notes, rec.ContentVersion, rec.StorageKey,
		rec.TransferredFrom, rec.SourceRecordID,
	).Scan(&rec.CreatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM records WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *RepoPG) ListByDoctor(ctx context.Context, doctorID string, limit, offset int) ([]*Record, int, error) {
	return r.list(ctx, `doctor_id = $1`, doctorID, limit, offset)
}

func (r *RepoPG) ListByPatient(ctx context.Context, patientIdentifier string, limit, offset int) ([]*Record, int, error) {
	return r.list(ctx, `patient_identifier = $1`, patientIdentifier, limit, offset)
}

func (r *RepoPG) list(ctx context.Context, where string, arg interface{}, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM records WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM records WHERE `+where+`
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
