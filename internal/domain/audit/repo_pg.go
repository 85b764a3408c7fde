package audit

import (
	"context"

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

const entryCols = `id, event_kind, sender_hospital, sender_doctor,
	receiver_hospital, record_id, protocol, key_hash, bits_exchanged, created_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.EventKind, &e.SenderHospital, &e.SenderDoctor,
		&e.ReceiverHospital, &e.RecordID, &e.Protocol, &e.KeyHash, &e.BitsExchanged, &e.CreatedAt,
	)
	return &e, err
}

func (r *RepoPG) Append(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx,
		`INSERT INTO audit_entries (id, event_kind, sender_hospital, sender_doctor,
			receiver_hospital, record_id, protocol, key_hash, bits_exchanged)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		e.ID, e.EventKind, e.SenderHospital, e.SenderDoctor,
		e.ReceiverHospital, e.RecordID, e.Protocol, e.KeyHash, e.BitsExchanged,
	).Scan(&e.CreatedAt)
}

func (r *RepoPG) ListAll(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_entries`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+entryCols+` FROM audit_entries
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
