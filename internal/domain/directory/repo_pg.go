package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medxfer/medxfer/internal/platform/db"
)

// ErrNotFound is returned when no hospital matches the requested name.
var ErrNotFound = errors.New("hospital not found")

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type HospitalRepoPG struct {
	pool *pgxpool.Pool
}

func NewHospitalRepoPG(pool *pgxpool.Pool) *HospitalRepoPG {
	return &HospitalRepoPG{pool: pool}
}

func (r *HospitalRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const hospitalCols = `id, name, city, is_active, created_at`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Name, &h.City, &h.IsActive, &h.CreatedAt)
	return &h, err
}

func (r *HospitalRepoPG) Create(ctx context.Context, h *Hospital) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return r.conn(ctx).QueryRow(ctx,
		`INSERT INTO hospitals (id, name, city, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		h.ID, h.Name, h.City, h.IsActive,
	).Scan(&h.CreatedAt)
}

func (r *HospitalRepoPG) GetByName(ctx context.Context, name string) (*Hospital, error) {
	h, err := scanHospital(r.conn(ctx).QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM hospitals WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (r *HospitalRepoPG) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM hospitals WHERE is_active`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+hospitalCols+` FROM hospitals WHERE is_active
		 ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, rows.Err()
}
