package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicapp/clinicapp/internal/platform/db"
	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, file_number, first_name, last_name, national_id, birth_date,
	gender, phone, address, note,
	created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func (r *repoPG) scan(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FileNumber, &p.FirstName, &p.LastName, &p.NationalID, &p.BirthDate,
		&p.Gender, &p.Phone, &p.Address, &p.Note,
		&p.CreatedAt, &p.CreatedBy, &p.UpdatedAt, &p.UpdatedBy, &p.IsDeleted, &p.DeletedAt, &p.DeletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, validation.ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, file_number, first_name, last_name, national_id, birth_date,
			gender, phone, address, note, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.FileNumber, p.FirstName, p.LastName, p.NationalID, p.BirthDate,
		p.Gender, p.Phone, p.Address, p.Note, p.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1 AND is_deleted = FALSE`, id))
}

func (r *repoPG) GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByFileNumber(ctx context.Context, fileNumber string) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE file_number = $1 AND is_deleted = FALSE`, fileNumber))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET first_name=$2, last_name=$3, national_id=$4, birth_date=$5,
			gender=$6, phone=$7, address=$8, note=$9, updated_at=NOW(), updated_by=$10
		WHERE id = $1 AND is_deleted = FALSE`,
		p.ID, p.FirstName, p.LastName, p.NationalID, p.BirthDate,
		p.Gender, p.Phone, p.Address, p.Note, p.UpdatedBy)
	return err
}

func (r *repoPG) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET is_deleted=TRUE, deleted_at=NOW(), deleted_by=$2, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return validation.ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE is_deleted = FALSE`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient WHERE is_deleted = FALSE
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) SearchByName(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + query + "%"
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM patient
		WHERE is_deleted = FALSE
		  AND (first_name ILIKE $1 OR last_name ILIKE $1 OR file_number = $2 OR national_id = $2)`,
		pattern, query).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE is_deleted = FALSE
		  AND (first_name ILIKE $1 OR last_name ILIKE $1 OR file_number = $2 OR national_id = $2)
		ORDER BY last_name, first_name LIMIT $3 OFFSET $4`,
		pattern, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var items []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
