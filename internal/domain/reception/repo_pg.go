package reception

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

const receptionCols = `id, patient_id, reception_number, status, visit_date,
	total_amount, insurer_share, patient_share,
	created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func (r *repoPG) scan(row pgx.Row) (*Reception, error) {
	var rec Reception
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.ReceptionNumber, &rec.Status, &rec.VisitDate,
		&rec.TotalAmount, &rec.InsurerShare, &rec.PatientShare,
		&rec.CreatedAt, &rec.CreatedBy, &rec.UpdatedAt, &rec.UpdatedBy,
		&rec.IsDeleted, &rec.DeletedAt, &rec.DeletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, validation.ErrNotFound
	}
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *Reception) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO reception (id, patient_id, reception_number, status, visit_date,
			total_amount, insurer_share, patient_share, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.PatientID, rec.ReceptionNumber, rec.Status, rec.VisitDate,
		rec.TotalAmount, rec.InsurerShare, rec.PatientShare, rec.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Reception, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+receptionCols+` FROM reception WHERE id = $1 AND is_deleted = FALSE`, id))
}

func (r *repoPG) GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*Reception, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+receptionCols+` FROM reception WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rec *Reception) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE reception SET status=$2, visit_date=$3, total_amount=$4, insurer_share=$5,
			patient_share=$6, updated_at=NOW(), updated_by=$7
		WHERE id = $1 AND is_deleted = FALSE`,
		rec.ID, rec.Status, rec.VisitDate, rec.TotalAmount, rec.InsurerShare,
		rec.PatientShare, rec.UpdatedBy)
	return err
}

func (r *repoPG) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE reception SET is_deleted=TRUE, deleted_at=NOW(), deleted_by=$2, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return validation.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Reception, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM reception WHERE patient_id = $1 AND is_deleted = FALSE`,
		patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+receptionCols+` FROM reception
		 WHERE patient_id = $1 AND is_deleted = FALSE
		 ORDER BY visit_date DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Reception, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM reception WHERE is_deleted = FALSE`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+receptionCols+` FROM reception WHERE is_deleted = FALSE
		 ORDER BY visit_date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Reception, int, error) {
	var items []*Reception
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

// -- Charges --

type chargeRepoPG struct{ pool *pgxpool.Pool }

func NewChargeRepoPG(pool *pgxpool.Pool) ChargeRepository { return &chargeRepoPG{pool: pool} }

func (r *chargeRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const chargeCols = `id, reception_id, service_id, category_id, description, amount, created_at, created_by`

func (r *chargeRepoPG) Create(ctx context.Context, c *ServiceCharge) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO service_charge (id, reception_id, service_id, category_id, description, amount, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.ReceptionID, c.ServiceID, c.CategoryID, c.Description, c.Amount, c.CreatedBy)
	return err
}

func (r *chargeRepoPG) ListByReception(ctx context.Context, receptionID uuid.UUID) ([]*ServiceCharge, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+chargeCols+` FROM service_charge WHERE reception_id = $1 ORDER BY created_at`,
		receptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ServiceCharge
	for rows.Next() {
		var c ServiceCharge
		if err := rows.Scan(&c.ID, &c.ReceptionID, &c.ServiceID, &c.CategoryID,
			&c.Description, &c.Amount, &c.CreatedAt, &c.CreatedBy); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

func (r *chargeRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM service_charge WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return validation.ErrNotFound
	}
	return nil
}
