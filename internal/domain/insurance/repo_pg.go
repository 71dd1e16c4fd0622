package insurance

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

// -- Plans --

type planRepoPG struct{ pool *pgxpool.Pool }

func NewPlanRepoPG(pool *pgxpool.Pool) PlanRepository { return &planRepoPG{pool: pool} }

func (r *planRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const planCols = `id, name, payor_name, coverage_percent, deductible, copay, coverage_override,
	is_supplementary, is_active,
	created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func (r *planRepoPG) scan(row pgx.Row) (*InsurancePlan, error) {
	var p InsurancePlan
	err := row.Scan(&p.ID, &p.Name, &p.PayorName, &p.CoveragePercent, &p.Deductible, &p.Copay,
		&p.CoverageOverride, &p.IsSupplementary, &p.IsActive,
		&p.CreatedAt, &p.CreatedBy, &p.UpdatedAt, &p.UpdatedBy, &p.IsDeleted, &p.DeletedAt, &p.DeletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, validation.ErrNotFound
	}
	return &p, err
}

func (r *planRepoPG) Create(ctx context.Context, p *InsurancePlan) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO insurance_plan (id, name, payor_name, coverage_percent, deductible, copay,
			coverage_override, is_supplementary, is_active, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Name, p.PayorName, p.CoveragePercent, p.Deductible, p.Copay,
		p.CoverageOverride, p.IsSupplementary, p.IsActive, p.CreatedBy)
	return err
}

func (r *planRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*InsurancePlan, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM insurance_plan WHERE id = $1 AND is_deleted = FALSE`, id))
}

func (r *planRepoPG) GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*InsurancePlan, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM insurance_plan WHERE id = $1`, id))
}

func (r *planRepoPG) Update(ctx context.Context, p *InsurancePlan) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE insurance_plan SET name=$2, payor_name=$3, coverage_percent=$4, deductible=$5,
			copay=$6, coverage_override=$7, is_supplementary=$8, is_active=$9,
			updated_at=NOW(), updated_by=$10
		WHERE id = $1 AND is_deleted = FALSE`,
		p.ID, p.Name, p.PayorName, p.CoveragePercent, p.Deductible,
		p.Copay, p.CoverageOverride, p.IsSupplementary, p.IsActive, p.UpdatedBy)
	return err
}

func (r *planRepoPG) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE insurance_plan SET is_deleted=TRUE, deleted_at=NOW(), deleted_by=$2, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return validation.ErrNotFound
	}
	return nil
}

func (r *planRepoPG) List(ctx context.Context, limit, offset int) ([]*InsurancePlan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM insurance_plan WHERE is_deleted = FALSE`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+planCols+` FROM insurance_plan WHERE is_deleted = FALSE
		 ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*InsurancePlan
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// -- Patient links --

type patientInsuranceRepoPG struct{ pool *pgxpool.Pool }

func NewPatientInsuranceRepoPG(pool *pgxpool.Pool) PatientInsuranceRepository {
	return &patientInsuranceRepoPG{pool: pool}
}

func (r *patientInsuranceRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientInsuranceCols = `id, patient_id, plan_id, policy_number, is_primary, valid_from, valid_to,
	created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func (r *patientInsuranceRepoPG) scan(row pgx.Row) (*PatientInsurance, error) {
	var pi PatientInsurance
	err := row.Scan(&pi.ID, &pi.PatientID, &pi.PlanID, &pi.PolicyNumber, &pi.IsPrimary,
		&pi.ValidFrom, &pi.ValidTo,
		&pi.CreatedAt, &pi.CreatedBy, &pi.UpdatedAt, &pi.UpdatedBy, &pi.IsDeleted, &pi.DeletedAt, &pi.DeletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, validation.ErrNotFound
	}
	return &pi, err
}

func (r *patientInsuranceRepoPG) Create(ctx context.Context, pi *PatientInsurance) error {
	pi.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_insurance (id, patient_id, plan_id, policy_number, is_primary,
			valid_from, valid_to, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		pi.ID, pi.PatientID, pi.PlanID, pi.PolicyNumber, pi.IsPrimary,
		pi.ValidFrom, pi.ValidTo, pi.CreatedBy)
	return err
}

func (r *patientInsuranceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PatientInsurance, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientInsuranceCols+` FROM patient_insurance WHERE id = $1 AND is_deleted = FALSE`, id))
}

func (r *patientInsuranceRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PatientInsurance, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientInsuranceCols+` FROM patient_insurance
		 WHERE patient_id = $1 AND is_deleted = FALSE
		 ORDER BY is_primary DESC, created_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PatientInsurance
	for rows.Next() {
		pi, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, pi)
	}
	return items, rows.Err()
}

func (r *patientInsuranceRepoPG) GetPrimaryByPatient(ctx context.Context, patientID uuid.UUID) (*PatientInsurance, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientInsuranceCols+` FROM patient_insurance
		 WHERE patient_id = $1 AND is_primary = TRUE AND is_deleted = FALSE`, patientID))
}

func (r *patientInsuranceRepoPG) SetPrimary(ctx context.Context, patientID, id, updatedBy uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)
		if _, err := c.Exec(ctx, `
			UPDATE patient_insurance SET is_primary=FALSE, updated_at=NOW(), updated_by=$2
			WHERE patient_id = $1 AND is_primary = TRUE AND is_deleted = FALSE`,
			patientID, updatedBy); err != nil {
			return err
		}
		tag, err := c.Exec(ctx, `
			UPDATE patient_insurance SET is_primary=TRUE, updated_at=NOW(), updated_by=$3
			WHERE id = $1 AND patient_id = $2 AND is_deleted = FALSE`,
			id, patientID, updatedBy)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return validation.ErrNotFound
		}
		return nil
	})
}

func (r *patientInsuranceRepoPG) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient_insurance SET is_deleted=TRUE, deleted_at=NOW(), deleted_by=$2, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return validation.ErrNotFound
	}
	return nil
}
