package triage

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

const triageCols = `id, patient_id, reception_id, chief_complaint,
	heart_rate, respiratory_rate, systolic_bp, diastolic_bp, temperature,
	oxygen_saturation, glasgow_coma_score, pain_scale, esi_level, nurse_id, triage_time,
	created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func (r *repoPG) scan(row pgx.Row) (*TriageRecord, error) {
	var t TriageRecord
	err := row.Scan(&t.ID, &t.PatientID, &t.ReceptionID, &t.ChiefComplaint,
		&t.HeartRate, &t.RespiratoryRate, &t.SystolicBP, &t.DiastolicBP, &t.Temperature,
		&t.OxygenSaturation, &t.GlasgowComaScore, &t.PainScale, &t.ESILevel, &t.NurseID, &t.TriageTime,
		&t.CreatedAt, &t.CreatedBy, &t.UpdatedAt, &t.UpdatedBy, &t.IsDeleted, &t.DeletedAt, &t.DeletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, validation.ErrNotFound
	}
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *TriageRecord) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO triage_record (id, patient_id, reception_id, chief_complaint,
			heart_rate, respiratory_rate, systolic_bp, diastolic_bp, temperature,
			oxygen_saturation, glasgow_coma_score, pain_scale, esi_level, nurse_id, triage_time, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		t.ID, t.PatientID, t.ReceptionID, t.ChiefComplaint,
		t.HeartRate, t.RespiratoryRate, t.SystolicBP, t.DiastolicBP, t.Temperature,
		t.OxygenSaturation, t.GlasgowComaScore, t.PainScale, t.ESILevel, t.NurseID, t.TriageTime, t.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*TriageRecord, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+triageCols+` FROM triage_record WHERE id = $1 AND is_deleted = FALSE`, id))
}

func (r *repoPG) GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*TriageRecord, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+triageCols+` FROM triage_record WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, t *TriageRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE triage_record SET chief_complaint=$2, esi_level=$3, updated_at=NOW(), updated_by=$4
		WHERE id = $1 AND is_deleted = FALSE`,
		t.ID, t.ChiefComplaint, t.ESILevel, t.UpdatedBy)
	return err
}

func (r *repoPG) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE triage_record SET is_deleted=TRUE, deleted_at=NOW(), deleted_by=$2, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return validation.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TriageRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM triage_record WHERE patient_id = $1 AND is_deleted = FALSE`,
		patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+triageCols+` FROM triage_record
		 WHERE patient_id = $1 AND is_deleted = FALSE
		 ORDER BY triage_time DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) ListByLevel(ctx context.Context, level, limit, offset int) ([]*TriageRecord, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM triage_record WHERE esi_level = $1 AND is_deleted = FALSE`,
		level).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+triageCols+` FROM triage_record
		 WHERE esi_level = $1 AND is_deleted = FALSE
		 ORDER BY triage_time DESC LIMIT $2 OFFSET $3`, level, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*TriageRecord, int, error) {
	var items []*TriageRecord
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
