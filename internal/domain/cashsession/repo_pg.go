package cashsession

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

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

const sessionCols = `id, user_id, start_time, end_time, initial_cash_amount, final_cash_amount,
	total_income, total_expense, status,
	created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func (r *repoPG) scan(row pgx.Row) (*CashSession, error) {
	var s CashSession
	err := row.Scan(&s.ID, &s.UserID, &s.StartTime, &s.EndTime, &s.InitialCashAmount, &s.FinalCashAmount,
		&s.TotalIncome, &s.TotalExpense, &s.Status,
		&s.CreatedAt, &s.CreatedBy, &s.UpdatedAt, &s.UpdatedBy, &s.IsDeleted, &s.DeletedAt, &s.DeletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, validation.ErrNotFound
	}
	return &s, err
}

func (r *repoPG) Open(ctx context.Context, s *CashSession) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)
		var active int
		if err := c.QueryRow(ctx, `
			SELECT COUNT(*) FROM cash_session
			WHERE user_id = $1 AND status = $2 AND is_deleted = FALSE`,
			s.UserID, StatusActive).Scan(&active); err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveSessionExists
		}
		s.ID = uuid.New()
		_, err := c.Exec(ctx, `
			INSERT INTO cash_session (id, user_id, start_time, initial_cash_amount,
				total_income, total_expense, status, created_by)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			s.ID, s.UserID, s.StartTime, s.InitialCashAmount,
			s.TotalIncome, s.TotalExpense, s.Status, s.CreatedBy)
		return err
	})
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*CashSession, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sessionCols+` FROM cash_session WHERE id = $1 AND is_deleted = FALSE`, id))
}

func (r *repoPG) GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*CashSession, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sessionCols+` FROM cash_session WHERE id = $1`, id))
}

func (r *repoPG) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*CashSession, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sessionCols+` FROM cash_session
		 WHERE user_id = $1 AND status = $2 AND is_deleted = FALSE`, userID, StatusActive))
}

func (r *repoPG) Update(ctx context.Context, s *CashSession) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE cash_session SET end_time=$2, final_cash_amount=$3, total_income=$4,
			total_expense=$5, status=$6, updated_at=NOW(), updated_by=$7
		WHERE id = $1 AND is_deleted = FALSE`,
		s.ID, s.EndTime, s.FinalCashAmount, s.TotalIncome, s.TotalExpense, s.Status, s.UpdatedBy)
	return err
}

func (r *repoPG) AddIncome(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.addTotal(ctx, id, "total_income", amount)
}

func (r *repoPG) AddExpense(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.addTotal(ctx, id, "total_expense", amount)
}

func (r *repoPG) addTotal(ctx context.Context, id uuid.UUID, column string, amount decimal.Decimal) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE cash_session SET `+column+` = `+column+` + $2, updated_at=NOW()
		WHERE id = $1 AND status = $3 AND is_deleted = FALSE`,
		id, amount, StatusActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return validation.ErrNotFound
	}
	return nil
}

func (r *repoPG) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE cash_session SET is_deleted=TRUE, deleted_at=NOW(), deleted_by=$2, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return validation.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*CashSession, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM cash_session WHERE user_id = $1 AND is_deleted = FALSE`,
		userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sessionCols+` FROM cash_session
		 WHERE user_id = $1 AND is_deleted = FALSE
		 ORDER BY start_time DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*CashSession
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListInRange(ctx context.Context, from, to time.Time) ([]*CashSession, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+sessionCols+` FROM cash_session
		 WHERE start_time >= $1 AND start_time < $2 AND is_deleted = FALSE
		 ORDER BY start_time`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*CashSession
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
