package payment

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

// -- Gateways --

type gatewayRepoPG struct{ pool *pgxpool.Pool }

func NewGatewayRepoPG(pool *pgxpool.Pool) GatewayRepository { return &gatewayRepoPG{pool: pool} }

func (r *gatewayRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const gatewayCols = `id, name, provider, merchant_id, terminal_key, is_active, is_default,
	created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func (r *gatewayRepoPG) scan(row pgx.Row) (*PaymentGateway, error) {
	var g PaymentGateway
	err := row.Scan(&g.ID, &g.Name, &g.Provider, &g.MerchantID, &g.TerminalKey, &g.IsActive, &g.IsDefault,
		&g.CreatedAt, &g.CreatedBy, &g.UpdatedAt, &g.UpdatedBy, &g.IsDeleted, &g.DeletedAt, &g.DeletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, validation.ErrNotFound
	}
	return &g, err
}

func (r *gatewayRepoPG) Create(ctx context.Context, g *PaymentGateway) error {
	g.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payment_gateway (id, name, provider, merchant_id, terminal_key,
			is_active, is_default, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		g.ID, g.Name, g.Provider, g.MerchantID, g.TerminalKey,
		g.IsActive, g.IsDefault, g.CreatedBy)
	return err
}

func (r *gatewayRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PaymentGateway, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+gatewayCols+` FROM payment_gateway WHERE id = $1 AND is_deleted = FALSE`, id))
}

func (r *gatewayRepoPG) GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*PaymentGateway, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+gatewayCols+` FROM payment_gateway WHERE id = $1`, id))
}

func (r *gatewayRepoPG) GetDefault(ctx context.Context) (*PaymentGateway, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+gatewayCols+` FROM payment_gateway
		 WHERE is_default = TRUE AND is_deleted = FALSE`))
}

func (r *gatewayRepoPG) Update(ctx context.Context, g *PaymentGateway) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE payment_gateway SET name=$2, provider=$3, merchant_id=$4, terminal_key=$5,
			is_active=$6, updated_at=NOW(), updated_by=$7
		WHERE id = $1 AND is_deleted = FALSE`,
		g.ID, g.Name, g.Provider, g.MerchantID, g.TerminalKey, g.IsActive, g.UpdatedBy)
	return err
}

func (r *gatewayRepoPG) SetAsDefault(ctx context.Context, id, updatedBy uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)
		if _, err := c.Exec(ctx, `
			UPDATE payment_gateway SET is_default=FALSE, updated_at=NOW(), updated_by=$1
			WHERE is_default = TRUE AND is_deleted = FALSE`, updatedBy); err != nil {
			return err
		}
		tag, err := c.Exec(ctx, `
			UPDATE payment_gateway SET is_default=TRUE, updated_at=NOW(), updated_by=$2
			WHERE id = $1 AND is_deleted = FALSE`, id, updatedBy)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return validation.ErrNotFound
		}
		return nil
	})
}

func (r *gatewayRepoPG) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE payment_gateway SET is_deleted=TRUE, deleted_at=NOW(), deleted_by=$2,
			is_default=FALSE, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return validation.ErrNotFound
	}
	return nil
}

func (r *gatewayRepoPG) List(ctx context.Context, limit, offset int) ([]*PaymentGateway, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_gateway WHERE is_deleted = FALSE`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+gatewayCols+` FROM payment_gateway WHERE is_deleted = FALSE
		 ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PaymentGateway
	for rows.Next() {
		g, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, g)
	}
	return items, total, rows.Err()
}

// -- Payments --

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const paymentCols = `id, reception_id, method, amount, reference_id, status,
	created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func (r *repoPG) scan(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.ReceptionID, &p.Method, &p.Amount, &p.ReferenceID, &p.Status,
		&p.CreatedAt, &p.CreatedBy, &p.UpdatedAt, &p.UpdatedBy, &p.IsDeleted, &p.DeletedAt, &p.DeletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, validation.ErrNotFound
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payment (id, reception_id, method, amount, reference_id, status, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.ReceptionID, p.Method, p.Amount, p.ReferenceID, p.Status, p.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+paymentCols+` FROM payment WHERE id = $1 AND is_deleted = FALSE`, id))
}

func (r *repoPG) GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+paymentCols+` FROM payment WHERE id = $1`, id))
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, updatedBy uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE payment SET status=$2, updated_at=NOW(), updated_by=$3
		WHERE id = $1 AND is_deleted = FALSE`, id, status, updatedBy)
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
		UPDATE payment SET is_deleted=TRUE, deleted_at=NOW(), deleted_by=$2, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE`, id, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return validation.ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByReception(ctx context.Context, receptionID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+paymentCols+` FROM payment
		 WHERE reception_id = $1 AND is_deleted = FALSE
		 ORDER BY created_at`, receptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Payment
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
