package posterminal

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

const terminalCols = `id, name, provider, protocol, ip_address, mac_address, port, is_active, is_default,
	created_at, created_by, updated_at, updated_by, is_deleted, deleted_at, deleted_by`

func (r *repoPG) scan(row pgx.Row) (*PosTerminal, error) {
	var t PosTerminal
	err := row.Scan(&t.ID, &t.Name, &t.Provider, &t.Protocol, &t.IPAddress, &t.MACAddress, &t.Port,
		&t.IsActive, &t.IsDefault,
		&t.CreatedAt, &t.CreatedBy, &t.UpdatedAt, &t.UpdatedBy, &t.IsDeleted, &t.DeletedAt, &t.DeletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, validation.ErrNotFound
	}
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *PosTerminal) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pos_terminal (id, name, provider, protocol, ip_address, mac_address, port,
			is_active, is_default, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		t.ID, t.Name, t.Provider, t.Protocol, t.IPAddress, t.MACAddress, t.Port,
		t.IsActive, t.IsDefault, t.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*PosTerminal, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+terminalCols+` FROM pos_terminal WHERE id = $1 AND is_deleted = FALSE`, id))
}

func (r *repoPG) GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*PosTerminal, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+terminalCols+` FROM pos_terminal WHERE id = $1`, id))
}

func (r *repoPG) GetByNetworkAddress(ctx context.Context, ip string, port int) (*PosTerminal, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+terminalCols+` FROM pos_terminal
		 WHERE ip_address = $1 AND port = $2 AND is_deleted = FALSE`, ip, port))
}

func (r *repoPG) GetDefault(ctx context.Context) (*PosTerminal, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+terminalCols+` FROM pos_terminal
		 WHERE is_default = TRUE AND is_deleted = FALSE`))
}

func (r *repoPG) Update(ctx context.Context, t *PosTerminal) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE pos_terminal SET name=$2, provider=$3, protocol=$4, ip_address=$5, mac_address=$6,
			port=$7, is_active=$8, updated_at=NOW(), updated_by=$9
		WHERE id = $1 AND is_deleted = FALSE`,
		t.ID, t.Name, t.Provider, t.Protocol, t.IPAddress, t.MACAddress,
		t.Port, t.IsActive, t.UpdatedBy)
	return err
}

func (r *repoPG) SetAsDefault(ctx context.Context, id, updatedBy uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)
		if _, err := c.Exec(ctx, `
			UPDATE pos_terminal SET is_default=FALSE, updated_at=NOW(), updated_by=$1
			WHERE is_default = TRUE AND is_deleted = FALSE`, updatedBy); err != nil {
			return err
		}
		tag, err := c.Exec(ctx, `
			UPDATE pos_terminal SET is_default=TRUE, updated_at=NOW(), updated_by=$2
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

func (r *repoPG) SetActive(ctx context.Context, id uuid.UUID, active bool, updatedBy uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pos_terminal SET is_active=$2, updated_at=NOW(), updated_by=$3
		WHERE id = $1 AND is_deleted = FALSE`, id, active, updatedBy)
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
		UPDATE pos_terminal SET is_deleted=TRUE, deleted_at=NOW(), deleted_by=$2,
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

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*PosTerminal, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM pos_terminal WHERE is_deleted = FALSE`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+terminalCols+` FROM pos_terminal WHERE is_deleted = FALSE
		 ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PosTerminal
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
