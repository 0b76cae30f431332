package postgres

import (
	"errors"

	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.AccessCodeRepository = (*accessCodeRepo)(nil)

type accessCodeRepo struct {
	pool *pgxpool.Pool
}

func NewAccessCodeRepo(pool *pgxpool.Pool) repository.AccessCodeRepository {
	return &accessCodeRepo{pool: pool}
}

const accessCodeCols = `code, uses, max_uses, last_used`

func (r *accessCodeRepo) Get(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	return r.get(ctx, tx, code, false)
}

// GetForUpdate locks the code row for the rest of the transaction. The cap
// check and increment both happen under this lock, so two concurrent
// redemptions can never both pass the check.
func (r *accessCodeRepo) GetForUpdate(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	if tx == nil {
		return nil, domain.ErrInvalidExecContext
	}
	return r.get(ctx, tx, code, true)
}

func (r *accessCodeRepo) get(ctx context.Context, tx repository.Tx, code string, forUpdate bool) (*model.AccessCode, error) {
	q := `SELECT ` + accessCodeCols + ` FROM access_codes WHERE code = $1`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	var ac model.AccessCode
	if err := row.Scan(&ac.Code, &ac.Uses, &ac.MaxUses, &ac.LastUsed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &ac, nil
}

func (r *accessCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.AccessCode) error {
	const q = `
INSERT INTO access_codes (code, uses, max_uses, last_used)
VALUES ($1, $2, $3, $4)
ON CONFLICT (code) DO UPDATE SET
  uses = EXCLUDED.uses,
  max_uses = EXCLUDED.max_uses,
  last_used = EXCLUDED.last_used;
`
	_, err := execSQL(ctx, r.pool, tx, q, code.Code, code.Uses, code.MaxUses, code.LastUsed)
	return err
}

func (r *accessCodeRepo) RecordUse(ctx context.Context, tx repository.Tx, use *model.AccessCodeUse) error {
	const q = `
INSERT INTO access_code_uses (code, farmer_uid, email, used_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (code, farmer_uid) DO UPDATE SET
  email = EXCLUDED.email,
  used_at = EXCLUDED.used_at;
`
	_, err := execSQL(ctx, r.pool, tx, q, use.Code, use.FarmerUID, use.Email, use.UsedAt)
	return err
}

func (r *accessCodeRepo) HasUse(ctx context.Context, tx repository.Tx, code, farmerUID string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM access_code_uses WHERE code = $1 AND farmer_uid = $2);`
	row, err := pickRow(ctx, r.pool, tx, q, code, farmerUID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
