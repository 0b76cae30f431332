package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/repository"
)

var _ repository.AdvisoryRepository = (*advisoryRepo)(nil)

type advisoryRepo struct {
	pool *pgxpool.Pool
}

func NewAdvisoryRepo(pool *pgxpool.Pool) repository.AdvisoryRepository {
	return &advisoryRepo{pool: pool}
}

func (r *advisoryRepo) Save(ctx context.Context, tx repository.Tx, a *model.Advisory) error {
	if a.ID == "" {
		// ULIDs sort by creation time, which keeps history listing cheap.
		// ulid.Make draws from a shared monotonic source, so two writes in
		// the same millisecond still get distinct ids.
		a.ID = ulid.Make().String()
	}
	payload, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("marshal advisory payload: %w", err)
	}
	const q = `
INSERT INTO advisories (id, farmer_uid, kind, structured, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err = execSQL(ctx, r.pool, tx, q, a.ID, a.FarmerUID, string(a.Kind), a.Result.Structured, payload, a.CreatedAt)
	return err
}

func (r *advisoryRepo) ListByFarmer(ctx context.Context, tx repository.Tx, farmerUID string, kind model.AdvisoryKind, limit int) ([]*model.Advisory, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT id, farmer_uid, kind, structured, payload, created_at
  FROM advisories
 WHERE farmer_uid = $1 AND kind = $2
 ORDER BY created_at DESC
 LIMIT $3;
`
	rows, err := pickRows(ctx, r.pool, tx, q, farmerUID, string(kind), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Advisory
	for rows.Next() {
		var (
			a       model.Advisory
			kindStr string
			payload []byte
		)
		if err := rows.Scan(&a.ID, &a.FarmerUID, &kindStr, &a.Result.Structured, &payload, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Kind = model.AdvisoryKind(kindStr)
		structured := a.Result.Structured
		if err := json.Unmarshal(payload, &a.Result); err != nil {
			return nil, fmt.Errorf("unmarshal advisory payload: %w", err)
		}
		a.Result.Structured = structured
		out = append(out, &a)
	}
	return out, rows.Err()
}
