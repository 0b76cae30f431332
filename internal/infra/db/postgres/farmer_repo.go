package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/repository"
)

var _ repository.FarmerRepository = (*farmerRepo)(nil)

type farmerRepo struct {
	pool *pgxpool.Pool
}

func NewFarmerRepo(pool *pgxpool.Pool) repository.FarmerRepository {
	return &farmerRepo{pool: pool}
}

const farmerCols = `uid, email, plan, paid_access, access_code_used, payment_reference,
       payment_date, next_payment_date, crops, state, lga, language, created_at`

func (r *farmerRepo) Save(ctx context.Context, tx repository.Tx, f *model.Farmer) error {
	const q = `
INSERT INTO farmers (uid, email, plan, paid_access, access_code_used, payment_reference,
                     payment_date, next_payment_date, crops, state, lga, language, created_at)
VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (uid) DO UPDATE SET
  email = EXCLUDED.email,
  crops = EXCLUDED.crops,
  state = EXCLUDED.state,
  lga = EXCLUDED.lga,
  language = EXCLUDED.language;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		f.UID, f.Email, string(f.Plan), f.PaidAccess, f.AccessCodeUsed, f.PaymentReference,
		f.PaymentDate, f.NextPaymentDate, f.Crops, f.State, f.LGA, f.Language, f.CreatedAt,
	)
	return err
}

func (r *farmerRepo) FindByUID(ctx context.Context, tx repository.Tx, uid string) (*model.Farmer, error) {
	q := `SELECT ` + farmerCols + ` FROM farmers WHERE uid = $1;`
	return r.scanOne(ctx, tx, q, uid)
}

func (r *farmerRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Farmer, error) {
	q := `SELECT ` + farmerCols + ` FROM farmers WHERE email = $1;`
	return r.scanOne(ctx, tx, q, email)
}

func (r *farmerRepo) scanOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Farmer, error) {
	row, err := pickRow(ctx, r.pool, tx, q, arg)
	if err != nil {
		return nil, err
	}
	var (
		f    model.Farmer
		plan *string
	)
	err = row.Scan(&f.UID, &f.Email, &plan, &f.PaidAccess, &f.AccessCodeUsed, &f.PaymentReference,
		&f.PaymentDate, &f.NextPaymentDate, &f.Crops, &f.State, &f.LGA, &f.Language, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if plan != nil {
		f.Plan = model.PlanType(*plan)
	}
	return &f, nil
}

// MergeSubscription writes only the fields set in the merge. This is the
// partial-update contract of ApplyPayment: unrelated profile columns stay
// untouched no matter what.
func (r *farmerRepo) MergeSubscription(ctx context.Context, tx repository.Tx, uid string, m repository.SubscriptionMerge) error {
	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if m.PaidAccess != nil {
		add("paid_access", *m.PaidAccess)
	}
	if m.AccessCodeUsed != nil {
		add("access_code_used", *m.AccessCodeUsed)
	}
	if m.Plan != nil {
		add("plan", string(*m.Plan))
	}
	if m.PaymentReference != nil {
		add("payment_reference", *m.PaymentReference)
	}
	if m.PaymentDate != nil {
		add("payment_date", *m.PaymentDate)
	}
	if m.NextPaymentDate != nil {
		add("next_payment_date", *m.NextPaymentDate)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, uid)
	q := fmt.Sprintf(`UPDATE farmers SET %s WHERE uid = $%d;`, strings.Join(sets, ", "), len(args))
	tag, err := execSQL(ctx, r.pool, tx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *farmerRepo) Delete(ctx context.Context, tx repository.Tx, uid string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM farmers WHERE uid = $1;`, uid)
	return err
}

func (r *farmerRepo) CountByAccess(ctx context.Context, tx repository.Tx, now time.Time) (int, int, error) {
	const q = `
SELECT
  COUNT(*) FILTER (WHERE access_code_used OR (paid_access AND next_payment_date > $1)),
  COUNT(*) FILTER (WHERE paid_access AND NOT access_code_used AND (next_payment_date IS NULL OR next_payment_date <= $1))
FROM farmers;
`
	row, err := pickRow(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, 0, err
	}
	var active, expired int
	if err := row.Scan(&active, &expired); err != nil {
		return 0, 0, fmt.Errorf("count farmers: %w", err)
	}
	return active, expired, nil
}
