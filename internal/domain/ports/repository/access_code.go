package repository

import (
	"context"

	"agro-advisory/internal/domain/model"
)

// AccessCodeRepository manages the shared promotional code row and its
// per-consumer audit records.
type AccessCodeRepository interface {
	// Get reads the code row. ErrNotFound when it was never seeded.
	Get(ctx context.Context, tx Tx, code string) (*model.AccessCode, error)
	// GetForUpdate reads the code row with a row lock; must be called
	// inside a transaction. This is what makes the cap check-and-increment
	// atomic under concurrent redemptions.
	GetForUpdate(ctx context.Context, tx Tx, code string) (*model.AccessCode, error)
	// Save upserts the code row (counter, cap, last-used stamp).
	Save(ctx context.Context, tx Tx, code *model.AccessCode) error
	// RecordUse upserts the audit record keyed by (code, farmer uid).
	RecordUse(ctx context.Context, tx Tx, use *model.AccessCodeUse) error
	// HasUse reports whether this consumer already holds an audit record.
	HasUse(ctx context.Context, tx Tx, code, farmerUID string) (bool, error)
}
