package repository

import (
	"context"

	"agro-advisory/internal/domain/model"
)

// AdvisoryRepository keeps the per-farmer advisory history. Writes are
// best-effort from the caller's point of view: a failed history write must
// never fail the advisory request itself.
type AdvisoryRepository interface {
	Save(ctx context.Context, tx Tx, a *model.Advisory) error
	// ListByFarmer returns the latest advisories of a kind, newest first.
	ListByFarmer(ctx context.Context, tx Tx, farmerUID string, kind model.AdvisoryKind, limit int) ([]*model.Advisory, error)
}
