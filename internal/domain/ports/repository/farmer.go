package repository

import (
	"context"
	"time"

	"agro-advisory/internal/domain/model"
)

// SubscriptionMerge is the partial update ApplyPayment writes. Only set
// pointers are written; unrelated farmer fields are never touched.
type SubscriptionMerge struct {
	PaidAccess       *bool
	AccessCodeUsed   *bool
	Plan             *model.PlanType
	PaymentReference *string
	PaymentDate      *time.Time
	NextPaymentDate  *time.Time
}

type FarmerRepository interface {
	Save(ctx context.Context, tx Tx, f *model.Farmer) error
	FindByUID(ctx context.Context, tx Tx, uid string) (*model.Farmer, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.Farmer, error)
	// MergeSubscription applies a partial subscription update.
	MergeSubscription(ctx context.Context, tx Tx, uid string, merge SubscriptionMerge) error
	Delete(ctx context.Context, tx Tx, uid string) error
	// CountByAccess splits the population into active / expired as of now.
	CountByAccess(ctx context.Context, tx Tx, now time.Time) (active, expired int, err error)
}
