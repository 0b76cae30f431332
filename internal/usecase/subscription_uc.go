package usecase

import (
	"context"
	"time"

	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/repository"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionStatus is the computed access view returned to clients.
// Active access is derived on every read; nothing here is stored.
type SubscriptionStatus struct {
	Active          bool            `json:"active"`
	Plan            model.PlanType  `json:"plan,omitempty"`
	AccessCodeUsed  bool            `json:"accessCodeUsed"`
	PaidAccess      bool            `json:"paidAccess"`
	NextPaymentDate *time.Time      `json:"nextPaymentDate,omitempty"`
}

type SubscriptionUseCase interface {
	// IsActive evaluates the access predicate for a farmer as of now.
	IsActive(ctx context.Context, farmerUID string) (bool, error)
	// Status returns the full derived access view.
	Status(ctx context.Context, farmerUID string) (*SubscriptionStatus, error)
	// ApplyPayment merges a verified payment into the farmer's ledger
	// fields and returns the new expiry. When the event carries no
	// resolvable plan, only the payment facts are merged and the expiry
	// stays untouched (zero return).
	ApplyPayment(ctx context.Context, tx repository.Tx, farmerUID string, ev *model.PaymentEvent) (time.Time, error)
	// Catalog lists the purchasable plans.
	Catalog(ctx context.Context) []model.Plan
}

type subscriptionUC struct {
	farmers repository.FarmerRepository
	catalog model.Catalog
}

func NewSubscriptionUseCase(farmers repository.FarmerRepository, catalog model.Catalog) *subscriptionUC {
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	return &subscriptionUC{farmers: farmers, catalog: catalog}
}

func (u *subscriptionUC) IsActive(ctx context.Context, farmerUID string) (bool, error) {
	f, err := u.farmers.FindByUID(ctx, repository.NoTX, farmerUID)
	if err != nil {
		return false, err
	}
	return f.HasActiveAccess(time.Now()), nil
}

func (u *subscriptionUC) Status(ctx context.Context, farmerUID string) (*SubscriptionStatus, error) {
	f, err := u.farmers.FindByUID(ctx, repository.NoTX, farmerUID)
	if err != nil {
		return nil, err
	}
	return &SubscriptionStatus{
		Active:          f.HasActiveAccess(time.Now()),
		Plan:            f.Plan,
		AccessCodeUsed:  f.AccessCodeUsed,
		PaidAccess:      f.PaidAccess,
		NextPaymentDate: f.NextPaymentDate,
	}, nil
}

func (u *subscriptionUC) ApplyPayment(ctx context.Context, tx repository.Tx, farmerUID string, ev *model.PaymentEvent) (time.Time, error) {
	paid := true
	merge := repository.SubscriptionMerge{
		PaidAccess:       &paid,
		PaymentReference: &ev.Reference,
		PaymentDate:      &ev.PaidAt,
	}
	// An expiry extension needs a known plan. A plan-less event records
	// the payment facts but must not grant an access window.
	var next time.Time
	if ev.Plan.Valid() {
		plan := ev.Plan
		next = model.NextPaymentDate(ev.Plan, ev.PaidAt)
		merge.Plan = &plan
		merge.NextPaymentDate = &next
	}
	if err := u.farmers.MergeSubscription(ctx, tx, farmerUID, merge); err != nil {
		return time.Time{}, err
	}
	return next, nil
}

func (u *subscriptionUC) Catalog(ctx context.Context) []model.Plan {
	out := make([]model.Plan, 0, len(u.catalog))
	for _, t := range []model.PlanType{model.PlanMonthly, model.PlanYearly} {
		if p, ok := u.catalog[t]; ok {
			out = append(out, p)
		}
	}
	return out
}
