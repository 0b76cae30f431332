package model

import (
	"math"
	"time"

	"agro-advisory/internal/domain"
)

// Farmer is the profile document for a registered farmer. The uid is owned
// by the identity provider and never changes. Subscription fields are only
// ever merged, never overwritten wholesale.
type Farmer struct {
	UID   string
	Email string

	Plan             PlanType // empty until first payment resolves a plan
	PaidAccess       bool
	AccessCodeUsed   bool
	PaymentReference string
	PaymentDate      *time.Time
	NextPaymentDate  *time.Time

	Crops    []string
	State    string
	LGA      string
	Language string

	CreatedAt time.Time
}

func NewFarmer(uid, email string) (*Farmer, error) {
	if uid == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Farmer{UID: uid, Email: email, CreatedAt: time.Now()}, nil
}

func (f *Farmer) IsZero() bool { return f == nil || f.UID == "" }

// HasActiveAccess is the single access predicate:
// accessCodeUsed OR (paidAccess AND nextPaymentDate > now).
// An access-code bypass never expires. Derived only, never stored.
func (f *Farmer) HasActiveAccess(now time.Time) bool {
	if f == nil {
		return false
	}
	if f.AccessCodeUsed {
		return true
	}
	return f.PaidAccess && f.NextPaymentDate != nil && f.NextPaymentDate.After(now)
}

// NextPaymentDate computes the expiry for a payment made at paidAt.
// Calendar arithmetic via time.AddDate: overflow days normalize forward
// (Jan 31 + 1 month lands in early March), which is the one rule this
// codebase uses everywhere.
func NextPaymentDate(plan PlanType, paidAt time.Time) time.Time {
	if plan == PlanYearly {
		return paidAt.AddDate(1, 0, 0)
	}
	return paidAt.AddDate(0, 1, 0)
}

// Proration is the informational credit for unused days of the old cycle
// when switching plans mid-cycle. It is returned to the caller, not
// refunded by the gateway.
type Proration struct {
	DaysLeft      int
	DiscountMinor int64
}

// ComputeProration applies only when the farmer already has a different
// plan with a recorded, unexpired expiry. Otherwise the zero Proration.
func ComputeProration(oldPlan PlanType, oldExpiry *time.Time, newPlan PlanType, now time.Time, catalog Catalog) Proration {
	if !oldPlan.Valid() || !newPlan.Valid() || oldPlan == newPlan {
		return Proration{}
	}
	if oldExpiry == nil || !oldExpiry.After(now) {
		return Proration{}
	}
	daysLeft := int(oldExpiry.Sub(now).Hours() / 24)
	if daysLeft < 0 {
		daysLeft = 0
	}
	price, err := catalog.Lookup(oldPlan)
	if err != nil {
		return Proration{}
	}
	unused := math.Round(float64(daysLeft) / float64(oldPlan.TotalDays()) * float64(price.PriceMajor))
	return Proration{DaysLeft: daysLeft, DiscountMinor: int64(unused) * 100}
}

// FinalCharge floors amount minus discount at zero.
func (p Proration) FinalCharge(amountMinor int64) int64 {
	if c := amountMinor - p.DiscountMinor; c > 0 {
		return c
	}
	return 0
}
