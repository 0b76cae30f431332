package model

import "agro-advisory/internal/domain"

// PlanType is the billing cycle a farmer subscribes to.
type PlanType string

const (
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

// Valid reports whether p is a known plan type.
func (p PlanType) Valid() bool { return p == PlanMonthly || p == PlanYearly }

// TotalDays is the nominal cycle length used by the proration formula.
func (p PlanType) TotalDays() int {
	if p == PlanYearly {
		return 365
	}
	return 30
}

// Plan is a purchasable package. PriceMajor is in major currency units
// (naira); the gateway deals in minor units (kobo).
type Plan struct {
	ID         PlanType `json:"id"`
	Label      string   `json:"label"`
	PriceMajor int64    `json:"amountNaira"`
}

// AmountMinor converts the plan price to minor currency units.
func (p Plan) AmountMinor() int64 { return p.PriceMajor * 100 }

// Catalog is the set of purchasable plans keyed by type.
type Catalog map[PlanType]Plan

// DefaultCatalog mirrors the published package price list.
func DefaultCatalog() Catalog {
	return Catalog{
		PlanMonthly: {ID: PlanMonthly, Label: "Monthly", PriceMajor: 1500},
		PlanYearly:  {ID: PlanYearly, Label: "Yearly", PriceMajor: 15000},
	}
}

// Lookup returns the plan for t or ErrUnknownPlan.
func (c Catalog) Lookup(t PlanType) (Plan, error) {
	p, ok := c[t]
	if !ok {
		return Plan{}, domain.ErrUnknownPlan
	}
	return p, nil
}
