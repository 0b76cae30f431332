package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/adapter"
	"agro-advisory/internal/domain/ports/repository"
	"agro-advisory/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// Initiate creates a provider transaction for a catalog plan and
	// returns the redirect target.
	Initiate(ctx context.Context, email string, plan model.PlanType) (*adapter.InitResult, error)
	// Verify confirms a client-reported reference with the provider and,
	// when the farmer can be resolved, merges the payment into their
	// subscription ledger. Resolution failures degrade: the payment is
	// still reported verified, only without the ledger update.
	Verify(ctx context.Context, reference string) (*model.VerifyOutcome, error)
}

type paymentUC struct {
	gateway  adapter.PaymentGateway
	identity adapter.IdentityProvider
	farmers  repository.FarmerRepository
	subs     SubscriptionUseCase
	catalog  model.Catalog

	callbackURL string
}

func NewPaymentUseCase(gateway adapter.PaymentGateway, identity adapter.IdentityProvider, farmers repository.FarmerRepository, subs SubscriptionUseCase, catalog model.Catalog, callbackURL string) *paymentUC {
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	return &paymentUC{
		gateway:     gateway,
		identity:    identity,
		farmers:     farmers,
		subs:        subs,
		catalog:     catalog,
		callbackURL: callbackURL,
	}
}

func (u *paymentUC) Initiate(ctx context.Context, email string, plan model.PlanType) (*adapter.InitResult, error) {
	p, err := u.catalog.Lookup(plan)
	if err != nil {
		return nil, err
	}
	meta := map[string]interface{}{"plan": string(plan), "email": email}
	res, err := u.gateway.Initialize(ctx, email, p.AmountMinor(), u.callbackURL, meta)
	if err != nil {
		return nil, fmt.Errorf("initialize payment: %w", err)
	}
	return res, nil
}

func (u *paymentUC) Verify(ctx context.Context, reference string) (*model.VerifyOutcome, error) {
	if reference == "" {
		return nil, domain.ErrInvalidArgument
	}

	vr, err := u.gateway.Verify(ctx, reference)
	if err != nil {
		metrics.IncPayment("failed")
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if vr.Status != "success" {
		metrics.IncPayment("failed")
		return nil, domain.ErrPaymentNotSuccessful
	}

	ev := &model.PaymentEvent{
		Reference: vr.Reference,
		Email:     vr.Email,
		Plan:      model.PlanType(vr.Plan),
		Amount:    vr.Amount,
		PaidAt:    vr.PaidAt,
	}
	out := &model.VerifyOutcome{
		Email:       ev.Email,
		PaidAt:      ev.PaidAt,
		ReferenceID: ev.Reference,
		FinalCharge: ev.Amount,
	}
	if ev.Plan.Valid() {
		out.Plan = ev.Plan
	}

	// The farmer document is keyed by identity uid, not email. When the
	// email cannot be resolved, the verification still stands and the
	// caller gets the outcome without the ledger having moved.
	uid, err := u.identity.LookupByEmail(ctx, ev.Email)
	if err != nil {
		metrics.IncPayment("verified")
		metrics.AddPaymentRevenue(ev.Amount)
		return out, nil
	}
	out.FarmerUID = uid

	farmer, err := u.farmers.FindByUID(ctx, repository.NoTX, uid)
	if errors.Is(err, domain.ErrNotFound) {
		farmer, err = u.ensureFarmer(ctx, uid, ev.Email)
	}
	if err != nil {
		return nil, err
	}

	// Replayed reference: the ledger already reflects this payment.
	if farmer.PaymentReference == ev.Reference {
		out.Replayed = true
		out.NextPaymentDate = farmer.NextPaymentDate
		metrics.IncPayment("replayed")
		return out, nil
	}

	// Proration is computed from the pre-payment state and reported as an
	// informational credit; the gateway already charged the full amount.
	pr := model.ComputeProration(farmer.Plan, farmer.NextPaymentDate, ev.Plan, time.Now(), u.catalog)
	out.ProrateDiscount = pr.DiscountMinor
	out.FinalCharge = pr.FinalCharge(ev.Amount)

	next, err := u.subs.ApplyPayment(ctx, repository.NoTX, uid, ev)
	if err != nil {
		return nil, err
	}
	if !next.IsZero() {
		out.NextPaymentDate = &next
	}

	metrics.IncPayment("verified")
	metrics.AddPaymentRevenue(ev.Amount)
	if pr.DiscountMinor > 0 {
		metrics.AddProrationDiscount(pr.DiscountMinor)
	}
	return out, nil
}

func (u *paymentUC) ensureFarmer(ctx context.Context, uid, email string) (*model.Farmer, error) {
	f, err := model.NewFarmer(uid, email)
	if err != nil {
		return nil, err
	}
	if err := u.farmers.Save(ctx, repository.NoTX, f); err != nil {
		return nil, err
	}
	return f, nil
}
