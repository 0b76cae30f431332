package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/repository"
	"agro-advisory/internal/infra/metrics"
)

// Compile-time check
var _ AccessCodeUseCase = (*accessCodeUC)(nil)

// CodeStatus is the read-only view of the shared code.
type CodeStatus struct {
	Valid    bool `json:"valid"`
	Uses     int  `json:"uses"`
	MaxUses  int  `json:"maxUses"`
	UsesLeft int  `json:"usesLeft"`
}

// ConsumeResult reports the counter state after a redemption.
type ConsumeResult struct {
	Uses      int  `json:"uses"`
	MaxUses   int  `json:"maxUses"`
	UsesLeft  int  `json:"usesLeft"`
	Duplicate bool `json:"duplicate,omitempty"`
}

type AccessCodeUseCase interface {
	// Check is a pure read: it never mutates the counter and reports an
	// unknown or exhausted code as invalid rather than erroring.
	Check(ctx context.Context, code string) (*CodeStatus, error)
	// Consume atomically redeems the code for one farmer. The cap check
	// and the increment happen under one row lock; a repeat redemption by
	// the same farmer returns the current counts without incrementing.
	Consume(ctx context.Context, code, farmerUID, email string) (*ConsumeResult, error)
}

type accessCodeUC struct {
	codes   repository.AccessCodeRepository
	farmers repository.FarmerRepository
	tm      repository.TransactionManager
}

func NewAccessCodeUseCase(codes repository.AccessCodeRepository, farmers repository.FarmerRepository, tm repository.TransactionManager) *accessCodeUC {
	return &accessCodeUC{codes: codes, farmers: farmers, tm: tm}
}

func (u *accessCodeUC) Check(ctx context.Context, code string) (*CodeStatus, error) {
	ac, err := u.codes.Get(ctx, repository.NoTX, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &CodeStatus{Valid: false}, nil
		}
		return nil, err
	}
	if ac.Exhausted() {
		return &CodeStatus{Valid: false, Uses: ac.Uses, MaxUses: ac.MaxUses}, nil
	}
	return &CodeStatus{Valid: true, Uses: ac.Uses, MaxUses: ac.MaxUses, UsesLeft: ac.MaxUses - ac.Uses}, nil
}

func (u *accessCodeUC) Consume(ctx context.Context, code, farmerUID, email string) (*ConsumeResult, error) {
	if code == "" || farmerUID == "" {
		return nil, domain.ErrInvalidArgument
	}

	var res *ConsumeResult
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ac, err := u.codes.GetForUpdate(ctx, tx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrCodeInvalid
			}
			return err
		}

		// Same farmer again: the earlier redemption stands, nothing moves.
		if already, err := u.codes.HasUse(ctx, tx, code, farmerUID); err != nil {
			return err
		} else if already {
			res = &ConsumeResult{Uses: ac.Uses, MaxUses: ac.MaxUses, UsesLeft: ac.MaxUses - ac.Uses, Duplicate: true}
			return nil
		}

		if ac.Exhausted() {
			return domain.ErrCodeExpired
		}

		now := time.Now()
		ac.Uses++
		ac.LastUsed = &now
		if err := u.codes.Save(ctx, tx, ac); err != nil {
			return err
		}
		if err := u.codes.RecordUse(ctx, tx, &model.AccessCodeUse{
			Code:      code,
			FarmerUID: farmerUID,
			Email:     email,
			UsedAt:    now,
		}); err != nil {
			return err
		}
		if err := u.grantBypass(ctx, tx, farmerUID, email); err != nil {
			return err
		}

		res = &ConsumeResult{Uses: ac.Uses, MaxUses: ac.MaxUses, UsesLeft: ac.MaxUses - ac.Uses}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCodeInvalid):
			metrics.IncAccessCodeRedemption("invalid")
		case errors.Is(err, domain.ErrCodeExpired):
			metrics.IncAccessCodeRedemption("expired")
		}
		return nil, err
	}

	if res.Duplicate {
		metrics.IncAccessCodeRedemption("duplicate")
	} else {
		metrics.IncAccessCodeRedemption("consumed")
	}
	metrics.SetAccessCodeUses(res.Uses)
	return res, nil
}

// grantBypass flips the farmer's accessCodeUsed flag in the same
// transaction as the counter. A farmer without a profile row yet gets one.
func (u *accessCodeUC) grantBypass(ctx context.Context, tx repository.Tx, uid, email string) error {
	used := true
	err := u.farmers.MergeSubscription(ctx, tx, uid, repository.SubscriptionMerge{AccessCodeUsed: &used})
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	f, err := model.NewFarmer(uid, email)
	if err != nil {
		return err
	}
	f.AccessCodeUsed = true
	return u.farmers.Save(ctx, tx, f)
}
