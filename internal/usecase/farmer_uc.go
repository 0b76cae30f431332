package usecase

import (
	"context"
	"errors"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/adapter"
	"agro-advisory/internal/domain/ports/repository"
)

// Compile-time check
var _ FarmerUseCase = (*farmerUC)(nil)

// DeleteResult reports which halves of the removal saga completed.
type DeleteResult struct {
	AuthDeleted bool `json:"authDeleted"`
	DocDeleted  bool `json:"docDeleted"`
}

// ProfileUpdate carries the editable profile fields. Subscription fields
// are never writable through this path.
type ProfileUpdate struct {
	Email    string
	Crops    []string
	State    string
	LGA      string
	Language string
}

type FarmerUseCase interface {
	// UpsertProfile creates or updates the profile document for a uid.
	UpsertProfile(ctx context.Context, uid string, up ProfileUpdate) (*model.Farmer, error)
	Get(ctx context.Context, uid string) (*model.Farmer, error)
	// Delete removes the farmer everywhere. The identity account delete
	// is best-effort compensation; the profile row delete is the hard
	// half and its failure fails the call.
	Delete(ctx context.Context, uid string) (*DeleteResult, error)
}

type farmerUC struct {
	farmers  repository.FarmerRepository
	identity adapter.IdentityProvider
}

func NewFarmerUseCase(farmers repository.FarmerRepository, identity adapter.IdentityProvider) *farmerUC {
	return &farmerUC{farmers: farmers, identity: identity}
}

func (u *farmerUC) UpsertProfile(ctx context.Context, uid string, up ProfileUpdate) (*model.Farmer, error) {
	f, err := u.farmers.FindByUID(ctx, repository.NoTX, uid)
	if errors.Is(err, domain.ErrNotFound) {
		f, err = model.NewFarmer(uid, up.Email)
	}
	if err != nil {
		return nil, err
	}
	if up.Email != "" {
		f.Email = up.Email
	}
	if up.Crops != nil {
		f.Crops = up.Crops
	}
	if up.State != "" {
		f.State = up.State
	}
	if up.LGA != "" {
		f.LGA = up.LGA
	}
	if up.Language != "" {
		f.Language = up.Language
	}
	if err := u.farmers.Save(ctx, repository.NoTX, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (u *farmerUC) Get(ctx context.Context, uid string) (*model.Farmer, error) {
	return u.farmers.FindByUID(ctx, repository.NoTX, uid)
}

func (u *farmerUC) Delete(ctx context.Context, uid string) (*DeleteResult, error) {
	if uid == "" {
		return nil, domain.ErrInvalidArgument
	}
	res := &DeleteResult{}
	if err := u.identity.DeleteUser(ctx, uid); err == nil {
		res.AuthDeleted = true
	}
	if err := u.farmers.Delete(ctx, repository.NoTX, uid); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Nothing to remove counts as removed.
			res.DocDeleted = true
			return res, nil
		}
		return res, err
	}
	res.DocDeleted = true
	return res, nil
}
