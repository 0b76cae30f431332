package api

import (
	"net/http"
	"time"

	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/infra/logging"
	"agro-advisory/internal/usecase"
)

type upsertProfileRequest struct {
	Email    string   `json:"email" validate:"omitempty,email"`
	Crops    []string `json:"crops"`
	State    string   `json:"state"`
	LGA      string   `json:"lga"`
	Language string   `json:"language"`
}

type deleteFarmerRequest struct {
	FarmerUID string `json:"farmerUid" validate:"required"`
}

type farmerResponse struct {
	UID             string         `json:"uid"`
	Email           string         `json:"email"`
	Plan            model.PlanType `json:"plan,omitempty"`
	PaidAccess      bool           `json:"paidAccess"`
	AccessCodeUsed  bool           `json:"accessCodeUsed"`
	NextPaymentDate *time.Time     `json:"nextPaymentDate,omitempty"`
	Crops           []string       `json:"crops,omitempty"`
	State           string         `json:"state,omitempty"`
	LGA             string         `json:"lga,omitempty"`
	Language        string         `json:"language,omitempty"`
}

func toFarmerResponse(f *model.Farmer) farmerResponse {
	return farmerResponse{
		UID:             f.UID,
		Email:           f.Email,
		Plan:            f.Plan,
		PaidAccess:      f.PaidAccess,
		AccessCodeUsed:  f.AccessCodeUsed,
		NextPaymentDate: f.NextPaymentDate,
		Crops:           f.Crops,
		State:           f.State,
		LGA:             f.LGA,
		Language:        f.Language,
	}
}

func (s *Server) handleFarmerGet(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	f, err := s.farmers.Get(r.Context(), caller.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFarmerResponse(f))
}

func (s *Server) handleFarmerUpsert(w http.ResponseWriter, r *http.Request) {
	var req upsertProfileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	email := req.Email
	if email == "" {
		email = caller.Email
	}
	f, err := s.farmers.UpsertProfile(r.Context(), caller.UID, usecase.ProfileUpdate{
		Email:    email,
		Crops:    req.Crops,
		State:    req.State,
		LGA:      req.LGA,
		Language: req.Language,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFarmerResponse(f))
}

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	status, err := s.subs.Status(r.Context(), caller.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleDeleteSelf(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	res, err := s.farmers.Delete(r.Context(), caller.UID)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("farmer self-delete failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDeleteFarmer(w http.ResponseWriter, r *http.Request) {
	var req deleteFarmerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.farmers.Delete(r.Context(), req.FarmerUID)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).
			Str("farmer_uid", req.FarmerUID).
			Msg("farmer delete failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
