package api

import (
	"net/http"

	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/infra/logging"
)

type initiateRequest struct {
	Email string `json:"email" validate:"required,email"`
	Plan  string `json:"plan" validate:"required,oneof=monthly yearly"`
}

type verifyRequest struct {
	Reference string `json:"reference" validate:"required"`
}

type paystackConfigResponse struct {
	PublicKey string       `json:"publicKey"`
	Plans     []model.Plan `json:"plans"`
}

func (s *Server) handlePaystackConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, paystackConfigResponse{
		PublicKey: s.cfg.Payment.Paystack.PublicKey,
		Plans:     s.subs.Catalog(r.Context()),
	})
}

func (s *Server) handlePaymentInitiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.payments.Initiate(r.Context(), req.Email, model.PlanType(req.Plan))
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("payment initiate failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePaymentVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.payments.Verify(r.Context(), req.Reference)
	if err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).
			Str("reference", req.Reference).
			Msg("payment verification failed")
		writeError(w, err)
		return
	}
	logging.With(r.Context(), s.log).Info().
		Str("reference", out.ReferenceID).
		Str("email", logging.Redact(out.Email, s.cfg.Runtime.Dev)).
		Bool("replayed", out.Replayed).
		Msg("payment verified")
	writeJSON(w, http.StatusOK, out)
}
