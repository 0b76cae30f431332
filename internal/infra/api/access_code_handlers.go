package api

import (
	"net/http"

	"agro-advisory/internal/infra/logging"
)

type checkCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

type consumeAdminRequest struct {
	Code      string `json:"code" validate:"required"`
	FarmerUID string `json:"farmerUid" validate:"required"`
	Email     string `json:"email"`
}

func (s *Server) handleAccessCodeCheck(w http.ResponseWriter, r *http.Request) {
	var req checkCodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status, err := s.codes.Check(r.Context(), req.Code)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("access code check failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleConsumeClient(w http.ResponseWriter, r *http.Request) {
	var req checkCodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller, ok := CallerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}
	res, err := s.codes.Consume(r.Context(), req.Code, caller.UID, caller.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleConsumeAdmin(w http.ResponseWriter, r *http.Request) {
	var req consumeAdminRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.codes.Consume(r.Context(), req.Code, req.FarmerUID, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
