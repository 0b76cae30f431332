package api

import (
	"net/http"
	"strconv"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/infra/logging"
	"agro-advisory/internal/usecase"
)

type cropAdviceRequest struct {
	Crops    []string `json:"crops"`
	Stage    string   `json:"stage"`
	State    string   `json:"state"`
	LGA      string   `json:"lga"`
	Language string   `json:"language"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
}

type fragilityRequest struct {
	State    string  `json:"state"`
	LGA      string  `json:"lga"`
	Language string  `json:"language"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

func (s *Server) handleCropAdvice(w http.ResponseWriter, r *http.Request) {
	var req cropAdviceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var uid string
	if caller, ok := CallerFrom(r.Context()); ok {
		uid = caller.UID
	}
	result, err := s.advisory.CropAdvice(r.Context(), usecase.CropAdviceRequest{
		FarmerUID: uid,
		Crops:     req.Crops,
		Stage:     req.Stage,
		State:     req.State,
		LGA:       req.LGA,
		Language:  req.Language,
		Lat:       req.Lat,
		Lon:       req.Lon,
	})
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("crop advice failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFragility(w http.ResponseWriter, r *http.Request) {
	var req fragilityRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var uid string
	if caller, ok := CallerFrom(r.Context()); ok {
		uid = caller.UID
	}
	result, err := s.advisory.Fragility(r.Context(), usecase.FragilityRequest{
		FarmerUID: uid,
		State:     req.State,
		LGA:       req.LGA,
		Language:  req.Language,
		Lat:       req.Lat,
		Lon:       req.Lon,
	})
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("fragility assessment failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAdvisoryHistory(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	kind := model.AdvisoryKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = model.AdvisoryKindCrop
	}
	if kind != model.AdvisoryKindCrop && kind != model.AdvisoryKindFragility {
		writeError(w, domain.ErrInvalidArgument)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := s.advisory.History(r.Context(), caller.UID, kind, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type weatherRequest struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lon *float64 `json:"lon" validate:"required"`
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	if s.weather == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "weather not configured"})
		return
	}
	var req weatherRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	wx, err := s.weather.Current(r.Context(), *req.Lat, *req.Lon)
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("weather lookup failed")
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "weather unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, wx)
}
