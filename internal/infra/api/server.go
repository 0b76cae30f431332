package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"agro-advisory/internal/config"
	"agro-advisory/internal/domain/ports/adapter"
	redisinfra "agro-advisory/internal/infra/redis"
	"agro-advisory/internal/usecase"
)

// Server wires the HTTP surface: public signup helpers, bearer-guarded
// farmer routes, operator routes behind the admin secret, and the
// payment verification bridge.
type Server struct {
	codes    usecase.AccessCodeUseCase
	subs     usecase.SubscriptionUseCase
	payments usecase.PaymentUseCase
	advisory usecase.AdvisoryUseCase
	farmers  usecase.FarmerUseCase

	identity adapter.IdentityProvider
	weather  adapter.WeatherProvider
	limiter  *redisinfra.RateLimiter

	cfg *config.Config
	log *zerolog.Logger
}

func NewServer(
	codes usecase.AccessCodeUseCase,
	subs usecase.SubscriptionUseCase,
	payments usecase.PaymentUseCase,
	advisory usecase.AdvisoryUseCase,
	farmers usecase.FarmerUseCase,
	identity adapter.IdentityProvider,
	weather adapter.WeatherProvider,
	limiter *redisinfra.RateLimiter,
	cfg *config.Config,
	log *zerolog.Logger,
) *Server {
	return &Server{
		codes:    codes,
		subs:     subs,
		payments: payments,
		advisory: advisory,
		farmers:  farmers,
		identity: identity,
		weather:  weather,
		limiter:  limiter,
		cfg:      cfg,
		log:      log,
	}
}

// Routes builds the router. Verification sits outside the CORS-wrapped
// group on purpose: its origin policy is an explicit allow-list with a
// hard 403, not a browser-enforced preflight.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(TraceID)
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Secret"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(Timeout(60 * time.Second))

		// Public signup helpers.
		r.Post("/access-code", s.handleAccessCodeCheck)
		r.Get("/paystack/config", s.handlePaystackConfig)
		r.Post("/paystack", s.handlePaymentInitiate)
		r.With(s.verifyOriginGuard).Post("/paystack/verify", s.handlePaymentVerify)

		// Farmer routes: bearer token resolves the caller.
		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(s.identity))

			r.Post("/access-code/consume-client", s.handleConsumeClient)
			r.Get("/farmer", s.handleFarmerGet)
			r.Put("/farmer", s.handleFarmerUpsert)
			r.Get("/subscription/status", s.handleSubscriptionStatus)
			r.Post("/admin/delete-farmer-client", s.handleDeleteSelf)
			r.Get("/advice/history", s.handleAdvisoryHistory)
		})

		// Advisory generation takes an optional bearer token: identified
		// callers get profile fallback and history, anonymous callers get
		// advice from the request body alone.
		r.Group(func(r chi.Router) {
			r.Use(OptionalBearerAuth(s.identity))
			r.Use(RateLimit(s.limiter, s.cfg.RateLimit.PerMinute))
			r.Post("/advice", s.handleCropAdvice)
			r.Post("/fragility", s.handleFragility)
		})

		// Weather proxy, rate limited per remote addr.
		r.With(RateLimit(s.limiter, s.cfg.RateLimit.PerMinute)).Post("/weather", s.handleWeather)

		// Operator routes.
		r.Group(func(r chi.Router) {
			r.Use(AdminSecret(s.cfg.Admin.Secret))
			r.Post("/access-code/consume", s.handleConsumeAdmin)
			r.Post("/admin/delete-farmer", s.handleDeleteFarmer)
		})
	})

	return r
}

// verifyOriginGuard rejects browser calls from origins outside the
// allow-list before any provider traffic happens. Non-browser callers
// (no Origin header) pass through.
func (s *Server) verifyOriginGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && !s.originAllowed(origin) {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "origin not allowed"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.cfg.CORS.AllowedOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
