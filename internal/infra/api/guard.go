package api

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"agro-advisory/internal/domain/ports/adapter"
	"agro-advisory/internal/infra/logging"
	"agro-advisory/internal/infra/metrics"
	redisinfra "agro-advisory/internal/infra/redis"
)

type ctxKey string

const ctxCaller ctxKey = "caller"

// CallerFrom returns the verified identity placed by BearerAuth.
func CallerFrom(ctx context.Context) (*adapter.TokenInfo, bool) {
	ti, ok := ctx.Value(ctxCaller).(*adapter.TokenInfo)
	return ti, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// TraceID stamps each request with a trace id carried through the context
// and echoed back in the response header.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Trace-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Trace-Id", id)
		next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), id)))
	})
}

// RequestLog logs one line per request and feeds the HTTP metrics.
func RequestLog(log *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			metrics.ObserveHTTPRequest(route, rec.status, time.Since(start))
			logging.With(r.Context(), log).Info().
				Str("method", r.Method).
				Str("route", route).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// Recover converts panics into 500s instead of dropping the connection.
func Recover(log *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logging.With(r.Context(), log).Error().
						Interface("panic", rec).
						Str("path", r.URL.Path).
						Msg("handler panic")
					writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout bounds handler work; model calls get their own longer ceiling
// at the route level.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminSecret guards operator routes with a shared secret header.
func AdminSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeJSON(w, http.StatusForbidden, errorBody{Error: "admin access not configured"})
				return
			}
			got := r.Header.Get("X-Admin-Secret")
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerAuth verifies the Authorization bearer token with the identity
// provider and stores the caller in the request context.
func BearerAuth(identity adapter.IdentityProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hdr := r.Header.Get("Authorization")
			if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
				return
			}
			ti, err := identity.VerifyToken(r.Context(), strings.TrimSpace(hdr[7:]))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
				return
			}
			ctx := context.WithValue(r.Context(), ctxCaller, ti)
			ctx = logging.WithFarmerUID(ctx, ti.UID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalBearerAuth resolves the caller when a valid bearer token is
// sent but lets anonymous requests through. Routes using it personalize
// when they can and degrade when they cannot.
func OptionalBearerAuth(identity adapter.IdentityProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hdr := r.Header.Get("Authorization")
			if hdr == "" || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			ti, err := identity.VerifyToken(r.Context(), strings.TrimSpace(hdr[7:]))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
				return
			}
			ctx := context.WithValue(r.Context(), ctxCaller, ti)
			ctx = logging.WithFarmerUID(ctx, ti.UID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit caps a route per caller per minute. A nil limiter disables
// the guard; a limiter error fails open so Redis outages do not take the
// API down.
func RateLimit(limiter *redisinfra.RateLimiter, perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || perMinute <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := callerKey(r)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			ok, err := limiter.Allow(r.Context(), redisinfra.CallerRouteKey(caller, route), perMinute, time.Minute)
			if err == nil && !ok {
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if ti, ok := CallerFrom(r.Context()); ok {
		return ti.UID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
