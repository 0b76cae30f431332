//go:build !integration

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"agro-advisory/internal/config"
	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/adapter"
	"agro-advisory/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

func testConfig() *config.Config {
	return &config.Config{
		Admin: config.AdminConfig{Secret: "test-admin-secret"},
		CORS:  config.CORSConfig{AllowedOrigins: []string{"https://app.test"}},
		Payment: config.PaymentConfig{Paystack: config.PaystackConfig{
			PublicKey: "pk_test_xyz", CallbackPath: "/signup/verify",
		}},
	}
}

// --- mock use cases ---

type mockCodesUC struct {
	usecase.AccessCodeUseCase
	checkStatus *usecase.CodeStatus
	consumeRes  *usecase.ConsumeResult
	consumeErr  error
	consumedFor string
}

func (m *mockCodesUC) Check(ctx context.Context, code string) (*usecase.CodeStatus, error) {
	return m.checkStatus, nil
}

func (m *mockCodesUC) Consume(ctx context.Context, code, farmerUID, email string) (*usecase.ConsumeResult, error) {
	m.consumedFor = farmerUID
	return m.consumeRes, m.consumeErr
}

type mockPaymentsUC struct {
	usecase.PaymentUseCase
	verifyOut *model.VerifyOutcome
	verifyErr error
}

func (m *mockPaymentsUC) Verify(ctx context.Context, reference string) (*model.VerifyOutcome, error) {
	return m.verifyOut, m.verifyErr
}

func (m *mockPaymentsUC) Initiate(ctx context.Context, email string, plan model.PlanType) (*adapter.InitResult, error) {
	return &adapter.InitResult{AuthorizationURL: "https://pay.test/x", Reference: "r1"}, nil
}

type mockSubsUC struct {
	usecase.SubscriptionUseCase
}

func (m *mockSubsUC) Catalog(ctx context.Context) []model.Plan {
	return []model.Plan{{ID: model.PlanMonthly, Label: "Monthly", PriceMajor: 1500}}
}

type mockFarmersUC struct {
	usecase.FarmerUseCase
	deleted []string
}

func (m *mockFarmersUC) Delete(ctx context.Context, uid string) (*usecase.DeleteResult, error) {
	m.deleted = append(m.deleted, uid)
	return &usecase.DeleteResult{AuthDeleted: true, DocDeleted: true}, nil
}

type mockAdvisoryUC struct {
	usecase.AdvisoryUseCase
	result  *model.AdviceResult
	err     error
	lastUID string
}

func (m *mockAdvisoryUC) CropAdvice(ctx context.Context, req usecase.CropAdviceRequest) (*model.AdviceResult, error) {
	m.lastUID = req.FarmerUID
	return m.result, m.err
}

func (m *mockAdvisoryUC) Fragility(ctx context.Context, req usecase.FragilityRequest) (*model.AdviceResult, error) {
	return m.result, m.err
}

type mockIdentity struct {
	tokens map[string]*adapter.TokenInfo
}

func (m *mockIdentity) VerifyToken(ctx context.Context, idToken string) (*adapter.TokenInfo, error) {
	ti, ok := m.tokens[idToken]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return ti, nil
}

func (m *mockIdentity) LookupByEmail(ctx context.Context, email string) (string, error) {
	return "", domain.ErrNotFound
}

func (m *mockIdentity) DeleteUser(ctx context.Context, uid string) error { return nil }

type testFixture struct {
	codes    *mockCodesUC
	payments *mockPaymentsUC
	farmers  *mockFarmersUC
	advisory *mockAdvisoryUC
	handler  http.Handler
}

func newFixture() *testFixture {
	f := &testFixture{
		codes:    &mockCodesUC{checkStatus: &usecase.CodeStatus{Valid: true, Uses: 12, MaxUses: 50, UsesLeft: 38}},
		payments: &mockPaymentsUC{},
		farmers:  &mockFarmersUC{},
		advisory: &mockAdvisoryUC{result: &model.AdviceResult{Structured: true, Header: "h"}},
	}
	identity := &mockIdentity{tokens: map[string]*adapter.TokenInfo{
		"good-token": {UID: "uid-1", Email: "f@example.com"},
	}}
	srv := NewServer(f.codes, &mockSubsUC{}, f.payments, f.advisory, f.farmers, identity, nil, nil, testConfig(), newTestLogger())
	f.handler = srv.Routes()
	return f
}

func do(h http.Handler, method, path string, body interface{}, hdr map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAccessCodeRoutes(t *testing.T) {
	t.Run("check returns the status", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodPost, "/api/access-code", map[string]string{"code": "HARVEST24"}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200", rec.Code)
		}
		var st usecase.CodeStatus
		_ = json.Unmarshal(rec.Body.Bytes(), &st)
		if !st.Valid || st.Uses != 12 || st.MaxUses != 50 || st.UsesLeft != 38 {
			t.Errorf("got %+v", st)
		}
	})

	t.Run("check without a code is 400", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodPost, "/api/access-code", map[string]string{}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status %d, want 400", rec.Code)
		}
	})

	t.Run("consume-client needs a bearer token", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodPost, "/api/access-code/consume-client", map[string]string{"code": "X"}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status %d, want 401", rec.Code)
		}
	})

	t.Run("consume-client uses the token identity", func(t *testing.T) {
		f := newFixture()
		f.codes.consumeRes = &usecase.ConsumeResult{Uses: 1, MaxUses: 50, UsesLeft: 49}
		rec := do(f.handler, http.MethodPost, "/api/access-code/consume-client",
			map[string]string{"code": "HARVEST24"},
			map[string]string{"Authorization": "Bearer good-token"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if f.codes.consumedFor != "uid-1" {
			t.Errorf("consumed for %q, want uid-1", f.codes.consumedFor)
		}
	})

	t.Run("expired code maps to 400", func(t *testing.T) {
		f := newFixture()
		f.codes.consumeErr = domain.ErrCodeExpired
		rec := do(f.handler, http.MethodPost, "/api/access-code/consume-client",
			map[string]string{"code": "HARVEST24"},
			map[string]string{"Authorization": "Bearer good-token"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status %d, want 400", rec.Code)
		}
	})

	t.Run("admin consume needs the secret", func(t *testing.T) {
		f := newFixture()
		f.codes.consumeRes = &usecase.ConsumeResult{Uses: 1, MaxUses: 50, UsesLeft: 49}
		body := map[string]string{"code": "HARVEST24", "farmerUid": "uid-9"}

		rec := do(f.handler, http.MethodPost, "/api/access-code/consume", body, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("without secret: status %d, want 401", rec.Code)
		}
		rec = do(f.handler, http.MethodPost, "/api/access-code/consume", body,
			map[string]string{"X-Admin-Secret": "test-admin-secret"})
		if rec.Code != http.StatusOK {
			t.Errorf("with secret: status %d, want 200", rec.Code)
		}
	})
}

func TestPaymentRoutes(t *testing.T) {
	t.Run("config is public", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodGet, "/api/paystack/config", nil, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200", rec.Code)
		}
		var cfg paystackConfigResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &cfg)
		if cfg.PublicKey != "pk_test_xyz" || len(cfg.Plans) != 1 {
			t.Errorf("got %+v", cfg)
		}
	})

	t.Run("verify from a foreign origin is 403", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodPost, "/api/paystack/verify",
			map[string]string{"reference": "ref-1"},
			map[string]string{"Origin": "https://evil.test"})
		if rec.Code != http.StatusForbidden {
			t.Errorf("status %d, want 403", rec.Code)
		}
	})

	t.Run("verify from an allowed origin passes through", func(t *testing.T) {
		f := newFixture()
		next := model.NextPaymentDate(model.PlanMonthly, time.Now())
		f.payments.verifyOut = &model.VerifyOutcome{
			Email: "f@example.com", ReferenceID: "ref-1", NextPaymentDate: &next,
		}
		rec := do(f.handler, http.MethodPost, "/api/paystack/verify",
			map[string]string{"reference": "ref-1"},
			map[string]string{"Origin": "https://app.test"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unsuccessful payment maps to 400", func(t *testing.T) {
		f := newFixture()
		f.payments.verifyErr = domain.ErrPaymentNotSuccessful
		rec := do(f.handler, http.MethodPost, "/api/paystack/verify",
			map[string]string{"reference": "ref-1"}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status %d, want 400", rec.Code)
		}
	})

	t.Run("initiate validates the plan", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodPost, "/api/paystack",
			map[string]string{"email": "f@example.com", "plan": "weekly"}, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status %d, want 400", rec.Code)
		}
	})
}

func TestAdvisoryRoutes(t *testing.T) {
	t.Run("anonymous advice passes through without a caller", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodPost, "/api/advice",
			map[string]interface{}{"crops": []string{"maize"}}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if f.advisory.lastUID != "" {
			t.Errorf("anonymous caller got uid %q", f.advisory.lastUID)
		}
	})

	t.Run("a bad bearer token is still rejected", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodPost, "/api/advice", map[string]interface{}{},
			map[string]string{"Authorization": "Bearer stale-token"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status %d, want 401", rec.Code)
		}
	})

	t.Run("no active access maps to 403", func(t *testing.T) {
		f := newFixture()
		f.advisory.err = domain.ErrNoActiveAccess
		rec := do(f.handler, http.MethodPost, "/api/advice", map[string]interface{}{},
			map[string]string{"Authorization": "Bearer good-token"})
		if rec.Code != http.StatusForbidden {
			t.Errorf("status %d, want 403", rec.Code)
		}
	})

	t.Run("identified advice carries the token uid", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodPost, "/api/advice",
			map[string]interface{}{"crops": []string{"maize"}},
			map[string]string{"Authorization": "Bearer good-token"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if f.advisory.lastUID != "uid-1" {
			t.Errorf("got uid %q, want uid-1", f.advisory.lastUID)
		}
	})
}

func TestAdminDeleteRoutes(t *testing.T) {
	t.Run("operator delete targets the requested uid", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodPost, "/api/admin/delete-farmer",
			map[string]string{"farmerUid": "uid-7"},
			map[string]string{"X-Admin-Secret": "test-admin-secret"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200", rec.Code)
		}
		if len(f.farmers.deleted) != 1 || f.farmers.deleted[0] != "uid-7" {
			t.Errorf("deleted %v, want [uid-7]", f.farmers.deleted)
		}
	})

	t.Run("self delete targets the token identity", func(t *testing.T) {
		f := newFixture()
		rec := do(f.handler, http.MethodPost, "/api/admin/delete-farmer-client", nil,
			map[string]string{"Authorization": "Bearer good-token"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200", rec.Code)
		}
		if len(f.farmers.deleted) != 1 || f.farmers.deleted[0] != "uid-1" {
			t.Errorf("deleted %v, want [uid-1]", f.farmers.deleted)
		}
	})
}

func TestHealth(t *testing.T) {
	f := newFixture()
	rec := do(f.handler, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status %d, want 200", rec.Code)
	}
}
