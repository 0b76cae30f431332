//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/adapter"
	"agro-advisory/internal/domain/ports/repository"
)

// memCodeRepo is an in-memory AccessCodeRepository for unit tests.
type memCodeRepo struct {
	mu      sync.Mutex
	codes   map[string]*model.AccessCode
	uses    map[string]map[string]*model.AccessCodeUse // code -> uid -> use
	saveErr error
	useErr  error
}

func newMemCodeRepo() *memCodeRepo {
	return &memCodeRepo{
		codes: make(map[string]*model.AccessCode),
		uses:  make(map[string]map[string]*model.AccessCodeUse),
	}
}

func (m *memCodeRepo) Get(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCodeRepo) GetForUpdate(ctx context.Context, tx repository.Tx, code string) (*model.AccessCode, error) {
	return m.Get(ctx, tx, code)
}

func (m *memCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.AccessCode) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *code
	m.codes[code.Code] = &cp
	return nil
}

func (m *memCodeRepo) RecordUse(ctx context.Context, tx repository.Tx, use *model.AccessCodeUse) error {
	if m.useErr != nil {
		return m.useErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uses[use.Code] == nil {
		m.uses[use.Code] = make(map[string]*model.AccessCodeUse)
	}
	cp := *use
	m.uses[use.Code][use.FarmerUID] = &cp
	return nil
}

func (m *memCodeRepo) HasUse(ctx context.Context, tx repository.Tx, code, farmerUID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.uses[code][farmerUID]
	return ok, nil
}

func (m *memCodeRepo) snapshot() map[string]model.AccessCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]model.AccessCode, len(m.codes))
	for k, v := range m.codes {
		out[k] = *v
	}
	return out
}

func (m *memCodeRepo) restore(snap map[string]model.AccessCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = make(map[string]*model.AccessCode, len(snap))
	for k, v := range snap {
		cp := v
		m.codes[k] = &cp
	}
}

// memFarmerRepo is an in-memory FarmerRepository.
type memFarmerRepo struct {
	mu      sync.Mutex
	farmers map[string]*model.Farmer
}

func newMemFarmerRepo() *memFarmerRepo {
	return &memFarmerRepo{farmers: make(map[string]*model.Farmer)}
}

func (m *memFarmerRepo) Save(ctx context.Context, tx repository.Tx, f *model.Farmer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.farmers[f.UID] = &cp
	return nil
}

func (m *memFarmerRepo) FindByUID(ctx context.Context, tx repository.Tx, uid string) (*model.Farmer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.farmers[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFarmerRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Farmer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.farmers {
		if f.Email == email {
			cp := *f
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memFarmerRepo) MergeSubscription(ctx context.Context, tx repository.Tx, uid string, merge repository.SubscriptionMerge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.farmers[uid]
	if !ok {
		return domain.ErrNotFound
	}
	if merge.PaidAccess != nil {
		f.PaidAccess = *merge.PaidAccess
	}
	if merge.AccessCodeUsed != nil {
		f.AccessCodeUsed = *merge.AccessCodeUsed
	}
	if merge.Plan != nil {
		f.Plan = *merge.Plan
	}
	if merge.PaymentReference != nil {
		f.PaymentReference = *merge.PaymentReference
	}
	if merge.PaymentDate != nil {
		d := *merge.PaymentDate
		f.PaymentDate = &d
	}
	if merge.NextPaymentDate != nil {
		d := *merge.NextPaymentDate
		f.NextPaymentDate = &d
	}
	return nil
}

func (m *memFarmerRepo) Delete(ctx context.Context, tx repository.Tx, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.farmers[uid]; !ok {
		return domain.ErrNotFound
	}
	delete(m.farmers, uid)
	return nil
}

func (m *memFarmerRepo) CountByAccess(ctx context.Context, tx repository.Tx, now time.Time) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active, expired := 0, 0
	for _, f := range m.farmers {
		switch {
		case f.HasActiveAccess(now):
			active++
		case f.PaidAccess && !f.AccessCodeUsed:
			expired++
		}
	}
	return active, expired, nil
}

// memAdvisoryRepo is an in-memory AdvisoryRepository.
type memAdvisoryRepo struct {
	mu    sync.Mutex
	items []*model.Advisory
}

func newMemAdvisoryRepo() *memAdvisoryRepo { return &memAdvisoryRepo{} }

func (m *memAdvisoryRepo) Save(ctx context.Context, tx repository.Tx, a *model.Advisory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.items = append(m.items, &cp)
	return nil
}

func (m *memAdvisoryRepo) ListByFarmer(ctx context.Context, tx repository.Tx, farmerUID string, kind model.AdvisoryKind, limit int) ([]*model.Advisory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Advisory
	for i := len(m.items) - 1; i >= 0 && len(out) < limit; i-- {
		a := m.items[i]
		if a.FarmerUID == farmerUID && a.Kind == kind {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memTxManager serializes transactions with a mutex and rolls the code
// counter back to its snapshot when fn fails, mirroring what the real
// Postgres transaction does.
type memTxManager struct {
	mu    sync.Mutex
	codes *memCodeRepo
}

func newMemTxManager(codes *memCodeRepo) *memTxManager {
	return &memTxManager{codes: codes}
}

func (m *memTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var snap map[string]model.AccessCode
	if m.codes != nil {
		snap = m.codes.snapshot()
	}
	if err := fn(ctx, repository.NoTX); err != nil {
		if m.codes != nil {
			m.codes.restore(snap)
		}
		return err
	}
	return nil
}

// fakeGateway returns a scripted verification result.
type fakeGateway struct {
	verify    *adapter.VerifyResult
	verifyErr error
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) Initialize(ctx context.Context, email string, amountMinor int64, callbackURL string, meta map[string]interface{}) (*adapter.InitResult, error) {
	return &adapter.InitResult{AuthorizationURL: "https://pay.test/x", Reference: "ref-init"}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (*adapter.VerifyResult, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.verify, nil
}

// fakeIdentity resolves emails from a fixed map.
type fakeIdentity struct {
	byEmail   map[string]string
	deleteErr error
	deleted   []string
}

func (f *fakeIdentity) VerifyToken(ctx context.Context, idToken string) (*adapter.TokenInfo, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeIdentity) LookupByEmail(ctx context.Context, email string) (string, error) {
	uid, ok := f.byEmail[email]
	if !ok {
		return "", domain.ErrNotFound
	}
	return uid, nil
}

func (f *fakeIdentity) DeleteUser(ctx context.Context, uid string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, uid)
	return nil
}

// fakeAI answers every chat with a fixed response.
type fakeAI struct {
	response string
	err      error
	lastUser string
}

func (a *fakeAI) Chat(ctx context.Context, messages []adapter.Message, opts adapter.ChatOptions) (string, error) {
	for _, msg := range messages {
		if msg.Role == "user" {
			a.lastUser = msg.Content
		}
	}
	if a.err != nil {
		return "", a.err
	}
	return a.response, nil
}
