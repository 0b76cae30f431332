package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agro-advisory/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for dev mode and tests.
type NoopPaymentGateway struct {
	mu      sync.Mutex
	seq     int64
	intents map[string]noopIntent
}

type noopIntent struct {
	email  string
	amount int64
	plan   string
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{intents: make(map[string]noopIntent)}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) Initialize(ctx context.Context, email string, amountMinor int64, callbackURL string, meta map[string]interface{}) (*adapter.InitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	ref := fmt.Sprintf("noop-%d", g.seq)
	plan, _ := meta["plan"].(string)
	g.intents[ref] = noopIntent{email: email, amount: amountMinor, plan: plan}
	return &adapter.InitResult{
		AuthorizationURL: "https://example.test/pay/" + ref,
		AccessCode:       "ac_" + ref,
		Reference:        ref,
	}, nil
}

func (g *NoopPaymentGateway) Verify(ctx context.Context, reference string) (*adapter.VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	in, ok := g.intents[reference]
	if !ok {
		return nil, fmt.Errorf("noop: reference not found")
	}
	return &adapter.VerifyResult{
		Status:    "success",
		Reference: reference,
		Amount:    in.amount,
		Email:     in.email,
		Plan:      in.plan,
		PaidAt:    time.Now(),
	}, nil
}
