package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/ports/adapter"
)

var _ adapter.IdentityProvider = (*LocalIdentity)(nil)

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LocalIdentity verifies HS256 session tokens minted by a trusted frontend.
// Useful for dev and for deployments that do not run a hosted identity service.
type LocalIdentity struct {
	secret []byte

	mu    sync.RWMutex
	users map[string]string // email -> uid
}

func NewLocalIdentity(secret string) *LocalIdentity {
	return &LocalIdentity{secret: []byte(secret), users: make(map[string]string)}
}

// Seed registers a known email/uid pair for LookupByEmail.
func (l *LocalIdentity) Seed(email, uid string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users[email] = uid
}

func (l *LocalIdentity) VerifyToken(ctx context.Context, token string) (*adapter.TokenInfo, error) {
	claims := &sessionClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return l.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}
	return &adapter.TokenInfo{UID: claims.Subject, Email: claims.Email}, nil
}

func (l *LocalIdentity) LookupByEmail(ctx context.Context, email string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	uid, ok := l.users[email]
	if !ok {
		return "", domain.ErrNotFound
	}
	return uid, nil
}

func (l *LocalIdentity) DeleteUser(ctx context.Context, uid string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for email, u := range l.users {
		if u == uid {
			delete(l.users, email)
			return nil
		}
	}
	return nil
}
