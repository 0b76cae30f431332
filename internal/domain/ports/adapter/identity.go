package adapter

import "context"

// TokenInfo is the decoded identity of a bearer-token holder.
type TokenInfo struct {
	UID   string
	Email string
}

// IdentityProvider is the port for the external auth provider. Account
// creation lives client-side; the backend only verifies tokens, resolves
// emails, and deletes accounts during rollback compensation.
type IdentityProvider interface {
	VerifyToken(ctx context.Context, idToken string) (*TokenInfo, error)
	// LookupByEmail resolves a uid; ErrNotFound when no account matches.
	LookupByEmail(ctx context.Context, email string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
}
