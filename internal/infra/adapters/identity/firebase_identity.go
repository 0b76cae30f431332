package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/google"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/ports/adapter"
)

var _ adapter.IdentityProvider = (*FirebaseIdentity)(nil)

// identityToolkitScope authorizes the admin half of the API.
const identityToolkitScope = "https://www.googleapis.com/auth/identitytoolkit"

// FirebaseIdentity talks to the Identity Toolkit REST API. Token
// verification runs with the public API key; lookup-by-email and
// delete-user are admin operations and authenticate with the
// service-account credential instead.
type FirebaseIdentity struct {
	apiKey  string
	baseURL string
	client  *http.Client
	admin   *http.Client
}

func NewFirebaseIdentity(ctx context.Context, apiKey, baseURL, serviceAccountKey string) (*FirebaseIdentity, error) {
	if baseURL == "" {
		baseURL = "https://identitytoolkit.googleapis.com/v1"
	}
	if serviceAccountKey == "" {
		return nil, errors.New("identity: service account key required in remote mode")
	}
	creds, err := google.JWTConfigFromJSON([]byte(serviceAccountKey), identityToolkitScope)
	if err != nil {
		return nil, fmt.Errorf("identity: parse service account key: %w", err)
	}
	return &FirebaseIdentity{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		admin:   creds.Client(ctx),
	}, nil
}

type lookupResponse struct {
	Users []struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	} `json:"users"`
}

func (f *FirebaseIdentity) post(ctx context.Context, client *http.Client, url string, body interface{}, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("identity http %d: %s", resp.StatusCode, truncate(data, 256))
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// userURL targets the public API-key surface.
func (f *FirebaseIdentity) userURL(action string) string {
	return fmt.Sprintf("%s/accounts:%s?key=%s", f.baseURL, action, f.apiKey)
}

// adminURL targets the service-account surface; the bearer token comes
// from the OAuth2 transport, no API key involved.
func (f *FirebaseIdentity) adminURL(action string) string {
	return fmt.Sprintf("%s/accounts:%s", f.baseURL, action)
}

func (f *FirebaseIdentity) VerifyToken(ctx context.Context, token string) (*adapter.TokenInfo, error) {
	var out lookupResponse
	if err := f.post(ctx, f.client, f.userURL("lookup"), map[string]string{"idToken": token}, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, fmt.Errorf("identity lookup: no user for token")
	}
	return &adapter.TokenInfo{UID: out.Users[0].LocalID, Email: out.Users[0].Email}, nil
}

func (f *FirebaseIdentity) LookupByEmail(ctx context.Context, email string) (string, error) {
	var out lookupResponse
	if err := f.post(ctx, f.admin, f.adminURL("lookup"), map[string][]string{"email": {email}}, &out); err != nil {
		return "", err
	}
	if len(out.Users) == 0 {
		return "", domain.ErrNotFound
	}
	return out.Users[0].LocalID, nil
}

func (f *FirebaseIdentity) DeleteUser(ctx context.Context, uid string) error {
	return f.post(ctx, f.admin, f.adminURL("delete"), map[string]string{"localId": uid}, nil)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
