//go:build !integration

package identity

import (
	"context"
	"testing"
)

func TestNewFirebaseIdentity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("remote mode demands a service account key", func(t *testing.T) {
		if _, err := NewFirebaseIdentity(ctx, "api-key", "", ""); err == nil {
			t.Fatal("expected an error without credentials")
		}
	})

	t.Run("garbage credential json is rejected", func(t *testing.T) {
		if _, err := NewFirebaseIdentity(ctx, "api-key", "", "{not json"); err == nil {
			t.Fatal("expected a parse error")
		}
	})

	t.Run("admin urls carry no api key", func(t *testing.T) {
		f := &FirebaseIdentity{apiKey: "k", baseURL: "https://identitytoolkit.googleapis.com/v1"}
		if got := f.adminURL("delete"); got != "https://identitytoolkit.googleapis.com/v1/accounts:delete" {
			t.Errorf("admin url %q leaks the api key", got)
		}
		if got := f.userURL("lookup"); got != "https://identitytoolkit.googleapis.com/v1/accounts:lookup?key=k" {
			t.Errorf("user url %q", got)
		}
	})
}
