package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Mojasagwe/taxiRankApp/domain"
	"github.com/Mojasagwe/taxiRankApp/internal/mocks"
)

func TestCredentials_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockCredentialStore()
	user := &domain.User{ID: 42, Email: "naledi@example.com", Role: domain.RoleAdmin}

	if err := SaveCredentials(ctx, store, "tok-abc", user); err != nil {
		t.Fatalf("SaveCredentials() error: %v", err)
	}

	creds, err := LoadCredentials(ctx, store)
	if err != nil {
		t.Fatalf("LoadCredentials() error: %v", err)
	}
	if creds.Token != "tok-abc" {
		t.Errorf("token = %q, want tok-abc", creds.Token)
	}
	if creds.User == nil || creds.User.ID != 42 || creds.User.Role != domain.RoleAdmin {
		t.Errorf("user snapshot did not survive the round trip: %+v", creds.User)
	}
}

func TestCredentials_AbsentPairIsNotAnError(t *testing.T) {
	creds, err := LoadCredentials(context.Background(), mocks.NewMockCredentialStore())
	if err != nil {
		t.Fatalf("an empty store is a valid logged-out state, got %v", err)
	}
	if creds != nil {
		t.Fatalf("expected nil credentials, got %+v", creds)
	}
}

func TestCredentials_HalfPairIsClearedOnLoad(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"orphan token", domain.TokenKey, "tok-abc"},
		{"orphan user snapshot", domain.UserDataKey, `{"id":42}`},
		{"corrupt user snapshot", domain.UserDataKey, "{not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := mocks.NewMockCredentialStore()
			if err := store.Set(ctx, tt.key, tt.value); err != nil {
				t.Fatal(err)
			}
			if tt.name == "corrupt user snapshot" {
				if err := store.Set(ctx, domain.TokenKey, "tok-abc"); err != nil {
					t.Fatal(err)
				}
			}

			_, err := LoadCredentials(ctx, store)
			if !errors.Is(err, domain.ErrCredentialsIncomplete) {
				t.Fatalf("expected ErrCredentialsIncomplete, got %v", err)
			}

			// The bad pair is gone; the next load is a clean logged-out state.
			creds, err := LoadCredentials(ctx, store)
			if err != nil || creds != nil {
				t.Fatalf("store was not cleaned up: (%+v, %v)", creds, err)
			}
		})
	}
}

func TestCredentials_SaveRejectsIncompleteInput(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockCredentialStore()

	if err := SaveCredentials(ctx, store, "", &domain.User{ID: 1}); !errors.Is(err, domain.ErrCredentialsIncomplete) {
		t.Fatalf("empty token: got %v", err)
	}
	if err := SaveCredentials(ctx, store, "tok", nil); !errors.Is(err, domain.ErrCredentialsIncomplete) {
		t.Fatalf("nil user: got %v", err)
	}
}

func TestCredentials_TokenWriteFailureClearsPair(t *testing.T) {
	ctx := context.Background()
	inner := mocks.NewMockCredentialStore()
	store := mocks.NewMockCredentialStore()
	store.GetFunc = inner.Get
	store.RemoveFunc = inner.Remove
	store.SetFunc = func(ctx context.Context, key, value string) error {
		if key == domain.TokenKey {
			return errors.New("disk full")
		}
		return inner.Set(ctx, key, value)
	}

	err := SaveCredentials(ctx, store, "tok-abc", &domain.User{ID: 1})
	if err == nil {
		t.Fatal("expected the token write failure to surface")
	}

	// The user snapshot written before the failure must not linger.
	store.SetFunc = nil
	creds, err := LoadCredentials(ctx, store)
	if err != nil || creds != nil {
		t.Fatalf("half-written pair survived: (%+v, %v)", creds, err)
	}
}
