package e2e

import (
	"context"
	"errors"
	"testing"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

func TestAuthFlow_RegisterLoginRestore(t *testing.T) {
	backend := NewBackend(t)
	core := newClientCore(t, backend, nil)
	ctx := context.Background()

	// Fresh device: restore finds nothing and routes to auth.
	if err := core.Session.Restore(ctx); err != nil {
		t.Fatalf("restore on a fresh device: %v", err)
	}
	if root := core.Policy.RootFor(core.Session.CurrentUser()); root != domain.RootAuth {
		t.Fatalf("fresh device routed to %s", root)
	}

	user, err := core.Session.Register(ctx, domain.RegisterRequest{
		FirstName:              "Naledi",
		LastName:               "Dlamini",
		Email:                  "naledi@example.com",
		PhoneNumber:            "+27821234567",
		Password:               "secret123",
		PreferredPaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("new registrations are commuters, got %s", user.Role)
	}
	if root := core.Policy.RootFor(core.Session.CurrentUser()); root != domain.RootCommuter {
		t.Errorf("registered user routed to %s", root)
	}

	// App restart on the same device: a new core over the same store
	// restores the session without a network call.
	restarted := newClientCore(t, backend, core.Store)
	if err := restarted.Session.Restore(ctx); err != nil {
		t.Fatalf("restore after restart: %v", err)
	}
	restored := restarted.Session.CurrentUser()
	if restored == nil || restored.Email != "naledi@example.com" {
		t.Fatalf("session did not survive the restart: %+v", restored)
	}

	// The restored token is live.
	if !restarted.Session.TestAuth(ctx) {
		t.Error("restored token should still authenticate")
	}
}

func TestAuthFlow_LoginRejection(t *testing.T) {
	backend := NewBackend(t)
	backend.SeedUser("naledi@example.com", "secret123", domain.RoleUser)
	core := newClientCore(t, backend, nil)

	_, err := core.Session.Login(context.Background(), domain.LoginRequest{
		Email:    "naledi@example.com",
		Password: "wrong-password",
	})
	if err == nil {
		t.Fatal("expected the login to be rejected")
	}
	if snap := core.Session.Snapshot(); snap.Error == "" {
		t.Error("rejection should be recorded on the session")
	}
	if core.Session.CurrentUser() != nil {
		t.Error("rejected login must not install a user")
	}
}

func TestAuthFlow_LogoutEndsSessionEverywhere(t *testing.T) {
	backend := NewBackend(t)
	backend.SeedUser("naledi@example.com", "secret123", domain.RoleUser)
	core := newClientCore(t, backend, nil)
	ctx := context.Background()

	core.loginAs(t, "naledi@example.com", "secret123")
	if err := core.Session.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if core.Session.CurrentUser() != nil {
		t.Error("logout must clear the in-memory session")
	}

	// Nothing to restore after logout.
	restarted := newClientCore(t, backend, core.Store)
	if err := restarted.Session.Restore(ctx); err != nil {
		t.Fatal(err)
	}
	if restarted.Session.CurrentUser() != nil {
		t.Error("logout must clear the persisted session")
	}
}

func TestAuthFlow_ServerInvalidationTearsDownSession(t *testing.T) {
	backend := NewBackend(t)
	backend.SeedUser("naledi@example.com", "secret123", domain.RoleUser)
	core := newClientCore(t, backend, nil)
	ctx := context.Background()

	core.loginAs(t, "naledi@example.com", "secret123")
	backend.RevokeAllTokens()

	// Any authenticated call now trips the 401 teardown.
	if core.Session.TestAuth(ctx) {
		t.Error("revoked token should fail the auth probe")
	}
	if core.Session.CurrentUser() != nil {
		t.Error("invalidation must clear the in-memory session")
	}
	if root := core.Policy.RootFor(core.Session.CurrentUser()); root != domain.RootAuth {
		t.Errorf("invalidated session routed to %s", root)
	}

	// The stored pair is gone too.
	restarted := newClientCore(t, backend, core.Store)
	if err := restarted.Session.Restore(ctx); err != nil {
		t.Fatal(err)
	}
	if restarted.Session.CurrentUser() != nil {
		t.Error("invalidation must clear the persisted session")
	}
}

func TestAuthFlow_ProfileUpdatePersists(t *testing.T) {
	backend := NewBackend(t)
	backend.SeedUser("naledi@example.com", "secret123", domain.RoleUser)
	core := newClientCore(t, backend, nil)
	ctx := context.Background()

	core.loginAs(t, "naledi@example.com", "secret123")

	newName := "Nal"
	updated, err := core.Session.UpdateProfile(ctx, domain.ProfileUpdate{FirstName: &newName})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.FirstName != "Nal" {
		t.Errorf("first name = %q", updated.FirstName)
	}

	restarted := newClientCore(t, backend, core.Store)
	if err := restarted.Session.Restore(ctx); err != nil {
		t.Fatal(err)
	}
	if restored := restarted.Session.CurrentUser(); restored == nil || restored.FirstName != "Nal" {
		t.Errorf("profile update did not survive the restart: %+v", restored)
	}
}

func TestAuthFlow_AnonymousRequestIsRejected(t *testing.T) {
	backend := NewBackend(t)
	core := newClientCore(t, backend, nil)

	_, err := core.Auth.Me(context.Background())
	if !errors.Is(err, domain.ErrAuthInvalid) {
		t.Fatalf("expected ErrAuthInvalid, got %v", err)
	}
}
