package e2e

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Mojasagwe/taxiRankApp/domain"
	"github.com/Mojasagwe/taxiRankApp/internal/logging"
	"github.com/Mojasagwe/taxiRankApp/internal/services"
	"github.com/Mojasagwe/taxiRankApp/internal/storage"
	"github.com/Mojasagwe/taxiRankApp/internal/transport"
)

// clientCore is the fully wired client stack pointed at the backend
// double, with a real file-backed credential store.
type clientCore struct {
	Store        domain.CredentialStore
	Client       *transport.Client
	Auth         domain.AuthAPI
	Admin        domain.AdminAPI
	Session      *services.SessionServiceImpl
	Policy       domain.PolicyService
	Registration *services.RegistrationServiceImpl
	Assignment   *services.AssignmentServiceImpl
}

// newClientCore wires the client against the backend. Passing the same
// store across cores simulates an app restart on the same device.
func newClientCore(t *testing.T, backend *Backend, store domain.CredentialStore) *clientCore {
	t.Helper()
	if store == nil {
		store = storage.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	}

	logger := logging.Discard()
	client := transport.NewClient(backend.URL(), store, transport.WithLogger(logger))
	authAPI := transport.NewAuthClient(client)
	adminAPI := transport.NewAdminClient(client)
	rankAPI := transport.NewRankClient(client)

	policy, err := services.NewPolicyService()
	if err != nil {
		t.Fatalf("policy service: %v", err)
	}
	session := services.NewSessionService(store, authAPI, logger)
	registration := services.NewRegistrationService(adminAPI, policy, session, logger)
	assignment := services.NewAssignmentService(adminAPI, rankAPI, policy, session, registration, logger)
	client.SetInvalidationHandler(session.HandleAuthInvalidated)

	return &clientCore{
		Store:        store,
		Client:       client,
		Auth:         authAPI,
		Admin:        adminAPI,
		Session:      session,
		Policy:       policy,
		Registration: registration,
		Assignment:   assignment,
	}
}

// loginAs authenticates the core as a seeded backend user.
func (c *clientCore) loginAs(t *testing.T, email, password string) *domain.User {
	t.Helper()
	user, err := c.Session.Login(context.Background(), domain.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login as %s: %v", email, err)
	}
	return user
}

func adminSubmission(email string, codes ...string) domain.AdminRegistrationSubmission {
	return domain.AdminRegistrationSubmission{
		FirstName:              "Thabo",
		LastName:               "Mokoena",
		Email:                  email,
		PhoneNumber:            "+27834445555",
		Password:               "adminpass1",
		ConfirmPassword:        "adminpass1",
		PreferredPaymentMethod: domain.PaymentCard,
		SelectedRankCodes:      codes,
		Designation:            "Rank manager",
		Justification:          "Managing daily operations at the rank",
	}
}
