package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Mojasagwe/taxiRankApp/domain"
	"github.com/Mojasagwe/taxiRankApp/internal/logging"
	"github.com/Mojasagwe/taxiRankApp/internal/mocks"
)

func newTestRegistration(api *mocks.MockAdminAPI, user *domain.User) *RegistrationServiceImpl {
	policy, err := NewPolicyService()
	if err != nil {
		panic(err)
	}
	return NewRegistrationService(api, policy, mocks.NewMockSessionService(user), logging.Discard())
}

func validSubmission() domain.AdminRegistrationSubmission {
	return domain.AdminRegistrationSubmission{
		FirstName:              "Sipho",
		LastName:               "Khumalo",
		Email:                  "sipho@example.com",
		PhoneNumber:            "+27831112222",
		Password:               "secret123",
		ConfirmPassword:        "secret123",
		PreferredPaymentMethod: domain.PaymentCash,
		SelectedRankCodes:      []string{"PTA"},
	}
}

func TestRegistrationService_FetchAvailableRanks(t *testing.T) {
	api := mocks.NewMockAdminAPI()
	api.AvailableRanksFunc = func(ctx context.Context) ([]domain.Rank, error) {
		return []domain.Rank{
			{ID: 1, Code: "PTA", Name: "Pretoria CBD", City: "Pretoria"},
			{ID: 2, Code: "JHB", Name: "Johannesburg Park", City: "Johannesburg",
				RankAdmins: []domain.AdminRef{{ID: 9}}},
		}, nil
	}
	svc := newTestRegistration(api, nil)

	ranks, err := svc.FetchAvailableRanks(context.Background())
	if err != nil {
		t.Fatalf("FetchAvailableRanks() error: %v", err)
	}
	if len(ranks) != 1 || ranks[0].Code != "PTA" {
		t.Fatalf("expected only the unadministered rank, got %+v", ranks)
	}
}

func TestRegistrationService_FetchAvailableRanksEmpty(t *testing.T) {
	api := mocks.NewMockAdminAPI()
	api.AvailableRanksFunc = func(ctx context.Context) ([]domain.Rank, error) {
		return []domain.Rank{}, nil
	}
	svc := newTestRegistration(api, nil)

	ranks, err := svc.FetchAvailableRanks(context.Background())
	if err != nil {
		t.Fatalf("an empty pool is a valid state, got error: %v", err)
	}
	if len(ranks) != 0 {
		t.Fatalf("expected no ranks, got %+v", ranks)
	}
}

func TestRegistrationService_Submit(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.AdminRegistrationSubmission)
		wantErr error
	}{
		{
			name:   "valid submission goes through",
			mutate: func(sub *domain.AdminRegistrationSubmission) {},
		},
		{
			name:    "missing required field",
			mutate:  func(sub *domain.AdminRegistrationSubmission) { sub.PhoneNumber = "" },
			wantErr: domain.ErrMissingRequiredFields,
		},
		{
			name:    "malformed email",
			mutate:  func(sub *domain.AdminRegistrationSubmission) { sub.Email = "not an email" },
			wantErr: domain.ErrEmailInvalid,
		},
		{
			name: "short password",
			mutate: func(sub *domain.AdminRegistrationSubmission) {
				sub.Password = "abc"
				sub.ConfirmPassword = "abc"
			},
			wantErr: domain.ErrPasswordTooShort,
		},
		{
			name:    "confirmation mismatch",
			mutate:  func(sub *domain.AdminRegistrationSubmission) { sub.ConfirmPassword = "secret124" },
			wantErr: domain.ErrPasswordMismatch,
		},
		{
			name: "unknown payment method",
			mutate: func(sub *domain.AdminRegistrationSubmission) {
				sub.PreferredPaymentMethod = domain.PaymentMethod("EFT")
			},
			wantErr: domain.ErrInvalidPaymentMethod,
		},
		{
			name:    "no rank selected",
			mutate:  func(sub *domain.AdminRegistrationSubmission) { sub.SelectedRankCodes = nil },
			wantErr: domain.ErrNoRankSelected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := mocks.NewMockAdminAPI()
			api.AvailableRanksFunc = func(ctx context.Context) ([]domain.Rank, error) {
				return []domain.Rank{{ID: 1, Code: "PTA", Name: "Pretoria CBD"}}, nil
			}
			svc := newTestRegistration(api, nil)
			if _, err := svc.FetchAvailableRanks(context.Background()); err != nil {
				t.Fatal(err)
			}

			sub := validSubmission()
			tt.mutate(&sub)

			requestID, err := svc.Submit(context.Background(), sub)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Submit() error = %v, want %v", err, tt.wantErr)
				}
				if len(api.SubmitCalls) != 0 {
					t.Error("invalid submission must not reach the server")
				}
				return
			}
			if err != nil {
				t.Fatalf("Submit() error: %v", err)
			}
			if requestID == "" {
				t.Error("expected a request ID")
			}
			if len(api.SubmitCalls) != 1 {
				t.Fatalf("expected one submission, got %d", len(api.SubmitCalls))
			}
		})
	}
}

func TestRegistrationService_SubmitRejectsStaleCodes(t *testing.T) {
	api := mocks.NewMockAdminAPI()
	api.AvailableRanksFunc = func(ctx context.Context) ([]domain.Rank, error) {
		return []domain.Rank{{ID: 1, Code: "PTA"}}, nil
	}
	svc := newTestRegistration(api, nil)
	if _, err := svc.FetchAvailableRanks(context.Background()); err != nil {
		t.Fatal(err)
	}

	sub := validSubmission()
	sub.SelectedRankCodes = []string{"PTA", "JHB", "DBN"}

	_, err := svc.Submit(context.Background(), sub)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if verr.Error() != "Invalid rank codes selected: JHB, DBN" {
		t.Errorf("unexpected message: %q", verr.Error())
	}
	if len(api.SubmitCalls) != 0 {
		t.Error("stale selection must be caught before the network call")
	}
}

func TestRegistrationService_SubmitAfterInvalidation(t *testing.T) {
	// Once the snapshot is dropped, every selected code counts as stale
	// until the pool is fetched again.
	api := mocks.NewMockAdminAPI()
	api.AvailableRanksFunc = func(ctx context.Context) ([]domain.Rank, error) {
		return []domain.Rank{{ID: 1, Code: "PTA"}}, nil
	}
	svc := newTestRegistration(api, nil)
	if _, err := svc.FetchAvailableRanks(context.Background()); err != nil {
		t.Fatal(err)
	}
	svc.InvalidateAvailableRanks()

	_, err := svc.Submit(context.Background(), validSubmission())
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if len(api.SubmitCalls) != 0 {
		t.Error("submission must not reach the server after invalidation")
	}
}

func TestRegistrationService_SubmitServerStaleConflict(t *testing.T) {
	// The server stays authoritative: a rank claimed by a concurrent
	// approval comes back as a stale-selection error even when the local
	// snapshot still lists it.
	api := mocks.NewMockAdminAPI()
	api.AvailableRanksFunc = func(ctx context.Context) ([]domain.Rank, error) {
		return []domain.Rank{{ID: 1, Code: "PTA"}}, nil
	}
	api.SubmitRegistrationFunc = func(ctx context.Context, sub domain.AdminRegistrationSubmission) (string, error) {
		return "", domain.ErrStaleRankSelection
	}
	svc := newTestRegistration(api, nil)
	if _, err := svc.FetchAvailableRanks(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Submit(context.Background(), validSubmission())
	if !errors.Is(err, domain.ErrStaleRankSelection) {
		t.Fatalf("expected ErrStaleRankSelection, got %v", err)
	}
}

func TestRegistrationService_ReviewPermissions(t *testing.T) {
	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{"anonymous cannot review", nil, domain.ErrPermissionDenied},
		{"commuter cannot review", testUser(domain.RoleUser), domain.ErrPermissionDenied},
		{"admin cannot review", testUser(domain.RoleAdmin), domain.ErrPermissionDenied},
		{"super admin can review", testUser(domain.RoleSuperAdmin), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := mocks.NewMockAdminAPI()
			api.PendingRequestsFunc = func(ctx context.Context) ([]domain.AdminRegistrationRequest, error) {
				return []domain.AdminRegistrationRequest{{ID: "req-1", Status: domain.StatusPending}}, nil
			}
			svc := newTestRegistration(api, tt.user)

			_, err := svc.ListPending(context.Background())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ListPending() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ListPending() error: %v", err)
			}
		})
	}
}

func TestRegistrationService_ReviewRejectionNeedsReason(t *testing.T) {
	api := mocks.NewMockAdminAPI()
	svc := newTestRegistration(api, testUser(domain.RoleSuperAdmin))

	_, err := svc.Review(context.Background(), "req-1", domain.ReviewDecision{Approved: false, RejectionReason: "   "})
	if !errors.Is(err, domain.ErrRejectionReasonRequired) {
		t.Fatalf("expected ErrRejectionReasonRequired, got %v", err)
	}
	if api.ReviewCalls != 0 {
		t.Error("an unreasoned rejection must never reach the server")
	}
}

func TestRegistrationService_ApprovalInvalidatesAvailableRanks(t *testing.T) {
	api := mocks.NewMockAdminAPI()
	api.AvailableRanksFunc = func(ctx context.Context) ([]domain.Rank, error) {
		return []domain.Rank{{ID: 1, Code: "PTA"}}, nil
	}
	api.ReviewFunc = func(ctx context.Context, requestID string, decision domain.ReviewDecision) (*domain.AdminRegistrationRequest, error) {
		return &domain.AdminRegistrationRequest{ID: requestID, Status: domain.StatusApproved}, nil
	}
	svc := newTestRegistration(api, testUser(domain.RoleSuperAdmin))
	if _, err := svc.FetchAvailableRanks(context.Background()); err != nil {
		t.Fatal(err)
	}

	request, err := svc.Review(context.Background(), "req-1", domain.ReviewDecision{Approved: true})
	if err != nil {
		t.Fatalf("Review() error: %v", err)
	}
	if request.Status != domain.StatusApproved {
		t.Errorf("expected APPROVED, got %v", request.Status)
	}

	// The approved rank was assigned; a submission against the old
	// snapshot must now fail locally.
	_, err = svc.Submit(context.Background(), validSubmission())
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error after approval, got %v", err)
	}
}

func TestRegistrationService_ReviewAlreadyTerminal(t *testing.T) {
	api := mocks.NewMockAdminAPI()
	api.ReviewFunc = func(ctx context.Context, requestID string, decision domain.ReviewDecision) (*domain.AdminRegistrationRequest, error) {
		return nil, domain.ErrRequestTerminal
	}
	svc := newTestRegistration(api, testUser(domain.RoleSuperAdmin))

	_, err := svc.Review(context.Background(), "req-1", domain.ReviewDecision{Approved: true})
	if !errors.Is(err, domain.ErrRequestTerminal) {
		t.Fatalf("expected ErrRequestTerminal, got %v", err)
	}
}

func TestRegistrationService_SubmitPublishesEvent(t *testing.T) {
	api := mocks.NewMockAdminAPI()
	api.AvailableRanksFunc = func(ctx context.Context) ([]domain.Rank, error) {
		return []domain.Rank{{ID: 1, Code: "PTA"}}, nil
	}
	sink := mocks.NewMockEventSink()
	policy, err := NewPolicyService()
	if err != nil {
		t.Fatal(err)
	}
	svc := NewRegistrationService(api, policy, mocks.NewMockSessionService(nil), logging.Discard(),
		WithRegistrationEventSink(sink))
	if _, err := svc.FetchAvailableRanks(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Submit(context.Background(), validSubmission()); err != nil {
		t.Fatal(err)
	}

	types := sink.Types()
	if len(types) != 1 || types[0] != domain.RequestSubmittedEvent {
		t.Fatalf("expected a single %s event, got %v", domain.RequestSubmittedEvent, types)
	}
}
