package mocks

import (
	"context"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// MockSessionService implements domain.SessionService for testing the
// admin-facing services, which only need to know who is logged in.
type MockSessionService struct {
	User *domain.User

	RestoreFunc  func(ctx context.Context) error
	LoginFunc    func(ctx context.Context, req domain.LoginRequest) (*domain.User, error)
	RegisterFunc func(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	LogoutFunc   func(ctx context.Context) error
	UpdateFunc   func(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error)
	TestAuthFunc func(ctx context.Context) bool
}

// NewMockSessionService creates a session fixed to the given user.
func NewMockSessionService(user *domain.User) *MockSessionService {
	return &MockSessionService{User: user}
}

func (m *MockSessionService) Restore(ctx context.Context) error {
	if m.RestoreFunc != nil {
		return m.RestoreFunc(ctx)
	}
	return nil
}

func (m *MockSessionService) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return m.User, nil
}

func (m *MockSessionService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return m.User, nil
}

func (m *MockSessionService) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	m.User = nil
	return nil
}

func (m *MockSessionService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, update)
	}
	if m.User == nil {
		return nil, domain.ErrNoActiveSession
	}
	return m.User, nil
}

func (m *MockSessionService) TestAuth(ctx context.Context) bool {
	if m.TestAuthFunc != nil {
		return m.TestAuthFunc(ctx)
	}
	return m.User != nil
}

func (m *MockSessionService) CurrentUser() *domain.User { return m.User }

func (m *MockSessionService) Snapshot() domain.Session {
	return domain.Session{User: m.User}
}

func (m *MockSessionService) IsAdmin() bool { return m.User.IsAdmin() }

func (m *MockSessionService) IsSuperAdmin() bool { return m.User.IsSuperAdmin() }
