package mocks

import (
	"context"
	"sync/atomic"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// MockAuthAPI implements domain.AuthAPI for testing. Call counters are
// atomic so tests may poll them while a call is in flight.
type MockAuthAPI struct {
	LoginFunc    func(ctx context.Context, req domain.LoginRequest) (*domain.AuthPayload, error)
	RegisterFunc func(ctx context.Context, req domain.RegisterRequest) (*domain.AuthPayload, error)
	MeFunc       func(ctx context.Context) (*domain.User, error)
	TestAuthFunc func(ctx context.Context) (bool, error)
	LogoutFunc   func(ctx context.Context) error

	loginCalls  atomic.Int64
	logoutCalls atomic.Int64
}

// NewMockAuthAPI creates a new MockAuthAPI with default behaviors.
func NewMockAuthAPI() *MockAuthAPI {
	return &MockAuthAPI{}
}

// Login authenticates credentials.
func (m *MockAuthAPI) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthPayload, error) {
	m.loginCalls.Add(1)
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, domain.ErrInvalidCredentials
}

// LoginCalls reports how many times Login was invoked.
func (m *MockAuthAPI) LoginCalls() int {
	return int(m.loginCalls.Load())
}

// Register creates an account.
func (m *MockAuthAPI) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthPayload, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, domain.ErrInvalidCredentials
}

// Me fetches the current principal.
func (m *MockAuthAPI) Me(ctx context.Context) (*domain.User, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx)
	}
	return nil, domain.ErrAuthInvalid
}

// TestAuth checks token liveness.
func (m *MockAuthAPI) TestAuth(ctx context.Context) (bool, error) {
	if m.TestAuthFunc != nil {
		return m.TestAuthFunc(ctx)
	}
	return true, nil
}

// Logout invalidates the remote session.
func (m *MockAuthAPI) Logout(ctx context.Context) error {
	m.logoutCalls.Add(1)
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

// LogoutCalls reports how many times Logout was invoked.
func (m *MockAuthAPI) LogoutCalls() int {
	return int(m.logoutCalls.Load())
}
