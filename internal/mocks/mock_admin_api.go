package mocks

import (
	"context"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// MockAdminAPI implements domain.AdminAPI for testing.
type MockAdminAPI struct {
	AvailableRanksFunc     func(ctx context.Context) ([]domain.Rank, error)
	SubmitRegistrationFunc func(ctx context.Context, sub domain.AdminRegistrationSubmission) (string, error)
	PendingRequestsFunc    func(ctx context.Context) ([]domain.AdminRegistrationRequest, error)
	RequestDetailsFunc     func(ctx context.Context, requestID string) (*domain.AdminRegistrationRequest, error)
	ReviewFunc             func(ctx context.Context, requestID string, decision domain.ReviewDecision) (*domain.AdminRegistrationRequest, error)
	RankAdminsFunc         func(ctx context.Context, rankID uint) ([]domain.AdminRef, error)
	DashboardStatsFunc     func(ctx context.Context) (*domain.DashboardStats, error)

	SubmitCalls []domain.AdminRegistrationSubmission
	ReviewCalls int
}

// NewMockAdminAPI creates a new MockAdminAPI with default behaviors.
func NewMockAdminAPI() *MockAdminAPI {
	return &MockAdminAPI{}
}

// AvailableRanks lists assignable ranks.
func (m *MockAdminAPI) AvailableRanks(ctx context.Context) ([]domain.Rank, error) {
	if m.AvailableRanksFunc != nil {
		return m.AvailableRanksFunc(ctx)
	}
	return []domain.Rank{}, nil
}

// SubmitRegistration submits an admin registration request.
func (m *MockAdminAPI) SubmitRegistration(ctx context.Context, sub domain.AdminRegistrationSubmission) (string, error) {
	m.SubmitCalls = append(m.SubmitCalls, sub)
	if m.SubmitRegistrationFunc != nil {
		return m.SubmitRegistrationFunc(ctx, sub)
	}
	return "req-1", nil
}

// PendingRequests lists PENDING requests.
func (m *MockAdminAPI) PendingRequests(ctx context.Context) ([]domain.AdminRegistrationRequest, error) {
	if m.PendingRequestsFunc != nil {
		return m.PendingRequestsFunc(ctx)
	}
	return []domain.AdminRegistrationRequest{}, nil
}

// RequestDetails fetches one request.
func (m *MockAdminAPI) RequestDetails(ctx context.Context, requestID string) (*domain.AdminRegistrationRequest, error) {
	if m.RequestDetailsFunc != nil {
		return m.RequestDetailsFunc(ctx, requestID)
	}
	return nil, domain.ErrRequestNotFound
}

// Review records a review decision.
func (m *MockAdminAPI) Review(ctx context.Context, requestID string, decision domain.ReviewDecision) (*domain.AdminRegistrationRequest, error) {
	m.ReviewCalls++
	if m.ReviewFunc != nil {
		return m.ReviewFunc(ctx, requestID, decision)
	}
	return nil, domain.ErrRequestNotFound
}

// RankAdmins lists the admins assigned to a rank.
func (m *MockAdminAPI) RankAdmins(ctx context.Context, rankID uint) ([]domain.AdminRef, error) {
	if m.RankAdminsFunc != nil {
		return m.RankAdminsFunc(ctx, rankID)
	}
	return []domain.AdminRef{}, nil
}

// DashboardStats fetches the admin dashboard summary.
func (m *MockAdminAPI) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	if m.DashboardStatsFunc != nil {
		return m.DashboardStatsFunc(ctx)
	}
	return &domain.DashboardStats{ManagedRanks: []domain.ManagedRank{}}, nil
}
