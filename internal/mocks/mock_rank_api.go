package mocks

import "context"

// MockRankAPI implements domain.RankAPI for testing.
type MockRankAPI struct {
	RequestAssignmentFunc func(ctx context.Context, rankCode, requestReason string) error
	SelfUnassignFunc      func(ctx context.Context, rankID uint) error

	AssignmentCalls int
	UnassignCalls   []uint
}

// NewMockRankAPI creates a new MockRankAPI with default behaviors.
func NewMockRankAPI() *MockRankAPI {
	return &MockRankAPI{}
}

// RequestAssignment submits an additional-rank request.
func (m *MockRankAPI) RequestAssignment(ctx context.Context, rankCode, requestReason string) error {
	m.AssignmentCalls++
	if m.RequestAssignmentFunc != nil {
		return m.RequestAssignmentFunc(ctx, rankCode, requestReason)
	}
	return nil
}

// SelfUnassign relinquishes a managed rank.
func (m *MockRankAPI) SelfUnassign(ctx context.Context, rankID uint) error {
	m.UnassignCalls = append(m.UnassignCalls, rankID)
	if m.SelfUnassignFunc != nil {
		return m.SelfUnassignFunc(ctx, rankID)
	}
	return nil
}
