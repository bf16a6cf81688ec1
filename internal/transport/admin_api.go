package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// AdminClient implements domain.AdminAPI.
type AdminClient struct {
	client *Client
}

// NewAdminClient creates the registration workflow transport.
func NewAdminClient(client *Client) *AdminClient {
	return &AdminClient{client: client}
}

// AvailableRanks implements domain.AdminAPI. An empty list with a success
// envelope is a valid state, not a failure.
func (a *AdminClient) AvailableRanks(ctx context.Context) ([]domain.Rank, error) {
	env, err := a.client.do(ctx, http.MethodGet, "/admin-registration/available-ranks", nil, "Failed to get available ranks")
	if err != nil {
		return nil, err
	}
	ranks := []domain.Rank{}
	if len(env.Data) > 0 {
		if err := decodeData(env, &ranks); err != nil {
			return nil, err
		}
	}
	return ranks, nil
}

// SubmitRegistration implements domain.AdminAPI.
func (a *AdminClient) SubmitRegistration(ctx context.Context, sub domain.AdminRegistrationSubmission) (string, error) {
	env, err := a.client.do(ctx, http.MethodPost, "/admin-registration/request", sub, "Failed to submit registration request")
	if err != nil {
		return "", err
	}
	var data struct {
		RequestID string `json:"requestId"`
	}
	if err := decodeData(env, &data); err != nil {
		return "", err
	}
	return data.RequestID, nil
}

// PendingRequests implements domain.AdminAPI.
func (a *AdminClient) PendingRequests(ctx context.Context) ([]domain.AdminRegistrationRequest, error) {
	env, err := a.client.do(ctx, http.MethodGet, "/admin-registration/status/PENDING", nil, "Failed to get pending requests")
	if err != nil {
		return nil, err
	}
	requests := []domain.AdminRegistrationRequest{}
	if len(env.Data) > 0 {
		if err := decodeData(env, &requests); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

// RequestDetails implements domain.AdminAPI.
func (a *AdminClient) RequestDetails(ctx context.Context, requestID string) (*domain.AdminRegistrationRequest, error) {
	env, err := a.client.do(ctx, http.MethodGet, "/admin/request/"+requestID, nil, "Failed to get request details")
	if err != nil {
		return nil, err
	}
	var request domain.AdminRegistrationRequest
	if err := decodeData(env, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// Review implements domain.AdminAPI.
func (a *AdminClient) Review(ctx context.Context, requestID string, decision domain.ReviewDecision) (*domain.AdminRegistrationRequest, error) {
	path := fmt.Sprintf("/admin/request/%s/review", requestID)
	env, err := a.client.do(ctx, http.MethodPost, path, decision, "Failed to review request")
	if err != nil {
		return nil, err
	}
	var data struct {
		Request domain.AdminRegistrationRequest `json:"request"`
	}
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	return &data.Request, nil
}

// RankAdmins implements domain.AdminAPI.
func (a *AdminClient) RankAdmins(ctx context.Context, rankID uint) ([]domain.AdminRef, error) {
	path := fmt.Sprintf("/ranks/%d/admins", rankID)
	env, err := a.client.do(ctx, http.MethodGet, path, nil, "Failed to get rank admins")
	if err != nil {
		return nil, err
	}
	admins := []domain.AdminRef{}
	if len(env.Data) > 0 {
		if err := decodeData(env, &admins); err != nil {
			return nil, err
		}
	}
	return admins, nil
}

// DashboardStats implements domain.AdminAPI.
func (a *AdminClient) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	env, err := a.client.do(ctx, http.MethodGet, "/admin/dashboard-stats", nil, "Failed to get dashboard stats")
	if err != nil {
		return nil, err
	}
	var stats domain.DashboardStats
	if err := decodeData(env, &stats); err != nil {
		return nil, err
	}
	if stats.ManagedRanks == nil {
		stats.ManagedRanks = []domain.ManagedRank{}
	}
	return &stats, nil
}
