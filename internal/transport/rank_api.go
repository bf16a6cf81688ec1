package transport

import (
	"context"
	"fmt"
	"net/http"
)

// RankClient implements domain.RankAPI.
type RankClient struct {
	client *Client
}

// NewRankClient creates the rank assignment transport.
func NewRankClient(client *Client) *RankClient {
	return &RankClient{client: client}
}

// RequestAssignment implements domain.RankAPI.
func (r *RankClient) RequestAssignment(ctx context.Context, rankCode, requestReason string) error {
	body := struct {
		RankCode      string `json:"rankCode"`
		RequestReason string `json:"requestReason"`
	}{RankCode: rankCode, RequestReason: requestReason}

	_, err := r.client.do(ctx, http.MethodPost, "/rank-assignment-requests", body, "Failed to submit assignment request")
	return err
}

// SelfUnassign implements domain.RankAPI.
func (r *RankClient) SelfUnassign(ctx context.Context, rankID uint) error {
	path := fmt.Sprintf("/rank-admins/self-unassign/%d", rankID)
	_, err := r.client.do(ctx, http.MethodDelete, path, nil, "Failed to unassign from rank")
	return err
}
