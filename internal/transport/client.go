package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// Error codes the platform API attaches to failure envelopes.
const (
	codeAuthInvalid        = "AUTH_INVALID"
	codeStaleRankSelection = "STALE_RANK_SELECTION"
	codeAdminRecordMissing = "ADMIN_RECORD_MISSING"
	codeRequestReviewed    = "REQUEST_ALREADY_REVIEWED"
	codeRequestNotFound    = "REQUEST_NOT_FOUND"
)

// APIError is a server-reported failure that maps to no known error class.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client talks to the platform API. Every authenticated request carries
// the stored bearer token, attached by the transport rather than by call
// sites, and any auth-invalid response clears the credential store.
type Client struct {
	baseURL string
	http    *http.Client
	store   domain.CredentialStore
	logger  *slog.Logger

	mu        sync.RWMutex
	onInvalid func()
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the transport logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a platform API client. The credential store supplies
// the bearer token and is cleared when the server invalidates it.
func NewClient(baseURL string, store domain.CredentialStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		logger:  slog.Default(),
	}
	c.http = &http.Client{
		Timeout: 15 * time.Second,
		Transport: &bearerTransport{
			store: store,
			next:  http.DefaultTransport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetInvalidationHandler registers the reaction to an auth-invalid
// response. The credential store is already cleared when it runs.
func (c *Client) SetInvalidationHandler(fn func()) {
	c.mu.Lock()
	c.onInvalid = fn
	c.mu.Unlock()
}

// bearerTransport attaches Authorization and a request ID to every
// outgoing request.
type bearerTransport struct {
	store domain.CredentialStore
	next  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	out := req.Clone(req.Context())
	token, err := t.store.Get(req.Context(), domain.TokenKey)
	if err == nil && token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	out.Header.Set("X-Request-ID", uuid.NewString())
	return t.next.RoundTrip(out)
}

// envelope is the platform's JSON response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// do issues a request and decodes the response envelope. fallback is the
// per-operation message used when the server supplies none.
func (c *Client) do(ctx context.Context, method, path string, body any, fallback string) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: fallback}
	}
	defer resp.Body.Close()

	var env envelope
	if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil && resp.StatusCode < http.StatusBadRequest {
		return nil, &APIError{Status: resp.StatusCode, Message: fallback}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleAuthInvalid(ctx)
		return nil, fmt.Errorf("%w: %s", domain.ErrAuthInvalid, serverMessage(&env, fallback))
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		return nil, c.failure(resp.StatusCode, &env, fallback)
	}

	return &env, nil
}

// failure translates a failed envelope into the error taxonomy.
func (c *Client) failure(status int, env *envelope, fallback string) error {
	msg := serverMessage(env, fallback)
	switch env.Code {
	case codeAuthInvalid:
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, msg)
	case codeStaleRankSelection:
		return fmt.Errorf("%w: %s", domain.ErrStaleRankSelection, msg)
	case codeAdminRecordMissing:
		return fmt.Errorf("%w: %s", domain.ErrAdminRecordMissing, msg)
	case codeRequestReviewed:
		return fmt.Errorf("%w: %s", domain.ErrRequestTerminal, msg)
	case codeRequestNotFound:
		return fmt.Errorf("%w: %s", domain.ErrRequestNotFound, msg)
	}
	return &APIError{Status: status, Message: msg}
}

// handleAuthInvalid clears both credential keys and notifies the
// registered handler. It runs for any 401, regardless of which call
// triggered it.
func (c *Client) handleAuthInvalid(ctx context.Context) {
	if err := c.store.Remove(ctx, domain.TokenKey); err != nil {
		c.logger.Warn("failed to clear stored token", "error", err)
	}
	if err := c.store.Remove(ctx, domain.UserDataKey); err != nil {
		c.logger.Warn("failed to clear stored user data", "error", err)
	}
	c.mu.RLock()
	fn := c.onInvalid
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func serverMessage(env *envelope, fallback string) string {
	if env.Error != "" {
		return env.Error
	}
	if env.Message != "" {
		return env.Message
	}
	return fallback
}

func decodeData(env *envelope, dst any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("response carried no data")
	}
	return json.Unmarshal(env.Data, dst)
}
