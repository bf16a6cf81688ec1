package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// RegistrationServiceImpl implements domain.RegistrationService, the
// state machine behind admin registration requests: DRAFT on the client,
// PENDING once the server accepts, APPROVED or REJECTED after review.
type RegistrationServiceImpl struct {
	adminAPI domain.AdminAPI
	policy   domain.PolicyService
	session  domain.SessionService
	logger   *slog.Logger
	events   domain.EventSink

	mu sync.Mutex
	// availableCodes is the snapshot taken by the latest fetch. Selected
	// codes are validated against it before any network call; it is
	// dropped whenever an assignment changes availability globally.
	availableCodes map[string]struct{}
}

// RegistrationOption configures the registration service.
type RegistrationOption func(*RegistrationServiceImpl)

// WithRegistrationEventSink publishes workflow events to the given sink.
func WithRegistrationEventSink(sink domain.EventSink) RegistrationOption {
	return func(s *RegistrationServiceImpl) { s.events = sink }
}

// NewRegistrationService creates the registration workflow service.
func NewRegistrationService(adminAPI domain.AdminAPI, policy domain.PolicyService, session domain.SessionService, logger *slog.Logger, opts ...RegistrationOption) *RegistrationServiceImpl {
	s := &RegistrationServiceImpl{
		adminAPI: adminAPI,
		policy:   policy,
		session:  session,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchAvailableRanks implements domain.RegistrationService. An empty
// result is a valid state, distinct from a failed request. Availability
// is recomputed from the response, never trusted from an earlier fetch.
func (s *RegistrationServiceImpl) FetchAvailableRanks(ctx context.Context) ([]domain.Rank, error) {
	ranks, err := s.adminAPI.AvailableRanks(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]domain.Rank, 0, len(ranks))
	codes := make(map[string]struct{}, len(ranks))
	for i := range ranks {
		if ranks[i].Available() {
			available = append(available, ranks[i])
			codes[ranks[i].Code] = struct{}{}
		}
	}

	s.mu.Lock()
	s.availableCodes = codes
	s.mu.Unlock()

	return available, nil
}

// Submit implements domain.RegistrationService. Every client-side
// invariant is checked before the request leaves the device; the server
// stays authoritative for races with other submissions.
func (s *RegistrationServiceImpl) Submit(ctx context.Context, sub domain.AdminRegistrationSubmission) (string, error) {
	if err := s.validateSubmission(sub); err != nil {
		return "", err
	}

	requestID, err := s.adminAPI.SubmitRegistration(ctx, sub)
	if err != nil {
		// A stale-selection rejection means another admin claimed one of
		// the selected ranks first; the caller should re-fetch, not retry.
		s.publish(ctx, domain.NewEvent(domain.RequestSubmittedEvent).WithError(err))
		return "", err
	}

	s.publish(ctx, domain.NewEvent(domain.RequestSubmittedEvent).
		WithMetadata("request_id", requestID).
		WithMetadata("rank_codes", sub.SelectedRankCodes))
	return requestID, nil
}

func (s *RegistrationServiceImpl) validateSubmission(sub domain.AdminRegistrationSubmission) error {
	if sub.FirstName == "" || sub.LastName == "" || sub.Email == "" ||
		sub.PhoneNumber == "" || sub.Password == "" {
		return domain.ErrMissingRequiredFields
	}
	if !emailRegexp.MatchString(sub.Email) {
		return domain.ErrEmailInvalid
	}
	if len(sub.Password) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}
	if sub.Password != sub.ConfirmPassword {
		return domain.ErrPasswordMismatch
	}
	if !sub.PreferredPaymentMethod.Valid() {
		return domain.ErrInvalidPaymentMethod
	}
	if len(sub.SelectedRankCodes) == 0 {
		return domain.ErrNoRankSelected
	}

	s.mu.Lock()
	codes := s.availableCodes
	s.mu.Unlock()

	var invalid []string
	for _, code := range sub.SelectedRankCodes {
		if _, ok := codes[code]; !ok {
			invalid = append(invalid, code)
		}
	}
	if len(invalid) > 0 {
		return domain.InvalidRankCodesError(invalid)
	}
	return nil
}

// ListPending implements domain.RegistrationService.
func (s *RegistrationServiceImpl) ListPending(ctx context.Context) ([]domain.AdminRegistrationRequest, error) {
	if err := s.requireReviewer(); err != nil {
		return nil, err
	}
	return s.adminAPI.PendingRequests(ctx)
}

// RequestDetails implements domain.RegistrationService.
func (s *RegistrationServiceImpl) RequestDetails(ctx context.Context, requestID string) (*domain.AdminRegistrationRequest, error) {
	if err := s.requireReviewer(); err != nil {
		return nil, err
	}
	return s.adminAPI.RequestDetails(ctx, requestID)
}

// Review implements domain.RegistrationService. The decision is
// validated before it is sent; a rejection without a reason never
// reaches the server. On success the request is terminal and the
// detail view is no longer actionable.
func (s *RegistrationServiceImpl) Review(ctx context.Context, requestID string, decision domain.ReviewDecision) (*domain.AdminRegistrationRequest, error) {
	if err := s.requireReviewer(); err != nil {
		return nil, err
	}
	if err := decision.Validate(); err != nil {
		return nil, err
	}

	request, err := s.adminAPI.Review(ctx, requestID, decision)
	if err != nil {
		return nil, err
	}

	// Approval assigns ranks, which changes availability everywhere.
	if decision.Approved {
		s.InvalidateAvailableRanks()
	}
	s.publish(ctx, domain.NewEvent(domain.RequestReviewedEvent).
		WithMetadata("request_id", requestID).
		WithMetadata("approved", decision.Approved))
	return request, nil
}

// InvalidateAvailableRanks implements domain.RegistrationService.
func (s *RegistrationServiceImpl) InvalidateAvailableRanks() {
	s.mu.Lock()
	s.availableCodes = nil
	s.mu.Unlock()
}

func (s *RegistrationServiceImpl) requireReviewer() error {
	role := s.policy.RoleOf(s.session.CurrentUser())
	ok, err := s.policy.Can(role, "requests", "review")
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPermissionDenied
	}
	return nil
}

func (s *RegistrationServiceImpl) publish(ctx context.Context, event *domain.Event) {
	if s.events != nil {
		s.events.Publish(ctx, event)
	}
}
