package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// AssignmentServiceImpl implements domain.AssignmentService: the
// post-approval operations of an active rank admin, kept consistent with
// the computed pool of available ranks.
type AssignmentServiceImpl struct {
	adminAPI     domain.AdminAPI
	rankAPI      domain.RankAPI
	policy       domain.PolicyService
	session      domain.SessionService
	registration domain.RegistrationService
	logger       *slog.Logger
	events       domain.EventSink

	mu      sync.Mutex
	managed []domain.ManagedRank
	// gen discards dashboard responses that arrive after the view they
	// were fetched for has been superseded.
	gen uint64
}

// AssignmentOption configures the assignment service.
type AssignmentOption func(*AssignmentServiceImpl)

// WithAssignmentEventSink publishes assignment events to the given sink.
func WithAssignmentEventSink(sink domain.EventSink) AssignmentOption {
	return func(s *AssignmentServiceImpl) { s.events = sink }
}

// NewAssignmentService creates the rank assignment coordinator.
func NewAssignmentService(adminAPI domain.AdminAPI, rankAPI domain.RankAPI, policy domain.PolicyService, session domain.SessionService, registration domain.RegistrationService, logger *slog.Logger, opts ...AssignmentOption) *AssignmentServiceImpl {
	s := &AssignmentServiceImpl{
		adminAPI:     adminAPI,
		rankAPI:      rankAPI,
		policy:       policy,
		session:      session,
		registration: registration,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshDashboard implements domain.AssignmentService. A response that
// arrives after the view was superseded is discarded silently.
func (s *AssignmentServiceImpl) RefreshDashboard(ctx context.Context) (*domain.DashboardStats, error) {
	if err := s.requireManager(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	stats, err := s.adminAPI.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.managed = stats.ManagedRanks
	}
	s.mu.Unlock()

	return stats, nil
}

// ManagedRanks implements domain.AssignmentService.
func (s *AssignmentServiceImpl) ManagedRanks() []domain.ManagedRank {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ManagedRank, len(s.managed))
	copy(out, s.managed)
	return out
}

// RequestAssignment implements domain.AssignmentService. A missing admin
// record on the server (left dangling by an earlier self-unassignment)
// comes back as ErrAdminRecordMissing; the caller must steer the user to
// reauthenticate, not retry.
func (s *AssignmentServiceImpl) RequestAssignment(ctx context.Context, rankCode, requestReason string) error {
	if err := s.requireManager(); err != nil {
		return err
	}
	if strings.TrimSpace(rankCode) == "" {
		return domain.ErrNoRankSelected
	}
	if strings.TrimSpace(requestReason) == "" {
		return domain.ErrReasonRequired
	}

	if err := s.rankAPI.RequestAssignment(ctx, rankCode, requestReason); err != nil {
		s.publish(ctx, domain.NewEvent(domain.AssignmentRequestedEvent).WithError(err).
			WithMetadata("rank_code", rankCode))
		return err
	}

	// Assignment changes availability globally.
	s.registration.InvalidateAvailableRanks()
	s.publish(ctx, domain.NewEvent(domain.AssignmentRequestedEvent).WithUser(s.session.CurrentUser()).
		WithMetadata("rank_code", rankCode))
	return nil
}

// SelfUnassign implements domain.AssignmentService. The operation is
// destructive and irreversible from the client, so it requires explicit
// confirmation before the server is called. On success the rank is
// removed from the managed-rank view.
func (s *AssignmentServiceImpl) SelfUnassign(ctx context.Context, rankID uint, confirm domain.ConfirmFunc) error {
	if err := s.requireManager(); err != nil {
		return err
	}
	if confirm == nil || !confirm() {
		return domain.ErrConfirmationDeclined
	}

	if err := s.rankAPI.SelfUnassign(ctx, rankID); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.managed[:0]
	for _, rank := range s.managed {
		if rank.ID != rankID {
			kept = append(kept, rank)
		}
	}
	s.managed = kept
	s.gen++
	s.mu.Unlock()

	// The freed rank is available again for new registrations.
	s.registration.InvalidateAvailableRanks()
	s.publish(ctx, domain.NewEvent(domain.RankSelfUnassignedEvent).WithUser(s.session.CurrentUser()).
		WithMetadata("rank_id", rankID))
	return nil
}

func (s *AssignmentServiceImpl) requireManager() error {
	role := s.policy.RoleOf(s.session.CurrentUser())
	ok, err := s.policy.Can(role, "ranks", "manage")
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPermissionDenied
	}
	return nil
}

func (s *AssignmentServiceImpl) publish(ctx context.Context, event *domain.Event) {
	if s.events != nil {
		s.events.Publish(ctx, event)
	}
}
