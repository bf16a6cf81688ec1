package domain

import "context"

// Credential store keys. These mirror the keys older client builds used,
// so an upgrade keeps the stored session.
const (
	TokenKey    = "userToken"
	UserDataKey = "userData"
)

// CredentialStore is a durable key-value store for the session token and
// the cached user snapshot. Implementations must survive process restarts.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// AuthPayload is the normalized success payload of login/register. The
// wire shape may carry the principal under either "user" or "rider";
// the transport resolves that before anything else sees it.
type AuthPayload struct {
	User  *User
	Token string
}

// AuthAPI is the authentication transport boundary.
type AuthAPI interface {
	Login(ctx context.Context, req LoginRequest) (*AuthPayload, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthPayload, error)
	Me(ctx context.Context) (*User, error)
	// TestAuth is a boolean liveness check for the stored token.
	TestAuth(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
}

// AdminAPI is the registration workflow transport boundary.
type AdminAPI interface {
	AvailableRanks(ctx context.Context) ([]Rank, error)
	SubmitRegistration(ctx context.Context, sub AdminRegistrationSubmission) (requestID string, err error)
	PendingRequests(ctx context.Context) ([]AdminRegistrationRequest, error)
	RequestDetails(ctx context.Context, requestID string) (*AdminRegistrationRequest, error)
	Review(ctx context.Context, requestID string, decision ReviewDecision) (*AdminRegistrationRequest, error)
	RankAdmins(ctx context.Context, rankID uint) ([]AdminRef, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

// RankAPI is the rank assignment transport boundary.
type RankAPI interface {
	RequestAssignment(ctx context.Context, rankCode, requestReason string) error
	SelfUnassign(ctx context.Context, rankID uint) error
}

// SessionService is the single source of truth for who is logged in.
type SessionService interface {
	Restore(ctx context.Context) error
	Login(ctx context.Context, req LoginRequest) (*User, error)
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error)
	// TestAuth revalidates the restored session lazily against the server.
	TestAuth(ctx context.Context) bool
	CurrentUser() *User
	Snapshot() Session
	IsAdmin() bool
	IsSuperAdmin() bool
}

// PolicyService derives capabilities and routing from a user record.
type PolicyService interface {
	RoleOf(u *User) Role
	RootFor(u *User) Root
	Can(role Role, resource, action string) (bool, error)
}

// RegistrationService governs the admin registration request lifecycle.
type RegistrationService interface {
	FetchAvailableRanks(ctx context.Context) ([]Rank, error)
	Submit(ctx context.Context, sub AdminRegistrationSubmission) (requestID string, err error)
	ListPending(ctx context.Context) ([]AdminRegistrationRequest, error)
	RequestDetails(ctx context.Context, requestID string) (*AdminRegistrationRequest, error)
	Review(ctx context.Context, requestID string, decision ReviewDecision) (*AdminRegistrationRequest, error)
	// InvalidateAvailableRanks drops the cached snapshot; assignment and
	// unassignment elsewhere change availability globally.
	InvalidateAvailableRanks()
}

// ConfirmFunc asks the user to confirm a destructive operation.
type ConfirmFunc func() bool

// AssignmentService handles post-approval rank operations.
type AssignmentService interface {
	RefreshDashboard(ctx context.Context) (*DashboardStats, error)
	ManagedRanks() []ManagedRank
	RequestAssignment(ctx context.Context, rankCode, requestReason string) error
	SelfUnassign(ctx context.Context, rankID uint, confirm ConfirmFunc) error
}
