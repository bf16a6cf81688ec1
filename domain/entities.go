package domain

import (
	"strings"
	"time"
)

// Role is the server-assigned role of a user. The client never changes it.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether the role is one the platform knows about.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// PaymentMethod is the commuter's preferred way to pay for trips.
// Older clients sent free-form strings; only the closed set is accepted now.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentCard PaymentMethod = "CARD"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentCard
}

// User represents a platform account as returned by the server
type User struct {
	ID                     uint          `json:"id"`
	FirstName              string        `json:"firstName"`
	LastName               string        `json:"lastName"`
	Email                  string        `json:"email"`
	PhoneNumber            string        `json:"phoneNumber"`
	Role                   Role          `json:"role"`
	PreferredPaymentMethod PaymentMethod `json:"preferredPaymentMethod,omitempty"`
	ProfilePicture         string        `json:"profilePicture,omitempty"`
	AccountStatus          string        `json:"accountStatus,omitempty"`
	IsVerified             bool          `json:"isVerified"`
	Rating                 float64       `json:"rating,omitempty"`
	TotalTrips             int           `json:"totalTrips,omitempty"`
	LastLogin              *time.Time    `json:"lastLogin,omitempty"`
	ManagedRanks           []string      `json:"managedRanks,omitempty"`
	CreatedAt              time.Time     `json:"createdAt"`
	UpdatedAt              time.Time     `json:"updatedAt"`
}

// IsAdmin reports whether the user is a rank administrator.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsSuperAdmin reports whether the user reviews admin requests platform-wide.
func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// Session is the in-memory view of the authenticated principal.
type Session struct {
	User    *User
	Loading bool
	Error   string
}

// Credentials pairs the bearer token with the cached user snapshot.
// The pair is written and cleared together; a half-present pair is
// treated as no session at all.
type Credentials struct {
	Token string
	User  *User
}

// Valid reports whether both halves of the pair are present.
func (c *Credentials) Valid() bool {
	return c != nil && c.Token != "" && c.User != nil
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries a commuter registration payload.
type RegisterRequest struct {
	FirstName              string        `json:"firstName"`
	LastName               string        `json:"lastName"`
	Email                  string        `json:"email"`
	PhoneNumber            string        `json:"phoneNumber"`
	Password               string        `json:"password"`
	PreferredPaymentMethod PaymentMethod `json:"preferredPaymentMethod"`
}

// ProfileUpdate is a partial update merged into the active user.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName              *string        `json:"firstName,omitempty"`
	LastName               *string        `json:"lastName,omitempty"`
	PhoneNumber            *string        `json:"phoneNumber,omitempty"`
	PreferredPaymentMethod *PaymentMethod `json:"preferredPaymentMethod,omitempty"`
	ProfilePicture         *string        `json:"profilePicture,omitempty"`
}

// ApplyTo merges the update into a copy of the user.
func (p *ProfileUpdate) ApplyTo(u *User) *User {
	merged := *u
	if p.FirstName != nil {
		merged.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		merged.LastName = *p.LastName
	}
	if p.PhoneNumber != nil {
		merged.PhoneNumber = *p.PhoneNumber
	}
	if p.PreferredPaymentMethod != nil {
		merged.PreferredPaymentMethod = *p.PreferredPaymentMethod
	}
	if p.ProfilePicture != nil {
		merged.ProfilePicture = *p.ProfilePicture
	}
	merged.UpdatedAt = time.Now().UTC()
	return &merged
}

// AdminRef identifies an administrator assigned to a rank.
type AdminRef struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// TaxiTerminal is a destination served from a rank.
type TaxiTerminal struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Fare              float64   `json:"fare"`
	TravelTime        string    `json:"travelTime"`
	Distance          string    `json:"distance"`
	DepartureSchedule string    `json:"departureSchedule,omitempty"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Rank is a managed taxi-rank resource. Code is the stable identifier.
type Rank struct {
	ID             uint           `json:"id"`
	Name           string         `json:"name"`
	Code           string         `json:"code"`
	Description    string         `json:"description,omitempty"`
	Address        string         `json:"address,omitempty"`
	City           string         `json:"city"`
	Province       string         `json:"province,omitempty"`
	Latitude       float64        `json:"latitude,omitempty"`
	Longitude      float64        `json:"longitude,omitempty"`
	ContactPhone   string         `json:"contactPhone,omitempty"`
	ContactEmail   string         `json:"contactEmail,omitempty"`
	OperatingHours string         `json:"operatingHours,omitempty"`
	Capacity       int            `json:"capacity,omitempty"`
	IsActive       bool           `json:"isActive"`
	RankAdmins     []AdminRef     `json:"rankAdmins"`
	Terminals      []TaxiTerminal `json:"terminals,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Available reports whether the rank can be claimed by a new admin.
// Availability is recomputed from every server response, never cached,
// because any assignment elsewhere in the system changes it.
func (r *Rank) Available() bool {
	return len(r.RankAdmins) == 0
}

// ManagedRank is the admin-relative view of a rank the current user
// controls, as carried by the dashboard stats response.
type ManagedRank struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	City string `json:"city"`
}

// DashboardStats summarises the admin dashboard.
type DashboardStats struct {
	ManagedRanksCount int           `json:"managedRanksCount"`
	ManagedRanks      []ManagedRank `json:"managedRanks"`
}

// RequestStatus is the lifecycle state of an admin registration request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether s may move to next. The only legal
// transitions are PENDING to APPROVED and PENDING to REJECTED.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	return s == StatusPending && next.Terminal()
}

// Transition returns the next status, or ErrInvalidTransition if the
// move is not allowed.
func (s RequestStatus) Transition(next RequestStatus) (RequestStatus, error) {
	if !s.CanTransition(next) {
		return s, ErrInvalidTransition
	}
	return next, nil
}

// AdminRegistrationSubmission is the client-side draft of an admin
// registration request. It is never persisted locally; it either
// reaches the server and becomes PENDING or stays on the form.
type AdminRegistrationSubmission struct {
	FirstName              string        `json:"firstName"`
	LastName               string        `json:"lastName"`
	Email                  string        `json:"email"`
	PhoneNumber            string        `json:"phoneNumber"`
	Password               string        `json:"password"`
	ConfirmPassword        string        `json:"-"`
	PreferredPaymentMethod PaymentMethod `json:"preferredPaymentMethod"`
	SelectedRankCodes      []string      `json:"selectedRankCodes"`
	Designation            string        `json:"designation"`
	Justification          string        `json:"justification"`
	ProfessionalExperience string        `json:"professionalExperience"`
	AdminNotes             string        `json:"adminNotes,omitempty"`
}

// AdminRegistrationRequest is the server-owned registration request,
// mirrored locally for display. The client never assigns ID or Status.
type AdminRegistrationRequest struct {
	ID              string        `json:"id"`
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	Email           string        `json:"email"`
	PhoneNumber     string        `json:"phoneNumber"`
	RankCodes       []string      `json:"rankCodes"`
	Status          RequestStatus `json:"status"`
	SubmittedAt     time.Time     `json:"submittedAt"`
	ReviewedAt      *time.Time    `json:"reviewedAt,omitempty"`
	ReviewedBy      string        `json:"reviewedBy,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
}

// ReviewDecision is a reviewer's verdict on a pending request.
type ReviewDecision struct {
	Approved        bool   `json:"approved"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

// Validate rejects a rejection that carries no reason. This is checked
// before the decision is ever sent to the server.
func (d ReviewDecision) Validate() error {
	if !d.Approved && strings.TrimSpace(d.RejectionReason) == "" {
		return ErrRejectionReasonRequired
	}
	return nil
}

// Root is the navigable root a session routes to.
type Root string

const (
	RootAuth       Root = "Auth"
	RootCommuter   Root = "Commuter"
	RootAdmin      Root = "Admin"
	RootSuperAdmin Root = "SuperAdmin"
)
