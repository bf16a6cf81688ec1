package domain

import (
	"context"
	"time"
)

// EventType identifies a session or workflow event
type EventType string

const (
	// Session events
	SessionRestoredEvent    EventType = "SESSION_RESTORED"
	SessionInvalidatedEvent EventType = "SESSION_INVALIDATED"
	UserLoginEvent          EventType = "USER_LOGIN"
	UserLoginFailureEvent   EventType = "USER_LOGIN_FAILED"
	UserRegistrationEvent   EventType = "USER_REGISTERED"
	UserLogoutEvent         EventType = "USER_LOGOUT"
	ProfileUpdatedEvent     EventType = "PROFILE_UPDATED"

	// Registration workflow events
	RequestSubmittedEvent EventType = "ADMIN_REQUEST_SUBMITTED"
	RequestReviewedEvent  EventType = "ADMIN_REQUEST_REVIEWED"

	// Rank assignment events
	AssignmentRequestedEvent EventType = "RANK_ASSIGNMENT_REQUESTED"
	RankSelfUnassignedEvent  EventType = "RANK_SELF_UNASSIGNED"
)

// Event records a business event that occurred in the client core.
type Event struct {
	Type      EventType              `json:"type"`
	UserID    uint                   `json:"user_id,omitempty"`
	Email     string                 `json:"email,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	ErrorMsg  string                 `json:"error_msg,omitempty"`
	Success   bool                   `json:"success"`
}

// EventSink receives events; implementations must not block user actions.
type EventSink interface {
	Publish(ctx context.Context, event *Event)
}

// NewEvent creates an event with common fields populated.
func NewEvent(eventType EventType) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Metadata:  make(map[string]interface{}),
		Success:   true,
	}
}

// WithError marks the event as failed and records the message.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.ErrorMsg = err.Error()
	}
	return e
}

// WithUser sets the principal the event concerns.
func (e *Event) WithUser(u *User) *Event {
	if u != nil {
		e.UserID = u.ID
		e.Email = u.Email
	}
	return e
}

// WithMetadata adds a metadata entry.
func (e *Event) WithMetadata(key string, value interface{}) *Event {
	e.Metadata[key] = value
	return e
}
