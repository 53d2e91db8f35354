package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category groups audit events by the kind of record they touch.
type Category string

const (
	CategoryAccount  Category = "account"
	CategoryMember   Category = "member"
	CategoryAdmin    Category = "admin"
	CategoryComms    Category = "comms"
	CategorySecurity Category = "security"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionReassign    Action = "reassign"
	ActionSend        Action = "send"
	ActionLogin       Action = "login"
	ActionLogout      Action = "logout"
	ActionKeyRejected Action = "admin_key_rejected"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is a single audit log entry.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actor_id"`
	ActorEmail   string    `json:"actor_email"`
	ResourceID   string    `json:"resource_id"`
	ResourceType string    `json:"resource_type"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
}

// Actor identifies who performed an action and from where.
type Actor struct {
	ID        string
	Email     string
	IPAddress string
	UserAgent string
}

// NewEvent creates an audit event for actor at the given time.
// PRE: category and action are non-empty
// POST: Returns an info-level Event with a fresh ID
func NewEvent(actor Actor, category Category, action Action, at time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Timestamp:  at,
		Category:   category,
		Action:     action,
		Severity:   SeverityInfo,
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets resource information.
// PRE: resourceType and resourceID are non-empty
// POST: Event resource fields are populated
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}
