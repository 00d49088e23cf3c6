package events

import (
	"time"

	"github.com/byZeet/centralita-neron/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated     EventType = "ticket_created"
	EventTicketPickedUp    EventType = "ticket_picked_up"
	EventTicketTransferred EventType = "ticket_transferred"
	EventTicketCompleted   EventType = "ticket_completed"
	EventTicketsCleaned    EventType = "tickets_cleaned"
	EventPresenceChanged   EventType = "presence_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     *int64      `json:"actor,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID   int64  `json:"ticket_id"`
	ClientName string `json:"client_name"`
	CreatedBy  *int64 `json:"created_by,omitempty"`
}

// TicketPickedUpPayload payload.
type TicketPickedUpPayload struct {
	TicketID   int64 `json:"ticket_id"`
	AssignedTo int64 `json:"assigned_to"`
}

// TicketTransferredPayload payload.
type TicketTransferredPayload struct {
	TicketID int64 `json:"ticket_id"`
	From     int64 `json:"from"`
	To       int64 `json:"to"`
}

// TicketCompletedPayload payload.
type TicketCompletedPayload struct {
	TicketID    int64 `json:"ticket_id"`
	CompletedBy int64 `json:"completed_by"`
}

// TicketsCleanedPayload payload.
type TicketsCleanedPayload struct {
	Deleted   int64  `json:"deleted"`
	Trigger   string `json:"trigger"`
	MaxAgeSet bool   `json:"max_age_set"`
}

// PresenceChangedPayload payload.
type PresenceChangedPayload struct {
	OperatorID int64                 `json:"operator_id"`
	NewStatus  domain.OperatorStatus `json:"new_status"`
}
