package dto

import (
	"time"

	"github.com/byZeet/centralita-neron/internal/domain"
)

// CreateTicketRequest payload for POST /tickets.
type CreateTicketRequest struct {
	ClientName       string `json:"client_name"`
	ClientNumber     string `json:"client_number"`
	IssueDescription string `json:"issue_description"`
}

// UpdateTicketRequest payload for PUT /tickets/:id. Present fields express a
// transition intent; the server validates the combination against the state
// table instead of persisting whatever arrives.
type UpdateTicketRequest struct {
	AssignedTo      *int64  `json:"assigned_to"`
	Status          *string `json:"status"`
	TransferredFrom *int64  `json:"transferred_from"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID               int64               `json:"id"`
	ClientName       string              `json:"client_name"`
	ClientNumber     string              `json:"client_number"`
	IssueDescription string              `json:"issue_description"`
	Status           domain.TicketStatus `json:"status"`
	AssignedTo       *int64              `json:"assigned_to"`
	CreatedBy        *int64              `json:"created_by"`
	TransferredFrom  *int64              `json:"transferred_from"`
	CreatedAt        time.Time           `json:"created_at"`
	AssigneeName     string              `json:"assignee_name,omitempty"`
	CreatorName      string              `json:"creator_name,omitempty"`
	TransferorName   string              `json:"transferor_name,omitempty"`
}

// CleanupResponse reports how many completed tickets were purged.
type CleanupResponse struct {
	Count int64 `json:"count"`
}
