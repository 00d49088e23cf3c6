package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusAssigned  TicketStatus = "assigned"
	TicketStatusCompleted TicketStatus = "completed"
)

// Ticket is the aggregate for customer issues moving through the queue.
// Invariants: status=pending implies AssignedTo==nil; status assigned or
// completed implies AssignedTo!=nil; completed is terminal.
type Ticket struct {
	ID               int64
	ClientName       string
	ClientNumber     string
	IssueDescription string
	Status           TicketStatus
	AssignedTo       *int64
	CreatedBy        *int64
	TransferredFrom  *int64
	CreatedAt        time.Time

	// Display names resolved by the list query joins; empty when the
	// referenced operator no longer exists.
	AssigneeName   string
	CreatorName    string
	TransferorName string
}
