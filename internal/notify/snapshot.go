// Package notify derives discrete board notifications from successive full
// snapshots of operators and tickets. The server never pushes events; any
// consumer polls the board on a fixed cadence, diffs the new snapshot against
// the previous one, and announces what changed. The diff itself is a pure
// function so it can be exercised without timers or a datastore.
package notify

import (
	"github.com/byZeet/centralita-neron/internal/domain"
)

// Snapshot is a full point-in-time read of the board. It is transient: each
// poll cycle produces one, diffs it against the retained previous snapshot,
// and then promotes it to become the new previous.
type Snapshot struct {
	Operators []domain.Operator
	Tickets   []domain.Ticket
}

// Kind discriminates notification event variants.
type Kind string

const (
	KindTicketCreated     Kind = "ticket_created"
	KindTicketPickedUp    Kind = "ticket_picked_up"
	KindTicketTransferred Kind = "ticket_transferred"
	KindTicketCompleted   Kind = "ticket_completed"
	KindPresenceChanged   Kind = "presence_changed"
	KindChannelCreated    Kind = "channel_created"
	KindMessageReceived   Kind = "message_received"
)

// Event is the closed set of notifications the diff engine can emit. Each
// variant carries only the fields relevant to its case.
type Event interface {
	Kind() Kind
}

// TicketCreated reports a ticket that appeared on the board.
type TicketCreated struct {
	Ticket domain.Ticket
}

func (TicketCreated) Kind() Kind { return KindTicketCreated }

// TicketPickedUp reports a pending ticket that was claimed.
type TicketPickedUp struct {
	Ticket     domain.Ticket
	AssigneeID int64
}

func (TicketPickedUp) Kind() Kind { return KindTicketPickedUp }

// TicketTransferred reports an assigned ticket that changed hands. ToViewer
// distinguishes "you received this ticket" from the third-party observation.
type TicketTransferred struct {
	Ticket   domain.Ticket
	FromID   int64
	ToID     int64
	ToViewer bool
}

func (TicketTransferred) Kind() Kind { return KindTicketTransferred }

// TicketCompleted reports a ticket that reached its terminal state.
type TicketCompleted struct {
	Ticket      domain.Ticket
	CompletedBy int64
}

func (TicketCompleted) Kind() Kind { return KindTicketCompleted }

// PresenceChanged reports another operator switching presence state.
type PresenceChanged struct {
	Operator  domain.Operator
	NewStatus domain.OperatorStatus
}

func (PresenceChanged) Kind() Kind { return KindPresenceChanged }

// ChannelCreated reports a chat channel that appeared in the viewer's list.
type ChannelCreated struct {
	Channel domain.Channel
}

func (ChannelCreated) Kind() Kind { return KindChannelCreated }

// MessageReceived reports a chat message from someone other than the viewer.
type MessageReceived struct {
	Message domain.Message
}

func (MessageReceived) Kind() Kind { return KindMessageReceived }
