package notify

import (
	"github.com/byZeet/centralita-neron/internal/domain"
)

// Diff compares two successive board snapshots and returns the notifications
// a viewer should see. It is pure: no retained state, no side effects, and
// running it twice on the same pair yields the same result.
//
// Events come out in a stable per-cycle order: ticket appearances first, then
// ticket transitions, then presence changes. Order across different entities
// within one cycle carries no meaning; order within one entity's history is
// given by poll-cycle sequencing. Transitions that begin and end entirely
// between two polls are invisible: only the snapshot endpoints are
// observable.
//
// Self-suppression: the viewer is never told about changes they caused
// (tickets they created, picked up, completed, or transferred away).
func Diff(prev, next Snapshot, viewerID int64) []Event {
	var events []Event

	prevTickets := make(map[int64]domain.Ticket, len(prev.Tickets))
	for _, t := range prev.Tickets {
		prevTickets[t.ID] = t
	}

	// Ticket appearances. A ticket that is already completed on first sight
	// lived and died inside one poll gap; it is reported once, as completed,
	// never as created.
	for _, t := range next.Tickets {
		if _, seen := prevTickets[t.ID]; seen {
			continue
		}
		if t.Status == domain.TicketStatusCompleted {
			if t.AssignedTo != nil && *t.AssignedTo != viewerID {
				events = append(events, TicketCompleted{Ticket: t, CompletedBy: *t.AssignedTo})
			}
			continue
		}
		if t.CreatedBy != nil && *t.CreatedBy == viewerID {
			continue
		}
		events = append(events, TicketCreated{Ticket: t})
	}

	// Ticket transitions for ids present in both snapshots. The checks are
	// mutually exclusive and transfer is evaluated first so that a handover
	// (status stays assigned) is neither missed nor misreported as a pickup.
	for _, t := range next.Tickets {
		old, seen := prevTickets[t.ID]
		if !seen {
			continue
		}

		if isTransfer(old, t) {
			from, to := *old.AssignedTo, *t.AssignedTo
			if from == viewerID {
				continue
			}
			events = append(events, TicketTransferred{
				Ticket:   t,
				FromID:   from,
				ToID:     to,
				ToViewer: to == viewerID,
			})
			continue
		}

		if old.Status != domain.TicketStatusCompleted && t.Status == domain.TicketStatusCompleted {
			if t.AssignedTo != nil && *t.AssignedTo == viewerID {
				continue
			}
			completedBy := int64(0)
			if t.AssignedTo != nil {
				completedBy = *t.AssignedTo
			}
			events = append(events, TicketCompleted{Ticket: t, CompletedBy: completedBy})
			continue
		}

		if old.Status == domain.TicketStatusPending && t.Status == domain.TicketStatusAssigned {
			if t.AssignedTo == nil || *t.AssignedTo == viewerID {
				continue
			}
			events = append(events, TicketPickedUp{Ticket: t, AssigneeID: *t.AssignedTo})
		}
	}

	// Presence changes for operators present in both snapshots.
	prevOps := make(map[int64]domain.Operator, len(prev.Operators))
	for _, op := range prev.Operators {
		prevOps[op.ID] = op
	}
	for _, op := range next.Operators {
		old, seen := prevOps[op.ID]
		if !seen || old.Status == op.Status || op.ID == viewerID {
			continue
		}
		events = append(events, PresenceChanged{Operator: op, NewStatus: op.Status})
	}

	return events
}

// isTransfer reports an assigned-to-assigned handover between snapshots.
func isTransfer(old, next domain.Ticket) bool {
	return old.Status == domain.TicketStatusAssigned &&
		next.Status == domain.TicketStatusAssigned &&
		old.AssignedTo != nil &&
		next.AssignedTo != nil &&
		*old.AssignedTo != *next.AssignedTo
}

// DiffChannels reports channels that appeared in the viewer's channel list,
// skipping ones the viewer created.
func DiffChannels(prev, next []domain.Channel, viewerID int64) []Event {
	known := make(map[int64]struct{}, len(prev))
	for _, ch := range prev {
		known[ch.ID] = struct{}{}
	}
	var events []Event
	for _, ch := range next {
		if _, seen := known[ch.ID]; seen {
			continue
		}
		if ch.CreatedBy != nil && *ch.CreatedBy == viewerID {
			continue
		}
		events = append(events, ChannelCreated{Channel: ch})
	}
	return events
}

// DiffMessages reports messages that appeared in a channel since the
// previous fetch, excluding the viewer's own.
func DiffMessages(prev, next []domain.Message, viewerID int64) []Event {
	known := make(map[int64]struct{}, len(prev))
	for _, msg := range prev {
		known[msg.ID] = struct{}{}
	}
	var events []Event
	for _, msg := range next {
		if _, seen := known[msg.ID]; seen {
			continue
		}
		if msg.SenderID == viewerID {
			continue
		}
		events = append(events, MessageReceived{Message: msg})
	}
	return events
}
