package notify

import (
	"testing"

	"github.com/byZeet/centralita-neron/internal/domain"
)

func ptr(v int64) *int64 { return &v }

func pendingTicket(id int64, createdBy *int64) domain.Ticket {
	return domain.Ticket{
		ID:               id,
		ClientName:       "client",
		IssueDescription: "issue",
		Status:           domain.TicketStatusPending,
		CreatedBy:        createdBy,
	}
}

func assignedTicket(id, assignee int64) domain.Ticket {
	t := pendingTicket(id, nil)
	t.Status = domain.TicketStatusAssigned
	t.AssignedTo = ptr(assignee)
	return t
}

func completedTicket(id, assignee int64) domain.Ticket {
	t := assignedTicket(id, assignee)
	t.Status = domain.TicketStatusCompleted
	return t
}

func operator(id int64, status domain.OperatorStatus) domain.Operator {
	return domain.Operator{ID: id, Name: "op", Status: status}
}

func kinds(events []Event) []Kind {
	out := make([]Kind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind())
	}
	return out
}

func TestDiff_TicketAppearances(t *testing.T) {
	t.Run("new pending ticket announced", func(t *testing.T) {
		prev := Snapshot{}
		next := Snapshot{Tickets: []domain.Ticket{pendingTicket(1, ptr(7))}}

		events := Diff(prev, next, 99)
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		created, ok := events[0].(TicketCreated)
		if !ok {
			t.Fatalf("expected TicketCreated, got %T", events[0])
		}
		if created.Ticket.ID != 1 {
			t.Errorf("expected ticket 1, got %d", created.Ticket.ID)
		}
	})

	t.Run("viewer's own creation suppressed", func(t *testing.T) {
		prev := Snapshot{}
		next := Snapshot{Tickets: []domain.Ticket{pendingTicket(1, ptr(7))}}

		if events := Diff(prev, next, 7); len(events) != 0 {
			t.Errorf("expected no events for creator, got %v", kinds(events))
		}
	})

	t.Run("ticket created and completed within one gap reported once as completed", func(t *testing.T) {
		prev := Snapshot{}
		next := Snapshot{Tickets: []domain.Ticket{completedTicket(1, 5)}}

		events := Diff(prev, next, 99)
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		done, ok := events[0].(TicketCompleted)
		if !ok {
			t.Fatalf("expected TicketCompleted, got %T", events[0])
		}
		if done.CompletedBy != 5 {
			t.Errorf("expected completed_by 5, got %d", done.CompletedBy)
		}
	})

	t.Run("gap completion by viewer suppressed", func(t *testing.T) {
		prev := Snapshot{}
		next := Snapshot{Tickets: []domain.Ticket{completedTicket(1, 5)}}

		if events := Diff(prev, next, 5); len(events) != 0 {
			t.Errorf("expected no events for completer, got %v", kinds(events))
		}
	})
}

func TestDiff_TicketTransitions(t *testing.T) {
	t.Run("pickup announced with assignee", func(t *testing.T) {
		prev := Snapshot{Tickets: []domain.Ticket{pendingTicket(1, nil)}}
		next := Snapshot{Tickets: []domain.Ticket{assignedTicket(1, 3)}}

		events := Diff(prev, next, 99)
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		picked, ok := events[0].(TicketPickedUp)
		if !ok {
			t.Fatalf("expected TicketPickedUp, got %T", events[0])
		}
		if picked.AssigneeID != 3 {
			t.Errorf("expected assignee 3, got %d", picked.AssigneeID)
		}
	})

	t.Run("viewer's own pickup suppressed", func(t *testing.T) {
		prev := Snapshot{Tickets: []domain.Ticket{pendingTicket(1, nil)}}
		next := Snapshot{Tickets: []domain.Ticket{assignedTicket(1, 3)}}

		if events := Diff(prev, next, 3); len(events) != 0 {
			t.Errorf("expected no events for assignee, got %v", kinds(events))
		}
	})

	t.Run("transfer reported as transfer not pickup", func(t *testing.T) {
		prev := Snapshot{Tickets: []domain.Ticket{assignedTicket(1, 3)}}
		next := Snapshot{Tickets: []domain.Ticket{assignedTicket(1, 4)}}

		events := Diff(prev, next, 99)
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		tr, ok := events[0].(TicketTransferred)
		if !ok {
			t.Fatalf("expected TicketTransferred, got %T", events[0])
		}
		if tr.FromID != 3 || tr.ToID != 4 {
			t.Errorf("expected transfer 3->4, got %d->%d", tr.FromID, tr.ToID)
		}
		if tr.ToViewer {
			t.Error("expected ToViewer false for third-party observer")
		}
	})

	t.Run("transfer to viewer flagged", func(t *testing.T) {
		prev := Snapshot{Tickets: []domain.Ticket{assignedTicket(1, 3)}}
		next := Snapshot{Tickets: []domain.Ticket{assignedTicket(1, 4)}}

		events := Diff(prev, next, 4)
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		tr := events[0].(TicketTransferred)
		if !tr.ToViewer {
			t.Error("expected ToViewer true for receiving operator")
		}
	})

	t.Run("transfer away from viewer suppressed", func(t *testing.T) {
		prev := Snapshot{Tickets: []domain.Ticket{assignedTicket(1, 3)}}
		next := Snapshot{Tickets: []domain.Ticket{assignedTicket(1, 4)}}

		if events := Diff(prev, next, 3); len(events) != 0 {
			t.Errorf("expected no events for transferor, got %v", kinds(events))
		}
	})

	t.Run("completion announced once", func(t *testing.T) {
		prev := Snapshot{Tickets: []domain.Ticket{assignedTicket(1, 3)}}
		next := Snapshot{Tickets: []domain.Ticket{completedTicket(1, 3)}}

		events := Diff(prev, next, 99)
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if _, ok := events[0].(TicketCompleted); !ok {
			t.Fatalf("expected TicketCompleted, got %T", events[0])
		}
	})

	t.Run("already completed ticket stays silent", func(t *testing.T) {
		prev := Snapshot{Tickets: []domain.Ticket{completedTicket(1, 3)}}
		next := Snapshot{Tickets: []domain.Ticket{completedTicket(1, 3)}}

		if events := Diff(prev, next, 99); len(events) != 0 {
			t.Errorf("expected no events, got %v", kinds(events))
		}
	})

	t.Run("removed ticket produces nothing", func(t *testing.T) {
		prev := Snapshot{Tickets: []domain.Ticket{completedTicket(1, 3)}}
		next := Snapshot{}

		if events := Diff(prev, next, 99); len(events) != 0 {
			t.Errorf("expected no events, got %v", kinds(events))
		}
	})
}

func TestDiff_Presence(t *testing.T) {
	t.Run("status change announced", func(t *testing.T) {
		prev := Snapshot{Operators: []domain.Operator{operator(2, domain.StatusOffline)}}
		next := Snapshot{Operators: []domain.Operator{operator(2, domain.StatusAvailable)}}

		events := Diff(prev, next, 99)
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		pc, ok := events[0].(PresenceChanged)
		if !ok {
			t.Fatalf("expected PresenceChanged, got %T", events[0])
		}
		if pc.NewStatus != domain.StatusAvailable {
			t.Errorf("expected available, got %s", pc.NewStatus)
		}
	})

	t.Run("viewer's own presence suppressed", func(t *testing.T) {
		prev := Snapshot{Operators: []domain.Operator{operator(2, domain.StatusOffline)}}
		next := Snapshot{Operators: []domain.Operator{operator(2, domain.StatusAvailable)}}

		if events := Diff(prev, next, 2); len(events) != 0 {
			t.Errorf("expected no events for self, got %v", kinds(events))
		}
	})

	t.Run("new operator without prior status is silent", func(t *testing.T) {
		prev := Snapshot{}
		next := Snapshot{Operators: []domain.Operator{operator(2, domain.StatusAvailable)}}

		if events := Diff(prev, next, 99); len(events) != 0 {
			t.Errorf("expected no events, got %v", kinds(events))
		}
	})

	t.Run("unchanged status is silent", func(t *testing.T) {
		prev := Snapshot{Operators: []domain.Operator{operator(2, domain.StatusBusy)}}
		next := Snapshot{Operators: []domain.Operator{operator(2, domain.StatusBusy)}}

		if events := Diff(prev, next, 99); len(events) != 0 {
			t.Errorf("expected no events, got %v", kinds(events))
		}
	})
}

func TestDiff_OrderAndPurity(t *testing.T) {
	prev := Snapshot{
		Operators: []domain.Operator{operator(2, domain.StatusOffline)},
		Tickets:   []domain.Ticket{pendingTicket(1, nil)},
	}
	next := Snapshot{
		Operators: []domain.Operator{operator(2, domain.StatusAvailable)},
		Tickets: []domain.Ticket{
			assignedTicket(1, 3),
			pendingTicket(2, ptr(4)),
		},
	}

	t.Run("appearances then transitions then presence", func(t *testing.T) {
		got := kinds(Diff(prev, next, 99))
		want := []Kind{KindTicketCreated, KindTicketPickedUp, KindPresenceChanged}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("diffing the same pair twice yields identical events", func(t *testing.T) {
		first := Diff(prev, next, 99)
		second := Diff(prev, next, 99)
		if len(first) != len(second) {
			t.Fatalf("expected identical results, got %d and %d events", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("event %d differs: %v vs %v", i, first[i], second[i])
			}
		}
	})

	t.Run("identical snapshots produce nothing", func(t *testing.T) {
		if events := Diff(next, next, 99); len(events) != 0 {
			t.Errorf("expected no events, got %v", kinds(events))
		}
	})
}

func TestDiffChannels(t *testing.T) {
	ch := func(id int64, createdBy *int64) domain.Channel {
		return domain.Channel{ID: id, Name: "room", Type: domain.ChannelGlobal, CreatedBy: createdBy}
	}

	t.Run("new channel announced", func(t *testing.T) {
		events := DiffChannels([]domain.Channel{ch(1, nil)}, []domain.Channel{ch(1, nil), ch(2, ptr(5))}, 99)
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if events[0].Kind() != KindChannelCreated {
			t.Errorf("expected channel_created, got %s", events[0].Kind())
		}
	})

	t.Run("viewer's own channel suppressed", func(t *testing.T) {
		events := DiffChannels(nil, []domain.Channel{ch(2, ptr(5))}, 5)
		if len(events) != 0 {
			t.Errorf("expected no events, got %d", len(events))
		}
	})
}

func TestDiffMessages(t *testing.T) {
	msg := func(id, sender int64) domain.Message {
		return domain.Message{ID: id, ChannelID: 1, SenderID: sender, Content: "hi"}
	}

	t.Run("new message from someone else announced", func(t *testing.T) {
		events := DiffMessages([]domain.Message{msg(1, 2)}, []domain.Message{msg(1, 2), msg(2, 3)}, 99)
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		received, ok := events[0].(MessageReceived)
		if !ok {
			t.Fatalf("expected MessageReceived, got %T", events[0])
		}
		if received.Message.ID != 2 {
			t.Errorf("expected message 2, got %d", received.Message.ID)
		}
	})

	t.Run("viewer's own message suppressed", func(t *testing.T) {
		events := DiffMessages(nil, []domain.Message{msg(2, 3)}, 3)
		if len(events) != 0 {
			t.Errorf("expected no events, got %d", len(events))
		}
	})
}
