package events

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryDispatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to subscribers of the type", func(t *testing.T) {
		d := NewInMemoryDispatcher()
		var got []EventType
		d.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
			got = append(got, event.Type)
			return nil
		})

		if err := d.Publish(ctx, Event{Type: EventTicketCreated}); err != nil {
			t.Fatalf("publish: %v", err)
		}
		if err := d.Publish(ctx, Event{Type: EventTicketCompleted}); err != nil {
			t.Fatalf("publish: %v", err)
		}

		if len(got) != 1 || got[0] != EventTicketCreated {
			t.Errorf("expected one ticket_created delivery, got %v", got)
		}
	})

	t.Run("handler error does not stop delivery", func(t *testing.T) {
		d := NewInMemoryDispatcher()
		reached := false
		d.Subscribe(EventTicketPickedUp, func(context.Context, Event) error {
			return errors.New("boom")
		})
		d.Subscribe(EventTicketPickedUp, func(context.Context, Event) error {
			reached = true
			return nil
		})

		if err := d.Publish(ctx, Event{Type: EventTicketPickedUp}); err != nil {
			t.Fatalf("publish: %v", err)
		}
		if !reached {
			t.Error("second handler should still run after the first fails")
		}
	})

	t.Run("publish without subscribers is a no-op", func(t *testing.T) {
		d := NewInMemoryDispatcher()
		if err := d.Publish(ctx, Event{Type: EventTicketsCleaned}); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
