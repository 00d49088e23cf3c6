package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/byZeet/centralita-neron/internal/domain"
	"github.com/byZeet/centralita-neron/internal/events"
	"github.com/byZeet/centralita-neron/internal/repository"
	apperrors "github.com/byZeet/centralita-neron/pkg/util/errorutil"
)

// TicketService owns the ticket lifecycle state machine:
//
//	pending -> assigned -> completed (terminal)
//
// Every transition is written conditionally against the expected prior state,
// so two operators racing for the same ticket resolve to exactly one winner
// with no coordination beyond the datastore's own write serialization.
type TicketService struct {
	tickets    repository.TicketRepository
	operators  repository.OperatorRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	OperatorRepo repository.OperatorRepository
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ClientName       string
	ClientNumber     string
	IssueDescription string
	CreatedBy        *int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		operators:  deps.OperatorRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket inserts a new pending, unassigned ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	clientName := strings.TrimSpace(input.ClientName)
	description := strings.TrimSpace(input.IssueDescription)
	if clientName == "" || description == "" {
		return nil, apperrors.NewValidationError("client_name and issue_description are required", nil)
	}

	ticket := &domain.Ticket{
		ClientName:       clientName,
		ClientNumber:     strings.TrimSpace(input.ClientNumber),
		IssueDescription: description,
		Status:           domain.TicketStatusPending,
		CreatedBy:        input.CreatedBy,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:  events.EventTicketCreated,
		Actor: input.CreatedBy,
		Payload: events.TicketCreatedPayload{
			TicketID:   ticket.ID,
			ClientName: ticket.ClientName,
			CreatedBy:  ticket.CreatedBy,
		},
	})
	return ticket, nil
}

// ListTickets returns every ticket newest-first with display names resolved.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListJoined(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Pickup claims a pending ticket for actorID. The write only commits while
// the row is still pending; a loser of a concurrent pickup gets a conflict
// and should re-fetch to see the winner.
func (s *TicketService) Pickup(ctx context.Context, ticketID, actorID int64) (*domain.Ticket, error) {
	matched, err := s.tickets.Pickup(ctx, ticketID, actorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !matched {
		return nil, s.explainPickupFailure(ctx, ticketID)
	}

	s.publishEvent(ctx, events.Event{
		Type:  events.EventTicketPickedUp,
		Actor: &actorID,
		Payload: events.TicketPickedUpPayload{
			TicketID:   ticketID,
			AssignedTo: actorID,
		},
	})
	return s.fetch(ctx, ticketID)
}

// Transfer hands an assigned ticket from actorID to targetID. Only the
// current assignee may transfer; status stays assigned and transferred_from
// records the actor.
func (s *TicketService) Transfer(ctx context.Context, ticketID, actorID, targetID int64) (*domain.Ticket, error) {
	if actorID == targetID {
		return nil, apperrors.NewValidationError("cannot transfer a ticket to yourself", nil)
	}
	if _, err := s.operators.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("operator", map[string]any{"operator_id": targetID})
		}
		return nil, apperrors.MapError(err)
	}

	matched, err := s.tickets.Transfer(ctx, ticketID, actorID, targetID)
	if err != nil {
		// The target can vanish between the existence check and the write;
		// the foreign key then rejects the new assignee.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, apperrors.NewNotFound("operator", map[string]any{"operator_id": targetID})
		}
		return nil, apperrors.MapError(err)
	}
	if !matched {
		return nil, s.explainOwnershipFailure(ctx, ticketID, actorID, "transfer")
	}

	s.publishEvent(ctx, events.Event{
		Type:  events.EventTicketTransferred,
		Actor: &actorID,
		Payload: events.TicketTransferredPayload{
			TicketID: ticketID,
			From:     actorID,
			To:       targetID,
		},
	})
	return s.fetch(ctx, ticketID)
}

// Complete resolves an assigned ticket. Restricted to the current assignee;
// completed is terminal, so completing twice reports an invalid transition,
// never a silent success.
func (s *TicketService) Complete(ctx context.Context, ticketID, actorID int64) (*domain.Ticket, error) {
	matched, err := s.tickets.Complete(ctx, ticketID, actorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !matched {
		return nil, s.explainOwnershipFailure(ctx, ticketID, actorID, "complete")
	}

	s.publishEvent(ctx, events.Event{
		Type:  events.EventTicketCompleted,
		Actor: &actorID,
		Payload: events.TicketCompletedPayload{
			TicketID:    ticketID,
			CompletedBy: actorID,
		},
	})
	return s.fetch(ctx, ticketID)
}

// CleanupCompleted deletes every completed ticket and reports how many went.
func (s *TicketService) CleanupCompleted(ctx context.Context, trigger string) (int64, error) {
	deleted, err := s.tickets.DeleteCompleted(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type: events.EventTicketsCleaned,
		Payload: events.TicketsCleanedPayload{
			Deleted: deleted,
			Trigger: trigger,
		},
	})
	return deleted, nil
}

// CleanupAged deletes completed tickets older than maxAge. Used by the
// scheduled weekly job.
func (s *TicketService) CleanupAged(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	deleted, err := s.tickets.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type: events.EventTicketsCleaned,
		Payload: events.TicketsCleanedPayload{
			Deleted:   deleted,
			Trigger:   "scheduled",
			MaxAgeSet: true,
		},
	})
	return deleted, nil
}

// explainPickupFailure classifies a pickup whose conditional write matched
// nothing: the ticket is gone, or someone else got there first.
func (s *TicketService) explainPickupFailure(ctx context.Context, ticketID int64) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	return apperrors.NewConflict("ticket already handled by someone else", map[string]any{
		"ticket_id": ticketID,
		"status":    ticket.Status,
	})
}

// explainOwnershipFailure classifies a transfer/complete whose conditional
// write matched nothing: missing row, terminal state, or not the assignee.
func (s *TicketService) explainOwnershipFailure(ctx context.Context, ticketID, actorID int64, action string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	switch {
	case ticket.Status == domain.TicketStatusCompleted:
		return apperrors.NewInvalidTransition("ticket already completed", map[string]any{
			"ticket_id": ticketID,
			"action":    action,
		})
	case ticket.Status == domain.TicketStatusPending:
		return apperrors.NewInvalidTransition("ticket is not assigned", map[string]any{
			"ticket_id": ticketID,
			"action":    action,
		})
	case ticket.AssignedTo == nil || *ticket.AssignedTo != actorID:
		return apperrors.NewInvalidTransition("ticket is assigned to another operator", map[string]any{
			"ticket_id": ticketID,
			"action":    action,
		})
	default:
		return apperrors.NewConflict("ticket state changed concurrently", map[string]any{
			"ticket_id": ticketID,
			"action":    action,
		})
	}
}

func (s *TicketService) fetch(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
