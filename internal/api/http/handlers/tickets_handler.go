package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/byZeet/centralita-neron/internal/api/dto"
	"github.com/byZeet/centralita-neron/internal/auth"
	"github.com/byZeet/centralita-neron/internal/domain"
	"github.com/byZeet/centralita-neron/internal/service"
	apperrors "github.com/byZeet/centralita-neron/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"tickets": items})
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	creator := principal.Operator.ID
	ticket, err := h.service.CreateTicket(c.Context(), service.TicketCreateInput{
		ClientName:       req.ClientName,
		ClientNumber:     req.ClientNumber,
		IssueDescription: req.IssueDescription,
		CreatedBy:        &creator,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": ticket.ID, "ticket": ticketResponse(ticket)})
}

// UpdateTicket PUT /tickets/:id. The partial body is interpreted as a
// transition intent and checked against the state table; the handler never
// persists an arbitrary field combination.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	ticketID, err := parseID(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	actorID := principal.Operator.ID
	var ticket *domain.Ticket
	switch {
	case req.TransferredFrom != nil:
		if *req.TransferredFrom != actorID {
			return apperrors.NewForbidden("transfers must originate from the authenticated operator")
		}
		if req.AssignedTo == nil {
			return apperrors.NewValidationError("assigned_to is required for a transfer", nil)
		}
		ticket, err = h.service.Transfer(c.Context(), ticketID, actorID, *req.AssignedTo)
	case req.Status != nil && *req.Status == string(domain.TicketStatusAssigned):
		if req.AssignedTo != nil && *req.AssignedTo != actorID {
			return apperrors.NewForbidden("tickets can only be picked up for yourself")
		}
		ticket, err = h.service.Pickup(c.Context(), ticketID, actorID)
	case req.Status != nil && *req.Status == string(domain.TicketStatusCompleted):
		ticket, err = h.service.Complete(c.Context(), ticketID, actorID)
	case req.Status != nil && *req.Status == string(domain.TicketStatusPending):
		return apperrors.NewInvalidTransition("tickets cannot be reopened", map[string]any{"ticket_id": ticketID})
	default:
		return apperrors.NewValidationError("update does not describe a known transition", nil)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ticket": ticketResponse(ticket)})
}

// CleanupTickets POST /tickets/cleanup.
func (h *TicketsHandler) CleanupTickets(c *fiber.Ctx) error {
	count, err := h.service.CleanupCompleted(c.Context(), "manual")
	if err != nil {
		return err
	}
	return c.JSON(dto.CleanupResponse{Count: count})
}

func parseID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:               ticket.ID,
		ClientName:       ticket.ClientName,
		ClientNumber:     ticket.ClientNumber,
		IssueDescription: ticket.IssueDescription,
		Status:           ticket.Status,
		AssignedTo:       ticket.AssignedTo,
		CreatedBy:        ticket.CreatedBy,
		TransferredFrom:  ticket.TransferredFrom,
		CreatedAt:        ticket.CreatedAt,
		AssigneeName:     ticket.AssigneeName,
		CreatorName:      ticket.CreatorName,
		TransferorName:   ticket.TransferorName,
	}
}
