package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/byZeet/centralita-neron/internal/api/dto"
	"github.com/byZeet/centralita-neron/internal/auth"
	"github.com/byZeet/centralita-neron/internal/domain"
	"github.com/byZeet/centralita-neron/internal/service"
	apperrors "github.com/byZeet/centralita-neron/pkg/util/errorutil"
)

// ChatHandler manages channel and message endpoints.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{service: chatService}
}

// ListChannels GET /channels.
func (h *ChatHandler) ListChannels(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	channels, err := h.service.ListChannels(c.Context(), principal.Operator.ID, principal.Operator.Department)
	if err != nil {
		return err
	}
	items := make([]dto.ChannelResponse, 0, len(channels))
	for i := range channels {
		items = append(items, channelResponse(&channels[i]))
	}
	return c.JSON(fiber.Map{"channels": items})
}

// CreateChannel POST /channels.
func (h *ChatHandler) CreateChannel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.CreateChannelRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	creator := principal.Operator.ID
	channel, err := h.service.CreateChannel(c.Context(), service.ChannelCreateInput{
		Name:             req.Name,
		Type:             domain.ChannelType(req.Type),
		DepartmentTarget: req.DepartmentTarget,
		Members:          req.Members,
		CreatedBy:        &creator,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(channelResponse(channel))
}

// ListMessages GET /channels/:id/messages.
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	channelID, err := parseID(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid channel id", nil)
	}
	messages, err := h.service.ListMessages(c.Context(), channelID)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, messageResponse(&messages[i]))
	}
	return c.JSON(fiber.Map{"messages": items})
}

// SendMessage POST /channels/:id/messages.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	channelID, err := parseID(c.Params("id"))
	if err != nil {
		return apperrors.NewValidationError("invalid channel id", nil)
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	msg, err := h.service.SendMessage(c.Context(), channelID, principal.Operator.ID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(messageResponse(msg))
}

func channelResponse(ch *domain.Channel) dto.ChannelResponse {
	members := ch.Members
	if members == nil {
		members = []int64{}
	}
	return dto.ChannelResponse{
		ID:               ch.ID,
		Name:             ch.Name,
		Type:             ch.Type,
		DepartmentTarget: ch.DepartmentTarget,
		CreatedBy:        ch.CreatedBy,
		Members:          members,
		LastMessageAt:    ch.LastMessageAt,
	}
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:         msg.ID,
		ChannelID:  msg.ChannelID,
		SenderID:   msg.SenderID,
		SenderName: msg.SenderName,
		Content:    msg.Content,
		CreatedAt:  msg.CreatedAt,
	}
}
