package service

import (
	"context"
	"strings"

	"github.com/byZeet/centralita-neron/internal/domain"
	"github.com/byZeet/centralita-neron/internal/repository"
	apperrors "github.com/byZeet/centralita-neron/pkg/util/errorutil"
)

// ChatService coordinates channels and messages. Chat reuses the board's
// poll-and-diff notification pattern; the service itself is plain CRUD.
type ChatService struct {
	chat repository.ChatRepository
}

// ChannelCreateInput describes channel creation payload.
type ChannelCreateInput struct {
	Name             string
	Type             domain.ChannelType
	DepartmentTarget *string
	Members          []int64
	CreatedBy        *int64
}

// NewChatService constructs the service.
func NewChatService(chat repository.ChatRepository) *ChatService {
	return &ChatService{chat: chat}
}

// CreateChannel creates a group, department, or DM channel with its members.
func (s *ChatService) CreateChannel(ctx context.Context, input ChannelCreateInput) (*domain.Channel, error) {
	switch input.Type {
	case domain.ChannelGlobal, domain.ChannelDepartment, domain.ChannelDM:
	default:
		return nil, apperrors.NewValidationError("invalid channel type", map[string]any{"type": input.Type})
	}
	if input.Type == domain.ChannelDM && len(input.Members) != 2 {
		return nil, apperrors.NewValidationError("a dm channel needs exactly two members", nil)
	}

	channel := &domain.Channel{
		Name:             strings.TrimSpace(input.Name),
		Type:             input.Type,
		DepartmentTarget: input.DepartmentTarget,
		CreatedBy:        input.CreatedBy,
		Members:          input.Members,
	}
	if err := s.chat.CreateChannel(ctx, channel); err != nil {
		return nil, apperrors.MapError(err)
	}
	return channel, nil
}

// ListChannels returns the channels visible to an operator.
func (s *ChatService) ListChannels(ctx context.Context, operatorID int64, department string) ([]domain.Channel, error) {
	channels, err := s.chat.ListChannelsFor(ctx, operatorID, department)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return channels, nil
}

// ListMessages returns a channel's messages oldest-first.
func (s *ChatService) ListMessages(ctx context.Context, channelID int64) ([]domain.Message, error) {
	messages, err := s.chat.ListMessages(ctx, channelID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return messages, nil
}

// SendMessage appends a message to a channel.
func (s *ChatService) SendMessage(ctx context.Context, channelID, senderID int64, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.NewValidationError("message content is required", nil)
	}
	msg := &domain.Message{
		ChannelID: channelID,
		SenderID:  senderID,
		Content:   content,
	}
	if err := s.chat.CreateMessage(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return msg, nil
}

// PurgeMessages deletes every chat message. Used by the weekly chat wipe.
func (s *ChatService) PurgeMessages(ctx context.Context) (int64, error) {
	deleted, err := s.chat.DeleteAllMessages(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return deleted, nil
}
