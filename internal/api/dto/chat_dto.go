package dto

import (
	"time"

	"github.com/byZeet/centralita-neron/internal/domain"
)

// CreateChannelRequest payload for POST /channels.
type CreateChannelRequest struct {
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	DepartmentTarget *string `json:"department_target"`
	Members          []int64 `json:"members"`
}

// ChannelResponse is the wire form of a channel.
type ChannelResponse struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	Type             domain.ChannelType `json:"type"`
	DepartmentTarget *string            `json:"department_target,omitempty"`
	CreatedBy        *int64             `json:"created_by,omitempty"`
	Members          []int64            `json:"members"`
	LastMessageAt    *time.Time         `json:"last_message_at,omitempty"`
}

// SendMessageRequest payload for POST /channels/:id/messages.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// MessageResponse is the wire form of a message.
type MessageResponse struct {
	ID         int64     `json:"id"`
	ChannelID  int64     `json:"channel_id"`
	SenderID   int64     `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
