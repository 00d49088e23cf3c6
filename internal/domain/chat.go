package domain

import "time"

// ChannelType enumerates chat channel kinds.
type ChannelType string

const (
	ChannelGlobal     ChannelType = "global"
	ChannelDepartment ChannelType = "department"
	ChannelDM         ChannelType = "dm"
)

// Channel is a chat room: global, per-department, or a direct message pair.
type Channel struct {
	ID               int64
	Name             string
	Type             ChannelType
	DepartmentTarget *string
	CreatedBy        *int64
	Members          []int64
	LastMessageAt    *time.Time
}

// Message is a single chat message within a channel.
type Message struct {
	ID         int64
	ChannelID  int64
	SenderID   int64
	SenderName string
	Content    string
	CreatedAt  time.Time
}
