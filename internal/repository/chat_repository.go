package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/byZeet/centralita-neron/internal/domain"
)

// ChatRepository encapsulates channel and message persistence.
type ChatRepository interface {
	CreateChannel(ctx context.Context, channel *domain.Channel) error
	ListChannelsFor(ctx context.Context, operatorID int64, department string) ([]domain.Channel, error)
	ListMessages(ctx context.Context, channelID int64) ([]domain.Message, error)
	CreateMessage(ctx context.Context, msg *domain.Message) error
	DeleteAllMessages(ctx context.Context) (int64, error)
}

type chatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository instantiates repository.
func NewChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &chatRepository{pool: pool}
}

// CreateChannel inserts the channel and its member rows in one transaction.
func (r *chatRepository) CreateChannel(ctx context.Context, channel *domain.Channel) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO channels (name, type, department_target, created_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	if err := tx.QueryRow(ctx, query,
		channel.Name,
		channel.Type,
		channel.DepartmentTarget,
		channel.CreatedBy,
	).Scan(&channel.ID); err != nil {
		return err
	}

	for _, memberID := range channel.Members {
		if _, err := tx.Exec(ctx,
			`INSERT INTO channel_members (channel_id, user_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
			channel.ID, memberID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ListChannelsFor returns the channels visible to an operator: the global
// channel, the operator's department channel, and any channel they are a
// member of, each with its member ids and last message time attached.
func (r *chatRepository) ListChannelsFor(ctx context.Context, operatorID int64, department string) ([]domain.Channel, error) {
	const query = `
        SELECT DISTINCT c.id, c.name, c.type, c.department_target, c.created_by,
               (SELECT MAX(m.created_at) FROM messages m WHERE m.channel_id = c.id)
        FROM channels c
        LEFT JOIN channel_members cm ON c.id = cm.channel_id
        WHERE c.type = 'global'
           OR (c.type = 'department' AND c.department_target = $1)
           OR cm.user_id = $2
        ORDER BY c.id`
	rows, err := r.pool.Query(ctx, query, department, operatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(
			&ch.ID,
			&ch.Name,
			&ch.Type,
			&ch.DepartmentTarget,
			&ch.CreatedBy,
			&ch.LastMessageAt,
		); err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range channels {
		members, err := r.channelMembers(ctx, channels[i].ID)
		if err != nil {
			return nil, err
		}
		channels[i].Members = members
	}
	return channels, nil
}

func (r *chatRepository) channelMembers(ctx context.Context, channelID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM channel_members WHERE channel_id=$1 ORDER BY user_id`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func (r *chatRepository) ListMessages(ctx context.Context, channelID int64) ([]domain.Message, error) {
	const query = `
        SELECT m.id, m.channel_id, m.sender_id, o.name, m.content, m.created_at
        FROM messages m
        JOIN operators o ON m.sender_id = o.id
        WHERE m.channel_id = $1
        ORDER BY m.created_at ASC, m.id ASC`
	rows, err := r.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ChannelID,
			&msg.SenderID,
			&msg.SenderName,
			&msg.Content,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (channel_id, sender_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.ChannelID,
		msg.SenderID,
		msg.Content,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *chatRepository) DeleteAllMessages(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM messages`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
