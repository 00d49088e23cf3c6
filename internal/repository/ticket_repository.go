package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/byZeet/centralita-neron/internal/domain"
)

// TicketRepository encapsulates ticket persistence. The transition methods
// (Pickup, Transfer, Complete) are conditional writes: they report whether
// the row still matched the expected prior state at commit time, which is the
// only mutual exclusion the state machine needs.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListJoined(ctx context.Context) ([]domain.Ticket, error)
	Pickup(ctx context.Context, id, actorID int64) (bool, error)
	Transfer(ctx context.Context, id, actorID, targetID int64) (bool, error)
	Complete(ctx context.Context, id, actorID int64) (bool, error)
	DeleteCompleted(ctx context.Context) (int64, error)
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (client_name, client_number, issue_description, status, created_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ClientName,
		ticket.ClientNumber,
		ticket.IssueDescription,
		domain.TicketStatusPending,
		ticket.CreatedBy,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, client_name, client_number, issue_description, status,
               assigned_to, created_by, transferred_from, created_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ClientName,
		&ticket.ClientNumber,
		&ticket.IssueDescription,
		&ticket.Status,
		&ticket.AssignedTo,
		&ticket.CreatedBy,
		&ticket.TransferredFrom,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListJoined returns every ticket newest-first with the assignee, creator and
// transferor display names resolved.
func (r *ticketRepository) ListJoined(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT t.id, t.client_name, t.client_number, t.issue_description, t.status,
               t.assigned_to, t.created_by, t.transferred_from, t.created_at,
               COALESCE(o1.name, ''), COALESCE(o2.name, ''), COALESCE(o3.name, '')
        FROM tickets t
        LEFT JOIN operators o1 ON t.assigned_to = o1.id
        LEFT JOIN operators o2 ON t.created_by = o2.id
        LEFT JOIN operators o3 ON t.transferred_from = o3.id
        ORDER BY t.created_at DESC, t.id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ClientName,
			&ticket.ClientNumber,
			&ticket.IssueDescription,
			&ticket.Status,
			&ticket.AssignedTo,
			&ticket.CreatedBy,
			&ticket.TransferredFrom,
			&ticket.CreatedAt,
			&ticket.AssigneeName,
			&ticket.CreatorName,
			&ticket.TransferorName,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

// Pickup assigns the ticket to actorID only if the row is still pending. When
// two operators race, exactly one UPDATE matches; the other sees false.
func (r *ticketRepository) Pickup(ctx context.Context, id, actorID int64) (bool, error) {
	const query = `
        UPDATE tickets SET status=$1, assigned_to=$2
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query,
		domain.TicketStatusAssigned, actorID, id, domain.TicketStatusPending)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// Transfer hands the ticket to targetID only if actorID still owns it.
func (r *ticketRepository) Transfer(ctx context.Context, id, actorID, targetID int64) (bool, error) {
	const query = `
        UPDATE tickets SET assigned_to=$1, transferred_from=$2
        WHERE id=$3 AND status=$4 AND assigned_to=$2`
	cmd, err := r.pool.Exec(ctx, query,
		targetID, actorID, id, domain.TicketStatusAssigned)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// Complete closes the ticket only if actorID is still the assignee.
func (r *ticketRepository) Complete(ctx context.Context, id, actorID int64) (bool, error) {
	const query = `
        UPDATE tickets SET status=$1
        WHERE id=$2 AND status=$3 AND assigned_to=$4`
	cmd, err := r.pool.Exec(ctx, query,
		domain.TicketStatusCompleted, id, domain.TicketStatusAssigned, actorID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ticketRepository) DeleteCompleted(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM tickets WHERE status=$1`, domain.TicketStatusCompleted)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *ticketRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM tickets WHERE status=$1 AND created_at < $2`,
		domain.TicketStatusCompleted, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
