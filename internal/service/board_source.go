package service

import (
	"context"

	"github.com/byZeet/centralita-neron/internal/notify"
	"github.com/byZeet/centralita-neron/internal/repository"
)

// BoardSource adapts the operator and ticket repositories into the snapshot
// source the notify poller consumes. The two reads are not wrapped in a
// transaction: a snapshot that is stale by up to one poll interval is the
// accepted consistency model.
type BoardSource struct {
	operators repository.OperatorRepository
	tickets   repository.TicketRepository
}

// NewBoardSource constructs the adapter.
func NewBoardSource(operators repository.OperatorRepository, tickets repository.TicketRepository) *BoardSource {
	return &BoardSource{operators: operators, tickets: tickets}
}

// Fetch reads the full board state.
func (s *BoardSource) Fetch(ctx context.Context) (notify.Snapshot, error) {
	operators, err := s.operators.List(ctx)
	if err != nil {
		return notify.Snapshot{}, err
	}
	tickets, err := s.tickets.ListJoined(ctx)
	if err != nil {
		return notify.Snapshot{}, err
	}
	return notify.Snapshot{Operators: operators, Tickets: tickets}, nil
}
