package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/byZeet/centralita-neron/internal/domain"
	"github.com/byZeet/centralita-neron/internal/repository"
	apperrors "github.com/byZeet/centralita-neron/pkg/util/errorutil"
)

// fakeTicketRepo implements the conditional-write contract in memory: every
// transition checks the expected prior state and the whole check-and-set runs
// under one mutex, the same atomicity the SQL UPDATE predicates provide.
type fakeTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]*domain.Ticket

	transferErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{nextID: 1, tickets: make(map[int64]*domain.Ticket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket.ID = f.nextID
	f.nextID++
	ticket.CreatedAt = time.Now()
	clone := *ticket
	f.tickets[ticket.ID] = &clone
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (f *fakeTicketRepo) ListJoined(_ context.Context) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Ticket, 0, len(f.tickets))
	for _, t := range f.tickets {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTicketRepo) Pickup(_ context.Context, id, actorID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok || ticket.Status != domain.TicketStatusPending {
		return false, nil
	}
	ticket.Status = domain.TicketStatusAssigned
	ticket.AssignedTo = &actorID
	return true, nil
}

func (f *fakeTicketRepo) Transfer(_ context.Context, id, actorID, targetID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transferErr != nil {
		return false, f.transferErr
	}
	ticket, ok := f.tickets[id]
	if !ok || ticket.Status != domain.TicketStatusAssigned ||
		ticket.AssignedTo == nil || *ticket.AssignedTo != actorID {
		return false, nil
	}
	ticket.AssignedTo = &targetID
	ticket.TransferredFrom = &actorID
	return true, nil
}

func (f *fakeTicketRepo) Complete(_ context.Context, id, actorID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok || ticket.Status != domain.TicketStatusAssigned ||
		ticket.AssignedTo == nil || *ticket.AssignedTo != actorID {
		return false, nil
	}
	ticket.Status = domain.TicketStatusCompleted
	return true, nil
}

func (f *fakeTicketRepo) DeleteCompleted(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, t := range f.tickets {
		if t.Status == domain.TicketStatusCompleted {
			delete(f.tickets, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeTicketRepo) DeleteCompletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, t := range f.tickets {
		if t.Status == domain.TicketStatusCompleted && t.CreatedAt.Before(cutoff) {
			delete(f.tickets, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeOperatorRepo serves GetByID lookups for transfer target validation.
type fakeOperatorRepo struct {
	operators map[int64]*domain.Operator
}

func newFakeOperatorRepo(ids ...int64) *fakeOperatorRepo {
	ops := make(map[int64]*domain.Operator, len(ids))
	for _, id := range ids {
		ops[id] = &domain.Operator{ID: id, Name: "op", Status: domain.StatusAvailable}
	}
	return &fakeOperatorRepo{operators: ops}
}

func (f *fakeOperatorRepo) Create(context.Context, *domain.Operator) error { return nil }

func (f *fakeOperatorRepo) GetByID(_ context.Context, id int64) (*domain.Operator, error) {
	op, ok := f.operators[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return op, nil
}

func (f *fakeOperatorRepo) GetByName(context.Context, string) (*domain.Operator, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeOperatorRepo) List(context.Context) ([]domain.Operator, error) { return nil, nil }

func (f *fakeOperatorRepo) Update(context.Context, *domain.Operator) (bool, error) {
	return false, nil
}

func (f *fakeOperatorRepo) Delete(context.Context, int64) (bool, error) { return false, nil }

func (f *fakeOperatorRepo) UpdatePresence(context.Context, int64, repository.PresenceUpdate) (bool, error) {
	return false, nil
}

func newTicketServiceForTest(operatorIDs ...int64) (*TicketService, *fakeTicketRepo) {
	repo := newFakeTicketRepo()
	svc := NewTicketService(TicketDependencies{
		TicketRepo:   repo,
		OperatorRepo: newFakeOperatorRepo(operatorIDs...),
	})
	return svc, repo
}

func seedPending(t *testing.T, svc *TicketService) *domain.Ticket {
	t.Helper()
	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		ClientName:       "Maria",
		ClientNumber:     "600123456",
		IssueDescription: "line is down",
	})
	if err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket
}

func TestTicketService_CreateTicket(t *testing.T) {
	svc, _ := newTicketServiceForTest()
	ctx := context.Background()

	t.Run("creates pending unassigned", func(t *testing.T) {
		ticket, err := svc.CreateTicket(ctx, TicketCreateInput{
			ClientName:       "  Maria  ",
			IssueDescription: "no dial tone",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ticket.Status != domain.TicketStatusPending {
			t.Errorf("expected pending, got %s", ticket.Status)
		}
		if ticket.AssignedTo != nil {
			t.Error("expected no assignee")
		}
		if ticket.ClientName != "Maria" {
			t.Errorf("expected trimmed name, got %q", ticket.ClientName)
		}
	})

	t.Run("rejects blank client name", func(t *testing.T) {
		_, err := svc.CreateTicket(ctx, TicketCreateInput{
			ClientName:       "   ",
			IssueDescription: "something",
		})
		if !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("rejects missing description", func(t *testing.T) {
		_, err := svc.CreateTicket(ctx, TicketCreateInput{ClientName: "Maria"})
		if !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})
}

func TestTicketService_Pickup(t *testing.T) {
	ctx := context.Background()

	t.Run("claims a pending ticket", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3)
		ticket := seedPending(t, svc)

		got, err := svc.Pickup(ctx, ticket.ID, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != domain.TicketStatusAssigned {
			t.Errorf("expected assigned, got %s", got.Status)
		}
		if got.AssignedTo == nil || *got.AssignedTo != 3 {
			t.Errorf("expected assignee 3, got %v", got.AssignedTo)
		}
	})

	t.Run("second pickup conflicts", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3, 4)
		ticket := seedPending(t, svc)

		if _, err := svc.Pickup(ctx, ticket.ID, 3); err != nil {
			t.Fatalf("first pickup: %v", err)
		}
		_, err := svc.Pickup(ctx, ticket.ID, 4)
		if !apperrors.IsCode(err, "CONFLICT") {
			t.Errorf("expected CONFLICT, got %v", err)
		}
	})

	t.Run("unknown ticket is not found", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3)
		_, err := svc.Pickup(ctx, 404, 3)
		if !apperrors.IsCode(err, "NOT_FOUND") {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("concurrent pickups produce exactly one winner", func(t *testing.T) {
		svc, _ := newTicketServiceForTest()
		ticket := seedPending(t, svc)

		const racers = 16
		var wg sync.WaitGroup
		errs := make([]error, racers)
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Pickup(ctx, ticket.ID, int64(i+1))
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else if !apperrors.IsCode(err, "CONFLICT") {
				t.Errorf("loser got %v, expected CONFLICT", err)
			}
		}
		if winners != 1 {
			t.Errorf("expected exactly 1 winner, got %d", winners)
		}
	})
}

func TestTicketService_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("hands assigned ticket to another operator", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3, 4)
		ticket := seedPending(t, svc)
		if _, err := svc.Pickup(ctx, ticket.ID, 3); err != nil {
			t.Fatalf("pickup: %v", err)
		}

		got, err := svc.Transfer(ctx, ticket.ID, 3, 4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != domain.TicketStatusAssigned {
			t.Errorf("expected status to remain assigned, got %s", got.Status)
		}
		if got.AssignedTo == nil || *got.AssignedTo != 4 {
			t.Errorf("expected assignee 4, got %v", got.AssignedTo)
		}
		if got.TransferredFrom == nil || *got.TransferredFrom != 3 {
			t.Errorf("expected transferred_from 3, got %v", got.TransferredFrom)
		}
	})

	t.Run("rejects self transfer", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3)
		ticket := seedPending(t, svc)
		if _, err := svc.Pickup(ctx, ticket.ID, 3); err != nil {
			t.Fatalf("pickup: %v", err)
		}

		_, err := svc.Transfer(ctx, ticket.ID, 3, 3)
		if !apperrors.IsCode(err, "VALIDATION_FAILED") {
			t.Errorf("expected VALIDATION_FAILED, got %v", err)
		}
	})

	t.Run("rejects unknown target operator", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3)
		ticket := seedPending(t, svc)
		if _, err := svc.Pickup(ctx, ticket.ID, 3); err != nil {
			t.Fatalf("pickup: %v", err)
		}

		_, err := svc.Transfer(ctx, ticket.ID, 3, 404)
		if !apperrors.IsCode(err, "NOT_FOUND") {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("non-assignee cannot transfer", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3, 4, 5)
		ticket := seedPending(t, svc)
		if _, err := svc.Pickup(ctx, ticket.ID, 3); err != nil {
			t.Fatalf("pickup: %v", err)
		}

		_, err := svc.Transfer(ctx, ticket.ID, 4, 5)
		if !apperrors.IsCode(err, "INVALID_TRANSITION") {
			t.Errorf("expected INVALID_TRANSITION, got %v", err)
		}
	})

	t.Run("target deleted between check and write reported not found", func(t *testing.T) {
		svc, repo := newTicketServiceForTest(3, 4)
		ticket := seedPending(t, svc)
		if _, err := svc.Pickup(ctx, ticket.ID, 3); err != nil {
			t.Fatalf("pickup: %v", err)
		}
		repo.transferErr = &pgconn.PgError{Code: "23503", ConstraintName: "tickets_assigned_to_fkey"}

		_, err := svc.Transfer(ctx, ticket.ID, 3, 4)
		if !apperrors.IsCode(err, "NOT_FOUND") {
			t.Errorf("expected NOT_FOUND, got %v", err)
		}
	})

	t.Run("pending ticket cannot be transferred", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3, 4)
		ticket := seedPending(t, svc)

		_, err := svc.Transfer(ctx, ticket.ID, 3, 4)
		if !apperrors.IsCode(err, "INVALID_TRANSITION") {
			t.Errorf("expected INVALID_TRANSITION, got %v", err)
		}
	})
}

func TestTicketService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("assignee completes", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3)
		ticket := seedPending(t, svc)
		if _, err := svc.Pickup(ctx, ticket.ID, 3); err != nil {
			t.Fatalf("pickup: %v", err)
		}

		got, err := svc.Complete(ctx, ticket.ID, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != domain.TicketStatusCompleted {
			t.Errorf("expected completed, got %s", got.Status)
		}
	})

	t.Run("double complete reports invalid transition", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3)
		ticket := seedPending(t, svc)
		if _, err := svc.Pickup(ctx, ticket.ID, 3); err != nil {
			t.Fatalf("pickup: %v", err)
		}
		if _, err := svc.Complete(ctx, ticket.ID, 3); err != nil {
			t.Fatalf("first complete: %v", err)
		}

		_, err := svc.Complete(ctx, ticket.ID, 3)
		if !apperrors.IsCode(err, "INVALID_TRANSITION") {
			t.Errorf("expected INVALID_TRANSITION, got %v", err)
		}
	})

	t.Run("non-assignee cannot complete", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3, 4)
		ticket := seedPending(t, svc)
		if _, err := svc.Pickup(ctx, ticket.ID, 3); err != nil {
			t.Fatalf("pickup: %v", err)
		}

		_, err := svc.Complete(ctx, ticket.ID, 4)
		if !apperrors.IsCode(err, "INVALID_TRANSITION") {
			t.Errorf("expected INVALID_TRANSITION, got %v", err)
		}
	})

	t.Run("pending ticket cannot be completed", func(t *testing.T) {
		svc, _ := newTicketServiceForTest(3)
		ticket := seedPending(t, svc)

		_, err := svc.Complete(ctx, ticket.ID, 3)
		if !apperrors.IsCode(err, "INVALID_TRANSITION") {
			t.Errorf("expected INVALID_TRANSITION, got %v", err)
		}
	})
}

func TestTicketService_Cleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes only completed tickets", func(t *testing.T) {
		svc, repo := newTicketServiceForTest(3)
		done := seedPending(t, svc)
		kept := seedPending(t, svc)
		if _, err := svc.Pickup(ctx, done.ID, 3); err != nil {
			t.Fatalf("pickup: %v", err)
		}
		if _, err := svc.Complete(ctx, done.ID, 3); err != nil {
			t.Fatalf("complete: %v", err)
		}

		deleted, err := svc.CleanupCompleted(ctx, "manual")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted != 1 {
			t.Errorf("expected 1 deleted, got %d", deleted)
		}
		if _, err := repo.GetByID(ctx, kept.ID); err != nil {
			t.Errorf("pending ticket should survive cleanup: %v", err)
		}
	})

	t.Run("aged cleanup respects the cutoff", func(t *testing.T) {
		svc, repo := newTicketServiceForTest(3)
		old := seedPending(t, svc)
		fresh := seedPending(t, svc)
		for _, id := range []int64{old.ID, fresh.ID} {
			if _, err := svc.Pickup(ctx, id, 3); err != nil {
				t.Fatalf("pickup: %v", err)
			}
			if _, err := svc.Complete(ctx, id, 3); err != nil {
				t.Fatalf("complete: %v", err)
			}
		}
		repo.mu.Lock()
		repo.tickets[old.ID].CreatedAt = time.Now().Add(-40 * 24 * time.Hour)
		repo.mu.Unlock()

		deleted, err := svc.CleanupAged(ctx, 30*24*time.Hour)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted != 1 {
			t.Errorf("expected 1 deleted, got %d", deleted)
		}
		if _, err := repo.GetByID(ctx, fresh.ID); err != nil {
			t.Errorf("recent completed ticket should survive aged cleanup: %v", err)
		}
	})
}
