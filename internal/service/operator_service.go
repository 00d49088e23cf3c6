package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/byZeet/centralita-neron/internal/auth"
	"github.com/byZeet/centralita-neron/internal/domain"
	"github.com/byZeet/centralita-neron/internal/events"
	"github.com/byZeet/centralita-neron/internal/repository"
	apperrors "github.com/byZeet/centralita-neron/pkg/util/errorutil"
)

const defaultDepartment = "General"

// OperatorService manages the operator directory, login, and presence.
type OperatorService struct {
	operators  repository.OperatorRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// OperatorDependencies bundles collaborators for the operator service.
type OperatorDependencies struct {
	OperatorRepo repository.OperatorRepository
	Tokens       *auth.TokenManager
	Dispatcher   events.Dispatcher
	BcryptCost   int
}

// OperatorCreateInput describes directory creation payload.
type OperatorCreateInput struct {
	Name       string
	Password   string
	Role       domain.OperatorRole
	Department string
	Extension  *string
	Shift      *domain.Shift
}

// OperatorUpdateInput describes directory update payload. A nil Password
// leaves the stored hash unchanged.
type OperatorUpdateInput struct {
	Name       string
	Password   *string
	Role       domain.OperatorRole
	Department string
	Extension  *string
	Shift      *domain.Shift
}

// PresenceInput describes a partial presence update.
type PresenceInput struct {
	Status   *domain.OperatorStatus
	SetShift bool
	Shift    *domain.Shift
}

// NewOperatorService constructs the service.
func NewOperatorService(deps OperatorDependencies) *OperatorService {
	cost := deps.BcryptCost
	if cost <= 0 {
		cost = 10
	}
	return &OperatorService{
		operators:  deps.OperatorRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		bcryptCost: cost,
	}
}

// Login verifies credentials and issues a token for the operator.
func (s *OperatorService) Login(ctx context.Context, name, password string) (*domain.Operator, string, error) {
	if strings.TrimSpace(name) == "" || password == "" {
		return nil, "", apperrors.NewValidationError("name and password are required", nil)
	}
	op, err := s.operators.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewUnauthorized("unknown operator")
		}
		return nil, "", apperrors.MapError(err)
	}
	if err := auth.ComparePassword(op.PasswordHash, password); err != nil {
		return nil, "", apperrors.NewUnauthorized("invalid credentials")
	}
	token, _, err := s.tokens.GenerateToken(op.ID, op.Role)
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}
	return op, token, nil
}

// List returns the full directory.
func (s *OperatorService) List(ctx context.Context) ([]domain.Operator, error) {
	ops, err := s.operators.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ops, nil
}

// Get returns one operator.
func (s *OperatorService) Get(ctx context.Context, id int64) (*domain.Operator, error) {
	op, err := s.operators.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("operator", map[string]any{"operator_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return op, nil
}

// Create adds an operator. Missing department falls back to the default and
// a missing extension gets a generated three-digit one, mirroring how the
// board seeds new operators.
func (s *OperatorService) Create(ctx context.Context, input OperatorCreateInput) (*domain.Operator, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name and password are required", nil)
	}
	if input.Shift != nil && !domain.ValidShift(*input.Shift) {
		return nil, apperrors.NewValidationError("invalid shift", map[string]any{"shift": *input.Shift})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	role := input.Role
	if role == "" {
		role = domain.OperatorRoleUser
	}
	department := strings.TrimSpace(input.Department)
	if department == "" {
		department = defaultDepartment
	}
	extension := input.Extension
	if extension == nil || strings.TrimSpace(*extension) == "" {
		generated := randomExtension()
		extension = &generated
	}

	op := &domain.Operator{
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Department:   department,
		Extension:    extension,
		Shift:        input.Shift,
		Status:       domain.StatusOffline,
	}
	if err := s.operators.Create(ctx, op); err != nil {
		return nil, mapOperatorWriteError(err)
	}
	return op, nil
}

// Update replaces directory fields; the password only changes when provided.
func (s *OperatorService) Update(ctx context.Context, id int64, input OperatorUpdateInput) (*domain.Operator, error) {
	op, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		op.Name = name
	}
	if input.Role != "" {
		op.Role = input.Role
	}
	if department := strings.TrimSpace(input.Department); department != "" {
		op.Department = department
	}
	op.Extension = input.Extension
	op.Shift = input.Shift
	if input.Password != nil && *input.Password != "" {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		op.PasswordHash = hash
	}

	matched, err := s.operators.Update(ctx, op)
	if err != nil {
		return nil, mapOperatorWriteError(err)
	}
	if !matched {
		return nil, apperrors.NewNotFound("operator", map[string]any{"operator_id": id})
	}
	return op, nil
}

// Delete removes an operator from the directory. Tickets restrict the delete:
// an operator still referenced as an assignee cannot be removed until their
// tickets are transferred or purged.
func (s *OperatorService) Delete(ctx context.Context, id int64) error {
	matched, err := s.operators.Delete(ctx, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.NewConflict("operator still holds tickets", map[string]any{"operator_id": id})
		}
		return apperrors.MapError(err)
	}
	if !matched {
		return apperrors.NewNotFound("operator", map[string]any{"operator_id": id})
	}
	return nil
}

// UpdatePresence applies a partial status/shift change, bumps last_seen, and
// announces the status change on the event stream.
func (s *OperatorService) UpdatePresence(ctx context.Context, id int64, input PresenceInput) error {
	if input.Status != nil && !domain.ValidOperatorStatus(*input.Status) {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
	}
	if input.SetShift && input.Shift != nil && !domain.ValidShift(*input.Shift) {
		return apperrors.NewValidationError("invalid shift", map[string]any{"shift": *input.Shift})
	}

	matched, err := s.operators.UpdatePresence(ctx, id, repository.PresenceUpdate{
		Status:   input.Status,
		SetShift: input.SetShift,
		Shift:    input.Shift,
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	if !matched {
		return apperrors.NewNotFound("operator", map[string]any{"operator_id": id})
	}

	if input.Status != nil && s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventPresenceChanged,
			Actor:     &id,
			Timestamp: time.Now(),
			Payload: events.PresenceChangedPayload{
				OperatorID: id,
				NewStatus:  *input.Status,
			},
		})
	}
	return nil
}

// mapOperatorWriteError turns unique-constraint violations into
// user-correctable validation errors naming the colliding field.
func mapOperatorWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "operators_name_key":
			return apperrors.NewValidationError("operator name already exists", nil)
		case "idx_operators_extension":
			return apperrors.NewValidationError("extension already assigned to another operator", nil)
		}
		return apperrors.NewConflict("duplicate value", map[string]any{"constraint": pgErr.ConstraintName})
	}
	return apperrors.MapError(err)
}

func randomExtension() string {
	return fmt.Sprintf("%03d", 100+rand.Intn(900))
}
