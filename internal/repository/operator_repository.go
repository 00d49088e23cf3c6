package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/byZeet/centralita-neron/internal/domain"
)

// PresenceUpdate describes a partial presence write. Shift carries an
// explicit nil-vs-absent distinction: SetShift false leaves the column
// untouched, SetShift true with a nil Shift clears it.
type PresenceUpdate struct {
	Status   *domain.OperatorStatus
	SetShift bool
	Shift    *domain.Shift
}

// OperatorRepository encapsulates operator directory persistence.
type OperatorRepository interface {
	Create(ctx context.Context, op *domain.Operator) error
	GetByID(ctx context.Context, id int64) (*domain.Operator, error)
	GetByName(ctx context.Context, name string) (*domain.Operator, error)
	List(ctx context.Context) ([]domain.Operator, error)
	Update(ctx context.Context, op *domain.Operator) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	UpdatePresence(ctx context.Context, id int64, update PresenceUpdate) (bool, error)
}

type operatorRepository struct {
	pool *pgxpool.Pool
}

// NewOperatorRepository instantiates repository.
func NewOperatorRepository(pool *pgxpool.Pool) OperatorRepository {
	return &operatorRepository{pool: pool}
}

const operatorColumns = `id, name, password_hash, role, department, extension, shift, status, last_seen`

func (r *operatorRepository) Create(ctx context.Context, op *domain.Operator) error {
	const query = `
        INSERT INTO operators (name, password_hash, role, department, extension, shift, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, last_seen`
	return r.pool.QueryRow(ctx, query,
		op.Name,
		op.PasswordHash,
		op.Role,
		op.Department,
		op.Extension,
		op.Shift,
		op.Status,
	).Scan(&op.ID, &op.LastSeen)
}

func (r *operatorRepository) GetByID(ctx context.Context, id int64) (*domain.Operator, error) {
	return r.fetchSingle(ctx, `SELECT `+operatorColumns+` FROM operators WHERE id=$1`, id)
}

func (r *operatorRepository) GetByName(ctx context.Context, name string) (*domain.Operator, error) {
	return r.fetchSingle(ctx, `SELECT `+operatorColumns+` FROM operators WHERE LOWER(name)=LOWER($1)`, name)
}

func (r *operatorRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Operator, error) {
	var op domain.Operator
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&op.ID,
		&op.Name,
		&op.PasswordHash,
		&op.Role,
		&op.Department,
		&op.Extension,
		&op.Shift,
		&op.Status,
		&op.LastSeen,
	); err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operatorRepository) List(ctx context.Context) ([]domain.Operator, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+operatorColumns+` FROM operators ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Operator
	for rows.Next() {
		var op domain.Operator
		if err := rows.Scan(
			&op.ID,
			&op.Name,
			&op.PasswordHash,
			&op.Role,
			&op.Department,
			&op.Extension,
			&op.Shift,
			&op.Status,
			&op.LastSeen,
		); err != nil {
			return nil, err
		}
		result = append(result, op)
	}
	return result, rows.Err()
}

func (r *operatorRepository) Update(ctx context.Context, op *domain.Operator) (bool, error) {
	const query = `
        UPDATE operators SET name=$1, password_hash=$2, role=$3, department=$4, extension=$5, shift=$6
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		op.Name,
		op.PasswordHash,
		op.Role,
		op.Department,
		op.Extension,
		op.Shift,
		op.ID,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *operatorRepository) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM operators WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// UpdatePresence applies a partial status/shift change and always bumps
// last_seen, matching the heartbeat semantics of the presence endpoint.
func (r *operatorRepository) UpdatePresence(ctx context.Context, id int64, update PresenceUpdate) (bool, error) {
	query := `UPDATE operators SET last_seen=NOW()`
	args := []any{}

	if update.Status != nil {
		args = append(args, *update.Status)
		query += fmt.Sprintf(", status=$%d", len(args))
	}
	if update.SetShift {
		args = append(args, update.Shift)
		query += fmt.Sprintf(", shift=$%d", len(args))
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id=$%d", len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}
