package dto

import (
	"time"

	"github.com/byZeet/centralita-neron/internal/domain"
)

// LoginRequest payload for POST /login.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the operator profile.
type LoginResponse struct {
	Token    string           `json:"token"`
	Operator OperatorResponse `json:"operator"`
}

// OperatorRequest payload for directory create/update. Password is optional
// on update.
type OperatorRequest struct {
	Name       string  `json:"name"`
	Password   *string `json:"password"`
	Role       string  `json:"role"`
	Department string  `json:"department"`
	Extension  *string `json:"extension"`
	Shift      *string `json:"shift"`
}

// StatusUpdateRequest payload for POST /status. Shift distinguishes an
// explicit null (clear the shift) from an absent key (leave it alone); the
// handler resolves that from the raw body.
type StatusUpdateRequest struct {
	ID     int64   `json:"id"`
	Status *string `json:"status"`
	Shift  *string `json:"shift"`
}

// OperatorResponse is the wire form of an operator, never carrying the
// password hash.
type OperatorResponse struct {
	ID         int64                 `json:"id"`
	Name       string                `json:"name"`
	Role       domain.OperatorRole   `json:"role"`
	Department string                `json:"department"`
	Extension  *string               `json:"extension"`
	Shift      *domain.Shift         `json:"shift"`
	Status     domain.OperatorStatus `json:"status"`
	LastSeen   time.Time             `json:"last_seen"`
}
