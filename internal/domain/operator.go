package domain

import "time"

// OperatorRole enumerates directory roles.
type OperatorRole string

const (
	OperatorRoleUser  OperatorRole = "user"
	OperatorRoleAdmin OperatorRole = "admin"
)

// OperatorStatus enumerates presence states broadcast on the board.
type OperatorStatus string

const (
	StatusAvailable OperatorStatus = "available"
	StatusBusy      OperatorStatus = "busy"
	StatusAway      OperatorStatus = "away"
	StatusOffline   OperatorStatus = "offline"
)

// ValidOperatorStatus reports whether s is one of the known presence states.
func ValidOperatorStatus(s OperatorStatus) bool {
	switch s {
	case StatusAvailable, StatusBusy, StatusAway, StatusOffline:
		return true
	}
	return false
}

// Shift enumerates working shifts. A nil *Shift means no shift assigned.
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
)

// ValidShift reports whether s is a known shift value.
func ValidShift(s Shift) bool {
	return s == ShiftMorning || s == ShiftAfternoon
}

// Operator models a call-center operator on the coordination board.
type Operator struct {
	ID           int64
	Name         string
	PasswordHash string
	Role         OperatorRole
	Department   string
	Extension    *string
	Shift        *Shift
	Status       OperatorStatus
	LastSeen     time.Time
}
