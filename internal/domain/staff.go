package domain

import (
	"time"

	"github.com/google/uuid"
)

type StaffRole string

const (
	StaffRoleAgent      StaffRole = "agent"
	StaffRoleSupervisor StaffRole = "supervisor"
)

type StaffStatus string

const (
	StaffStatusActive    StaffStatus = "active"
	StaffStatusSuspended StaffStatus = "suspended"
)

// Staff is the operator identity recorded as approver on transactions. The
// engine records the id; it does not authorize beyond role at the HTTP edge.
type Staff struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         StaffRole
	Status       StaffStatus
	CreatedAt    time.Time
}
