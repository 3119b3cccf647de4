package domain

import (
	"time"

	"github.com/google/uuid"
)

type CustomerStatus string

const (
	CustomerStatusActive CustomerStatus = "active"
	CustomerStatusClosed CustomerStatus = "closed"
)

// Customer is the aggregate root. The savings balance lives here; every
// approved savings-side transaction mutates it under the row lock, guarded
// by Version. Customers are never physically deleted.
type Customer struct {
	ID                   uuid.UUID
	Name                 string
	Phone                string
	SavingsAccountNumber string
	SavingsBalance       int64 // paise
	Version              int64
	Status               CustomerStatus
	CreatedAt            time.Time
}
