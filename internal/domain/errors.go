package domain

import (
	"errors"
	"fmt"
)

// The five error kinds surfaced to callers. Specific errors below wrap one
// of these so handlers can classify with errors.Is against the kind alone.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrStateConflict       = errors.New("state conflict")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrIneligibleOperation = errors.New("operation not eligible")
)

var (
	ErrCustomerNotFound    = fmt.Errorf("customer %w", ErrNotFound)
	ErrSchemeNotFound      = fmt.Errorf("scheme account %w", ErrNotFound)
	ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)

	ErrSchemeClosed    = fmt.Errorf("scheme account is closed or matured: %w", ErrStateConflict)
	ErrNotPending      = fmt.Errorf("transaction is not pending: %w", ErrStateConflict)
	ErrVersionConflict = fmt.Errorf("concurrent modification: %w", ErrStateConflict)

	ErrWithdrawalLimit = fmt.Errorf("withdrawal limit exceeded: %w", ErrInsufficientFunds)

	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")
)
