package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/arjun-kudva/microbank/internal/domain"
)

const TestPassword = "password123"

// SeedStaff inserts an active staff member with the shared test password.
func SeedStaff(t *testing.T, db *sql.DB, role domain.StaffRole) *domain.Staff {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	s := &domain.Staff{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s-%s@microbank.test", role, uuid.NewString()[:8]),
		Name:         "Test " + string(role),
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.StaffStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO staff (id, email, name, password_hash, role, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Email, s.Name, s.PasswordHash, s.Role, s.Status, s.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	return s
}

// SeedCustomer inserts an active customer holding the given savings balance.
func SeedCustomer(t *testing.T, db *sql.DB, balancePaise int64) *domain.Customer {
	t.Helper()

	c := &domain.Customer{
		ID:                   uuid.New(),
		Name:                 "Test Customer",
		Phone:                "9" + uuid.NewString()[:9],
		SavingsAccountNumber: "SB-TEST-" + uuid.NewString()[:8],
		SavingsBalance:       balancePaise,
		Version:              1,
		Status:               domain.CustomerStatusActive,
		CreatedAt:            time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO customers (
			id, name, phone, savings_account_number, savings_balance,
			version, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.Phone, c.SavingsAccountNumber, c.SavingsBalance,
		c.Version, c.Status, c.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return c
}

// SeedScheme inserts a scheme account as-is. Details must already carry the
// variant matching the account type.
func SeedScheme(t *testing.T, db *sql.DB, a *domain.SchemeAccount) {
	t.Helper()

	details, err := domain.MarshalSchemeDetails(a.Details)
	if err != nil {
		t.Fatalf("marshal scheme details: %v", err)
	}

	_, err = db.Exec(
		`INSERT INTO scheme_accounts (
			account_number, customer_id, scheme_type, opened_on,
			tenure_value, tenure_unit, annual_rate_pct, status, version,
			created_at, details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.AccountNumber, a.CustomerID, a.Type, a.OpenedOn,
		a.TenureValue, a.TenureUnit, a.AnnualRatePct, a.Status, a.Version,
		a.CreatedAt, details,
	)
	if err != nil {
		t.Fatalf("seed scheme: %v", err)
	}
}
