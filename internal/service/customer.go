package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/clock"
	"github.com/arjun-kudva/microbank/internal/domain"
)

type customerRepo interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
}

type accountNumberer interface {
	NextAccountNumber(ctx context.Context, t domain.SchemeType) (string, error)
}

// CustomerService handles onboarding. Every customer gets a savings account
// at creation; scheme accounts hang off it later.
type CustomerService struct {
	customers customerRepo
	ids       accountNumberer
	clock     clock.Clock
}

func NewCustomerService(customers customerRepo, ids accountNumberer, clk clock.Clock) *CustomerService {
	return &CustomerService{customers: customers, ids: ids, clock: clk}
}

type CreateCustomerParams struct {
	Name  string
	Phone string
}

func (p CreateCustomerParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(p.Phone) == "" {
		return fmt.Errorf("phone is required: %w", domain.ErrValidation)
	}
	return nil
}

func (s *CustomerService) CreateCustomer(ctx context.Context, p CreateCustomerParams) (*domain.Customer, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}

	accountNumber, err := s.ids.NextAccountNumber(ctx, domain.SchemeTypeSavings)
	if err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}

	c := &domain.Customer{
		ID:                   uuid.New(),
		Name:                 strings.TrimSpace(p.Name),
		Phone:                strings.TrimSpace(p.Phone),
		SavingsAccountNumber: accountNumber,
		SavingsBalance:       0,
		Version:              1,
		Status:               domain.CustomerStatusActive,
		CreatedAt:            s.clock.Now().UTC().Truncate(time.Microsecond),
	}

	if err := s.customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("CreateCustomer: %w", err)
	}
	return c, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetCustomer: %w", err)
	}
	return c, nil
}
