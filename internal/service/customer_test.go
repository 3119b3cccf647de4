package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun-kudva/microbank/internal/clock"
	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/repository"
	"github.com/arjun-kudva/microbank/internal/service"
	"github.com/arjun-kudva/microbank/internal/testutil"
	"github.com/arjun-kudva/microbank/internal/txnid"
)

func TestCreateCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	clk := clock.Fixed(time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))
	svc := service.NewCustomerService(
		repository.NewCustomerRepository(db),
		txnid.NewGenerator(repository.NewSequenceRepository(db), clk),
		clk,
	)
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, service.CreateCustomerParams{
		Name:  "  Meenakshi Rao  ",
		Phone: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "Meenakshi Rao", c.Name)
	assert.Equal(t, "SB-20260829-0001", c.SavingsAccountNumber)
	assert.Equal(t, int64(0), c.SavingsBalance)
	assert.Equal(t, domain.CustomerStatusActive, c.Status)

	second, err := svc.CreateCustomer(ctx, service.CreateCustomerParams{
		Name:  "Devika Shetty",
		Phone: "9876543211",
	})
	require.NoError(t, err)
	assert.Equal(t, "SB-20260829-0002", second.SavingsAccountNumber)

	got, err := svc.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.SavingsAccountNumber, got.SavingsAccountNumber)

	_, err = svc.GetCustomer(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateCustomer_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewCustomerService(
		repository.NewCustomerRepository(db),
		txnid.NewGenerator(repository.NewSequenceRepository(db), clock.System()),
		clock.System(),
	)

	tests := []struct {
		name   string
		params service.CreateCustomerParams
	}{
		{"missing name", service.CreateCustomerParams{Phone: "9876543210"}},
		{"missing phone", service.CreateCustomerParams{Name: "Meenakshi Rao"}},
		{"blank name", service.CreateCustomerParams{Name: "   ", Phone: "9876543210"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCustomer(context.Background(), tt.params)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
