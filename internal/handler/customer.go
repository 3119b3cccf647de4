package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/logging"
	"github.com/arjun-kudva/microbank/internal/service"
)

type customerService interface {
	CreateCustomer(ctx context.Context, p service.CreateCustomerParams) (*domain.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
}

type CustomerHandler struct {
	customers customerService
}

func NewCustomerHandler(customers customerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

type createCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (r createCustomerRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "required"})
	}
	if r.Phone == "" {
		errs = append(errs, FieldError{Field: "phone", Message: "required"})
	}
	return errs
}

type customerDTO struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	Phone                string    `json:"phone"`
	SavingsAccountNumber string    `json:"savings_account_number"`
	SavingsBalancePaise  int64     `json:"savings_balance_paise"`
	SavingsBalance       string    `json:"savings_balance"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
}

func toCustomerDTO(c *domain.Customer) customerDTO {
	return customerDTO{
		ID:                   c.ID,
		Name:                 c.Name,
		Phone:                c.Phone,
		SavingsAccountNumber: c.SavingsAccountNumber,
		SavingsBalancePaise:  c.SavingsBalance,
		SavingsBalance:       domain.FormatPaise(c.SavingsBalance),
		Status:               string(c.Status),
		CreatedAt:            c.CreatedAt,
	}
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	c, err := h.customers.CreateCustomer(r.Context(), service.CreateCustomerParams{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create customer", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toCustomerDTO(c))
}

func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, appErr := customerIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	c, err := h.customers.GetCustomer(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toCustomerDTO(c))
}

func customerIDFromPath(r *http.Request) (uuid.UUID, *AppError) {
	id, err := uuid.Parse(r.PathValue("customerID"))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}
	return id, nil
}
