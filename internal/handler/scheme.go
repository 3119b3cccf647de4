package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/logging"
	"github.com/arjun-kudva/microbank/internal/service/scheme"
)

type schemeService interface {
	OpenScheme(ctx context.Context, customerID uuid.UUID, params scheme.OpenParams) (*domain.SchemeAccount, error)
	GetScheme(ctx context.Context, accountNumber string) (*domain.SchemeAccount, error)
	ListSchemes(ctx context.Context, customerID uuid.UUID) ([]domain.SchemeAccount, error)
	PayoutMaturity(ctx context.Context, customerID uuid.UUID, accountNumber string) (int64, *domain.Transaction, error)
}

type SchemeHandler struct {
	schemes schemeService
}

func NewSchemeHandler(schemes schemeService) *SchemeHandler {
	return &SchemeHandler{schemes: schemes}
}

type openSchemeRequest struct {
	Type          string          `json:"type"`
	TenureValue   int             `json:"tenure_value"`
	TenureUnit    string          `json:"tenure_unit"`
	AnnualRatePct decimal.Decimal `json:"annual_rate_pct"`

	PrincipalPaise    int64  `json:"principal_paise,omitempty"`
	InstallmentPaise  int64  `json:"installment_paise,omitempty"`
	GoalAmountPaise   int64  `json:"goal_amount_paise,omitempty"`
	DailyDepositPaise int64  `json:"daily_deposit_paise,omitempty"`
	DepositPaise      int64  `json:"deposit_paise,omitempty"`
	EMIFrequency      string `json:"emi_frequency,omitempty"`
}

// toParams maps the flat request onto the per-instrument parameter variant.
// Field-level validation lives with the variants; this only dispatches.
func (r openSchemeRequest) toParams() (scheme.OpenParams, *AppError) {
	tenure := scheme.TenureSpec{Value: r.TenureValue, Unit: domain.TenureUnit(r.TenureUnit)}

	switch domain.SchemeType(r.Type) {
	case domain.SchemeTypeFD:
		return scheme.NewOpenFDParams(r.PrincipalPaise, r.AnnualRatePct, tenure), nil
	case domain.SchemeTypeRD:
		return scheme.NewOpenRDParams(r.InstallmentPaise, r.AnnualRatePct, tenure), nil
	case domain.SchemeTypeGoalSavings:
		return scheme.NewOpenGoalSavingsParams(r.InstallmentPaise, r.GoalAmountPaise, r.AnnualRatePct, tenure), nil
	case domain.SchemeTypeLoan:
		return scheme.NewOpenLoanParams(r.PrincipalPaise, r.AnnualRatePct, tenure, domain.EMIFrequency(r.EMIFrequency)), nil
	case domain.SchemeTypePigmy:
		return scheme.NewOpenPigmyParams(r.DailyDepositPaise, r.AnnualRatePct, tenure), nil
	case domain.SchemeTypeMonthlyIncome:
		return scheme.NewOpenMonthlyIncomeParams(r.DepositPaise, r.AnnualRatePct, tenure), nil
	default:
		return nil, ErrValidationFailed
	}
}

type schemeDTO struct {
	AccountNumber string          `json:"account_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Type          string          `json:"type"`
	OpenedOn      time.Time       `json:"opened_on"`
	TenureValue   int             `json:"tenure_value"`
	TenureUnit    string          `json:"tenure_unit"`
	AnnualRatePct decimal.Decimal `json:"annual_rate_pct"`
	Status        string          `json:"status"`
	Details       any             `json:"details"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toSchemeDTO(a *domain.SchemeAccount) schemeDTO {
	return schemeDTO{
		AccountNumber: a.AccountNumber,
		CustomerID:    a.CustomerID,
		Type:          string(a.Type),
		OpenedOn:      a.OpenedOn,
		TenureValue:   a.TenureValue,
		TenureUnit:    string(a.TenureUnit),
		AnnualRatePct: a.AnnualRatePct,
		Status:        string(a.Status),
		Details:       a.Details,
		CreatedAt:     a.CreatedAt,
	}
}

func (h *SchemeHandler) Open(w http.ResponseWriter, r *http.Request) {
	customerID, appErr := customerIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req openSchemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	params, appErr := req.toParams()
	if appErr != nil {
		RespondAppError(w, appErr, []FieldError{{Field: "type", Message: "unknown scheme type"}})
		return
	}

	a, err := h.schemes.OpenScheme(r.Context(), customerID, params)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to open scheme", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toSchemeDTO(a))
}

func (h *SchemeHandler) GetByAccountNumber(w http.ResponseWriter, r *http.Request) {
	accountNumber := r.PathValue("accountNumber")
	if accountNumber == "" {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	a, err := h.schemes.GetScheme(r.Context(), accountNumber)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toSchemeDTO(a))
}

func (h *SchemeHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, appErr := customerIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	accounts, err := h.schemes.ListSchemes(r.Context(), customerID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]schemeDTO, 0, len(accounts))
	for i := range accounts {
		dtos = append(dtos, toSchemeDTO(&accounts[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type payoutResponse struct {
	PayoutPaise int64          `json:"payout_paise"`
	Payout      string         `json:"payout"`
	Transaction transactionDTO `json:"transaction"`
}

// Payout settles a matured or prematurely closed deposit scheme into the
// customer's savings balance.
func (h *SchemeHandler) Payout(w http.ResponseWriter, r *http.Request) {
	customerID, appErr := customerIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	accountNumber := r.PathValue("accountNumber")
	if accountNumber == "" {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	amount, txn, err := h.schemes.PayoutMaturity(r.Context(), customerID, accountNumber)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to pay out scheme", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, payoutResponse{
		PayoutPaise: amount,
		Payout:      domain.FormatPaise(amount),
		Transaction: toTransactionDTO(txn),
	})
}
