package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/arjun-kudva/microbank/internal/auth"
	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/logging"
	"github.com/arjun-kudva/microbank/internal/repository"
	"github.com/arjun-kudva/microbank/internal/service/scheme"
)

type transactionService interface {
	RecordTransaction(ctx context.Context, req scheme.RecordTransactionRequest) (*domain.Transaction, error)
	ApproveTransaction(ctx context.Context, req scheme.ApproveTransactionRequest) (*domain.Transaction, error)
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, f repository.ListFilter) ([]domain.Transaction, error)
}

type TransactionHandler struct {
	txns transactionService
}

func NewTransactionHandler(txns transactionService) *TransactionHandler {
	return &TransactionHandler{txns: txns}
}

type recordTransactionRequest struct {
	CustomerID    uuid.UUID `json:"customer_id"`
	AccountNumber string    `json:"account_number"`
	Kind          string    `json:"kind"`
	AmountPaise   int64     `json:"amount_paise"`
	PaymentMode   string    `json:"payment_mode"`
	Remarks       string    `json:"remarks"`
}

func (r recordTransactionRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CustomerID == uuid.Nil {
		errs = append(errs, FieldError{Field: "customer_id", Message: "required"})
	}
	if r.Kind == "" {
		errs = append(errs, FieldError{Field: "kind", Message: "required"})
	} else if !domain.TransactionKind(r.Kind).IsValid() {
		errs = append(errs, FieldError{Field: "kind", Message: "unknown transaction kind"})
	}
	if r.AmountPaise <= 0 {
		errs = append(errs, FieldError{Field: "amount_paise", Message: "must be greater than 0"})
	}
	if r.PaymentMode == "" {
		errs = append(errs, FieldError{Field: "payment_mode", Message: "required"})
	} else if !domain.PaymentMode(r.PaymentMode).IsValid() {
		errs = append(errs, FieldError{Field: "payment_mode", Message: "must be cash, cheque, or online"})
	}
	return errs
}

type transactionDTO struct {
	ID                  uuid.UUID  `json:"id"`
	DisplayID           string     `json:"display_id"`
	CustomerID          uuid.UUID  `json:"customer_id"`
	SchemeType          string     `json:"scheme_type"`
	AccountNumber       string     `json:"account_number"`
	Kind                string     `json:"kind"`
	AmountPaise         int64      `json:"amount_paise"`
	Amount              string     `json:"amount"`
	InstallmentsCovered int        `json:"installments_covered,omitempty"`
	PenaltyPaise        int64      `json:"penalty_paise,omitempty"`
	PaymentMode         string     `json:"payment_mode"`
	Remarks             string     `json:"remarks,omitempty"`
	Status              string     `json:"status"`
	ApproverID          *uuid.UUID `json:"approver_id,omitempty"`
	RejectionReason     *string    `json:"rejection_reason,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:                  t.ID,
		DisplayID:           t.DisplayID,
		CustomerID:          t.CustomerID,
		SchemeType:          string(t.SchemeType),
		AccountNumber:       t.AccountNumber,
		Kind:                string(t.Kind),
		AmountPaise:         t.AmountPaise,
		Amount:              domain.FormatPaise(t.AmountPaise),
		InstallmentsCovered: t.InstallmentsCovered,
		PenaltyPaise:        t.PenaltyPaise,
		PaymentMode:         string(t.PaymentMode),
		Remarks:             t.Remarks,
		Status:              string(t.Status),
		ApproverID:          t.ApproverID,
		RejectionReason:     t.RejectionReason,
		CreatedAt:           t.CreatedAt,
		ResolvedAt:          t.ResolvedAt,
	}
}

func (h *TransactionHandler) Record(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req recordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	txn, err := h.txns.RecordTransaction(r.Context(), scheme.RecordTransactionRequest{
		CustomerID:    req.CustomerID,
		AccountNumber: req.AccountNumber,
		Kind:          domain.TransactionKind(req.Kind),
		AmountPaise:   req.AmountPaise,
		PaymentMode:   domain.PaymentMode(req.PaymentMode),
		Remarks:       req.Remarks,
	})
	if err != nil {
		log.Error("failed to record transaction", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransactionDTO(txn))
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

func (r decisionRequest) Validate() []FieldError {
	var errs []FieldError
	switch scheme.Decision(r.Decision) {
	case scheme.DecisionApproved:
	case scheme.DecisionRejected:
		if r.Reason == "" {
			errs = append(errs, FieldError{Field: "reason", Message: "required when rejecting"})
		}
	default:
		errs = append(errs, FieldError{Field: "decision", Message: "must be approved or rejected"})
	}
	return errs
}

// Decide resolves a pending transaction. Supervisor-only; the route is
// gated by middleware.RequireRole, and the approver recorded on the
// transaction comes from the token, never the body.
func (h *TransactionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	txnID, appErr := transactionIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	txn, err := h.txns.ApproveTransaction(r.Context(), scheme.ApproveTransactionRequest{
		TransactionID: txnID,
		Decision:      scheme.Decision(req.Decision),
		ApproverID:    claims.StaffID,
		Reason:        req.Reason,
	})
	if err != nil {
		log.Error("failed to resolve transaction", "error", err, "transaction_id", txnID)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(txn))
}

func (h *TransactionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	txnID, appErr := transactionIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	txn, err := h.txns.GetTransactionByID(r.Context(), txnID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransactionDTO(txn))
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	f, fields := listFilterFromQuery(r)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	txns, err := h.txns.ListTransactions(r.Context(), f)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionDTO, 0, len(txns))
	for i := range txns {
		dtos = append(dtos, toTransactionDTO(&txns[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func listFilterFromQuery(r *http.Request) (repository.ListFilter, []FieldError) {
	var f repository.ListFilter
	var errs []FieldError
	q := r.URL.Query()

	if v := q.Get("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			errs = append(errs, FieldError{Field: "customer_id", Message: "must be a uuid"})
		} else {
			f.CustomerID = uuid.NullUUID{UUID: id, Valid: true}
		}
	}
	f.AccountNumber = q.Get("account_number")
	if v := q.Get("scheme_type"); v != "" {
		t := domain.SchemeType(v)
		if !t.IsValid() {
			errs = append(errs, FieldError{Field: "scheme_type", Message: "unknown scheme type"})
		}
		f.SchemeType = t
	}
	if v := q.Get("status"); v != "" {
		switch s := domain.TransactionStatus(v); s {
		case domain.TransactionStatusPending, domain.TransactionStatusApproved, domain.TransactionStatusRejected:
			f.Status = s
		default:
			errs = append(errs, FieldError{Field: "status", Message: "must be pending, approved, or rejected"})
		}
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errs = append(errs, FieldError{Field: "from", Message: "must be RFC3339"})
		} else {
			f.From = &t
		}
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errs = append(errs, FieldError{Field: "to", Message: "must be RFC3339"})
		} else {
			f.To = &t
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, FieldError{Field: "limit", Message: "must be a non-negative integer"})
		} else {
			f.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, FieldError{Field: "offset", Message: "must be a non-negative integer"})
		} else {
			f.Offset = n
		}
	}

	return f, errs
}

func transactionIDFromPath(r *http.Request) (uuid.UUID, *AppError) {
	id, err := uuid.Parse(r.PathValue("transactionID"))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}
	return id, nil
}
