package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjun-kudva/microbank/internal/auth"
	"github.com/arjun-kudva/microbank/internal/domain"
	"github.com/arjun-kudva/microbank/internal/repository"
	"github.com/arjun-kudva/microbank/internal/service/scheme"
)

type mockTransactionService struct {
	recorded *scheme.RecordTransactionRequest
	decided  *scheme.ApproveTransactionRequest
	txn      *domain.Transaction
	err      error
	listTxns []domain.Transaction
	lastList repository.ListFilter
}

func (m *mockTransactionService) RecordTransaction(_ context.Context, req scheme.RecordTransactionRequest) (*domain.Transaction, error) {
	m.recorded = &req
	return m.txn, m.err
}

func (m *mockTransactionService) ApproveTransaction(_ context.Context, req scheme.ApproveTransactionRequest) (*domain.Transaction, error) {
	m.decided = &req
	return m.txn, m.err
}

func (m *mockTransactionService) GetTransactionByID(_ context.Context, _ uuid.UUID) (*domain.Transaction, error) {
	return m.txn, m.err
}

func (m *mockTransactionService) ListTransactions(_ context.Context, f repository.ListFilter) ([]domain.Transaction, error) {
	m.lastList = f
	return m.listTxns, m.err
}

func sampleTransaction(status domain.TransactionStatus) *domain.Transaction {
	return &domain.Transaction{
		ID:            uuid.New(),
		DisplayID:     "TXN-RD-20260829-0001",
		CustomerID:    uuid.New(),
		SchemeType:    domain.SchemeTypeRD,
		AccountNumber: "RD-20260815-0001",
		Kind:          domain.KindDeposit,
		AmountPaise:   100_000,
		PaymentMode:   domain.PaymentModeCash,
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestTransactionRecord(t *testing.T) {
	svc := &mockTransactionService{txn: sampleTransaction(domain.TransactionStatusPending)}
	h := NewTransactionHandler(svc)

	body := fmt.Sprintf(`{
		"customer_id": %q,
		"account_number": "RD-20260815-0001",
		"kind": "deposit",
		"amount_paise": 100000,
		"payment_mode": "cash"
	}`, svc.txn.CustomerID)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Record(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	require.NotNil(t, svc.recorded)
	assert.Equal(t, domain.KindDeposit, svc.recorded.Kind)
	assert.Equal(t, int64(100_000), svc.recorded.AmountPaise)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "TXN-RD-20260829-0001", data["display_id"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "1000.00", data["amount"])
}

func TestTransactionRecord_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing customer", `{"kind":"deposit","amount_paise":100,"payment_mode":"cash"}`},
		{"unknown kind", fmt.Sprintf(`{"customer_id":%q,"kind":"transfer","amount_paise":100,"payment_mode":"cash"}`, uuid.New())},
		{"zero amount", fmt.Sprintf(`{"customer_id":%q,"kind":"deposit","amount_paise":0,"payment_mode":"cash"}`, uuid.New())},
		{"bad payment mode", fmt.Sprintf(`{"customer_id":%q,"kind":"deposit","amount_paise":100,"payment_mode":"upi"}`, uuid.New())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTransactionService{}
			h := NewTransactionHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.Record(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, svc.recorded)
		})
	}
}

func TestTransactionRecord_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown account", domain.ErrSchemeNotFound, http.StatusNotFound, "RESOURCE_NOT_FOUND"},
		{"closed scheme", domain.ErrSchemeClosed, http.StatusConflict, "STATE_CONFLICT"},
		{"over limit", domain.ErrWithdrawalLimit, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{"locked withdrawal", domain.ErrIneligibleOperation, http.StatusUnprocessableEntity, "INELIGIBLE_OPERATION"},
		{"wrong amount", fmt.Errorf("EMI amount must be exactly 516.67: %w", domain.ErrValidation), http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTransactionService{err: tt.err}
			h := NewTransactionHandler(svc)

			body := fmt.Sprintf(`{"customer_id":%q,"kind":"deposit","amount_paise":100,"payment_mode":"cash"}`, uuid.New())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(body))
			w := httptest.NewRecorder()
			h.Record(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestTransactionDecide(t *testing.T) {
	supervisorID := uuid.New()
	svc := &mockTransactionService{txn: sampleTransaction(domain.TransactionStatusApproved)}
	h := NewTransactionHandler(svc)

	txnID := uuid.New()
	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/transactions/"+txnID.String()+"/decision",
		strings.NewReader(`{"decision":"approved"}`))
	req.SetPathValue("transactionID", txnID.String())
	req = req.WithContext(auth.ContextWithClaims(req.Context(), &auth.Claims{
		StaffID: supervisorID,
		Role:    domain.StaffRoleSupervisor,
	}))

	w := httptest.NewRecorder()
	h.Decide(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.decided)
	assert.Equal(t, txnID, svc.decided.TransactionID)
	// The approver always comes from the token.
	assert.Equal(t, supervisorID, svc.decided.ApproverID)
}

func TestTransactionDecide_RejectRequiresReason(t *testing.T) {
	svc := &mockTransactionService{}
	h := NewTransactionHandler(svc)

	txnID := uuid.New()
	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/transactions/"+txnID.String()+"/decision",
		strings.NewReader(`{"decision":"rejected"}`))
	req.SetPathValue("transactionID", txnID.String())
	req = req.WithContext(auth.ContextWithClaims(req.Context(), &auth.Claims{
		StaffID: uuid.New(),
		Role:    domain.StaffRoleSupervisor,
	}))

	w := httptest.NewRecorder()
	h.Decide(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.decided)
}

func TestTransactionList_QueryFilters(t *testing.T) {
	customerID := uuid.New()
	svc := &mockTransactionService{listTxns: []domain.Transaction{*sampleTransaction(domain.TransactionStatusPending)}}
	h := NewTransactionHandler(svc)

	url := "/api/v1/transactions?customer_id=" + customerID.String() +
		"&scheme_type=rd&status=pending&limit=10&offset=5"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uuid.NullUUID{UUID: customerID, Valid: true}, svc.lastList.CustomerID)
	assert.Equal(t, domain.SchemeTypeRD, svc.lastList.SchemeType)
	assert.Equal(t, domain.TransactionStatusPending, svc.lastList.Status)
	assert.Equal(t, 10, svc.lastList.Limit)
	assert.Equal(t, 5, svc.lastList.Offset)
}

func TestTransactionList_BadQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"bad customer id", "?customer_id=not-a-uuid"},
		{"unknown scheme type", "?scheme_type=chit_fund"},
		{"bad status", "?status=maybe"},
		{"negative limit", "?limit=-1"},
		{"bad from date", "?from=yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTransactionHandler(&mockTransactionService{})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions"+tt.query, nil)
			w := httptest.NewRecorder()
			h.List(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
