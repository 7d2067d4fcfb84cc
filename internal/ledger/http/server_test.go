package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Diego23232/daytradeotc-backend/internal/gateway"
	"github.com/Diego23232/daytradeotc-backend/internal/ledger/coordinator"
	"github.com/Diego23232/daytradeotc-backend/internal/ledger/dto"
	"github.com/Diego23232/daytradeotc-backend/internal/ledger/repo"
	pdto "github.com/Diego23232/daytradeotc-backend/internal/provider/dto"
)

// fakeProvider cobre os dois papéis: criação de cobrança e consulta de
// pagamento na reconciliação do webhook.
type fakeProvider struct {
	payments    map[string]*pdto.Payment
	lastRef     string
	createError error
}

func (f *fakeProvider) CreatePayment(_ context.Context, amountCents int64, _ string, externalRef string) (*pdto.CreatePaymentResponse, error) {
	if f.createError != nil {
		return nil, f.createError
	}
	f.lastRef = externalRef
	id := "pix_test_1"
	f.payments[id] = &pdto.Payment{
		ID:                id,
		Status:            pdto.StatusApproved,
		AmountCents:       amountCents,
		ExternalReference: externalRef,
	}
	return &pdto.CreatePaymentResponse{ID: id, Status: pdto.StatusPending, QRCodeBase64: "cXI="}, nil
}

func (f *fakeProvider) GetPayment(_ context.Context, id string) (*pdto.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func newTestServer(t *testing.T) (*Server, *repo.Memory, *fakeProvider) {
	t.Helper()
	store := repo.NewMemory()
	coord := coordinator.New(zap.NewNop(), store, nil)
	prov := &fakeProvider{payments: make(map[string]*pdto.Payment)}
	gw := gateway.New(zap.NewNop(), prov, coord)
	return NewServer(zap.NewNop(), coord, prov, gw, nil, "1"), store, prov
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if s, ok := body.(string); ok {
		rd = bytes.NewReader([]byte(s))
	} else {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func seedDeposit(t *testing.T, h http.Handler, prov *fakeProvider, amountCents int64) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/v1/deposits", dto.CreateDepositRequest{AmountCents: amountCents})
	require.Equal(t, http.StatusOK, rec.Code)

	var created dto.CreateDepositResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// o simulador de provedor aprova imediatamente; entrega o webhook
	rec = doJSON(t, h, http.MethodPost, "/webhooks/pix",
		`{"type":"payment","data":{"id":"`+created.PaymentID+`"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBalanceDefaultsToSingleAccount(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Router()

	req := httptest.NewRequest(http.MethodGet, "/v1/balance", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1", resp.AccountID)
	assert.Equal(t, int64(0), resp.BalanceCents)
}

func TestDepositIntentAndWebhookCreditBalance(t *testing.T) {
	s, _, prov := newTestServer(t)
	h := s.Router()

	seedDeposit(t, h, prov, 10000)

	// referência externa segue o contrato accountId|txid
	acc, _, found := strings.Cut(prov.lastRef, "|")
	require.True(t, found)
	assert.Equal(t, "1", acc)

	rec := doJSON(t, h, http.MethodGet, "/v1/balance", nil)
	var resp dto.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(10000), resp.BalanceCents)
}

func TestDepositIntentRejectsInvalidAmount(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Router()

	rec := doJSON(t, h, http.MethodPost, "/v1/deposits", dto.CreateDepositRequest{AmountCents: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Valor inválido")
}

func TestDepositIntentProviderFailure(t *testing.T) {
	s, _, prov := newTestServer(t)
	prov.createError = errors.New("provider down")
	h := s.Router()

	rec := doJSON(t, h, http.MethodPost, "/v1/deposits", dto.CreateDepositRequest{AmountCents: 100})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPlaceBetHappyPath(t *testing.T) {
	s, _, prov := newTestServer(t)
	h := s.Router()
	seedDeposit(t, h, prov, 10000)

	rec := doJSON(t, h, http.MethodPost, "/v1/bets", dto.PlaceBetRequest{Direction: "up", AmountCents: 4000})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.OperationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Aposta registrada", resp.Message)
	assert.Equal(t, int64(6000), resp.BalanceCents)
}

func TestPlaceBetRejections(t *testing.T) {
	s, store, prov := newTestServer(t)
	h := s.Router()
	seedDeposit(t, h, prov, 1000)

	rec := doJSON(t, h, http.MethodPost, "/v1/bets", dto.PlaceBetRequest{Direction: "up", AmountCents: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/bets", dto.PlaceBetRequest{Direction: "left", AmountCents: 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/bets", dto.PlaceBetRequest{Direction: "down", AmountCents: 2000})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Saldo insuficiente")

	rec = doJSON(t, h, http.MethodPost, "/v1/bets", "{bad json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, store.Bets())
}

func TestWithdrawalIsManualSettlement(t *testing.T) {
	s, store, prov := newTestServer(t)
	h := s.Router()
	seedDeposit(t, h, prov, 6000)

	rec := doJSON(t, h, http.MethodPost, "/v1/withdrawals", dto.WithdrawalRequest{AmountCents: 6000})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.OperationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Saque solicitado, finalize o pagamento manualmente.", resp.Message)
	assert.Equal(t, int64(0), resp.BalanceCents)
	require.Len(t, store.Withdrawals(), 1)
	assert.Equal(t, repo.WithdrawalStatusRequested, store.Withdrawals()[0].Status)
}

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Router()

	cases := []string{
		`{"type":"test","data":{"id":"x"}}`,     // tipo ignorado
		`{"type":"payment","data":{"id":"??"}}`, // pagamento desconhecido no provedor
		`not json at all`,                       // corpo quebrado
		`{}`,                                    // vazio
	}
	for _, body := range cases {
		rec := doJSON(t, h, http.MethodPost, "/webhooks/pix", body)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	}

	// nada disso mexeu no saldo
	rec := doJSON(t, h, http.MethodGet, "/v1/balance", nil)
	var resp dto.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(0), resp.BalanceCents)
}

func TestWebhookReplayDoesNotDoubleCredit(t *testing.T) {
	s, _, prov := newTestServer(t)
	h := s.Router()
	seedDeposit(t, h, prov, 10000)

	// reentrega o mesmo webhook mais duas vezes
	for i := 0; i < 2; i++ {
		rec := doJSON(t, h, http.MethodPost, "/webhooks/pix",
			`{"type":"payment","data":{"id":"pix_test_1"}}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/v1/balance", nil)
	var resp dto.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(10000), resp.BalanceCents)
}
