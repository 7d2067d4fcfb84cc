package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	gdto "github.com/Diego23232/daytradeotc-backend/internal/gateway/dto"
	"github.com/Diego23232/daytradeotc-backend/internal/ledger/coordinator"
	"github.com/Diego23232/daytradeotc-backend/internal/ledger/dto"
	"github.com/Diego23232/daytradeotc-backend/internal/ledger/repo"
	pdto "github.com/Diego23232/daytradeotc-backend/internal/provider/dto"
)

// Ledger é a fatia do coordinator exposta pela API.
type Ledger interface {
	Balance(ctx context.Context, accountID string) (int64, error)
	PlaceBet(ctx context.Context, accountID, direction string, amountCents int64) (int64, error)
	RequestWithdrawal(ctx context.Context, accountID string, amountCents int64) (int64, error)
}

// PaymentCreator cria a cobrança PIX no provedor.
type PaymentCreator interface {
	CreatePayment(ctx context.Context, amountCents int64, description, externalRef string) (*pdto.CreatePaymentResponse, error)
}

// WebhookSink recebe as notificações inbound do provedor.
type WebhookSink interface {
	HandleNotification(ctx context.Context, n gdto.Notification)
}

// Server expõe a API pública do ledger: saldo, aposta, depósito, saque,
// webhook do provedor e stream de saldo via WebSocket.
type Server struct {
	log            *zap.Logger
	ledger         Ledger
	payments       PaymentCreator
	webhooks       WebhookSink
	ws             http.HandlerFunc // nil desabilita o /ws
	defaultAccount string
}

func NewServer(log *zap.Logger, ledger Ledger, payments PaymentCreator, webhooks WebhookSink, ws http.HandlerFunc, defaultAccount string) *Server {
	return &Server{
		log:            log,
		ledger:         ledger,
		payments:       payments,
		webhooks:       webhooks,
		ws:             ws,
		defaultAccount: defaultAccount,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/balance", s.getBalance)
	r.Post("/v1/bets", s.placeBet)
	r.Post("/v1/deposits", s.createDeposit)
	r.Post("/v1/withdrawals", s.requestWithdrawal)
	r.Post("/webhooks/pix", s.pixWebhook)
	if s.ws != nil {
		r.Get("/ws", s.ws)
	}
	return r
}

// account resolve a conta da requisição; vazio cai na conta única padrão.
func (s *Server) account(id string) string {
	if id == "" {
		return s.defaultAccount
	}
	return id
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	accountID := s.account(r.URL.Query().Get("accountId"))
	bal, err := s.ledger.Balance(r.Context(), accountID)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, dto.BalanceResponse{AccountID: accountID, BalanceCents: bal})
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}

	bal, err := s.ledger.PlaceBet(r.Context(), s.account(req.AccountID), req.Direction, req.AmountCents)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.OperationResponse{Message: "Aposta registrada", BalanceCents: bal})
}

func (s *Server) createDeposit(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	if req.AmountCents <= 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Valor inválido"})
		return
	}

	// external_reference "accountId|txid" é o contrato entre a criação da
	// cobrança e a resolução do webhook
	accountID := s.account(req.AccountID)
	txid := uuid.NewString()
	externalRef := accountID + "|" + txid

	payment, err := s.payments.CreatePayment(r.Context(), req.AmountCents, "Depósito via PIX", externalRef)
	if err != nil {
		s.log.Error("provider create payment", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Error: "Erro ao gerar cobrança PIX"})
		return
	}

	writeJSON(w, http.StatusOK, dto.CreateDepositResponse{
		PaymentID:    payment.ID,
		TxID:         txid,
		QRCodeBase64: payment.QRCodeBase64,
	})
}

func (s *Server) requestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}

	bal, err := s.ledger.RequestWithdrawal(r.Context(), s.account(req.AccountID), req.AmountCents)
	if err != nil {
		s.writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.OperationResponse{
		Message:      "Saque solicitado, finalize o pagamento manualmente.",
		BalanceCents: bal,
	})
}

// pixWebhook sempre responde 200 "OK", inclusive pra payload quebrado:
// erro aqui viraria tempestade de retry do lado do provedor.
func (s *Server) pixWebhook(w http.ResponseWriter, r *http.Request) {
	var n gdto.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		s.log.Info("webhook with malformed body acknowledged", zap.Error(err))
	} else {
		s.webhooks.HandleNotification(r.Context(), n)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coordinator.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Valor inválido"})
	case errors.Is(err, coordinator.ErrInvalidDirection):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Direção inválida"})
	case errors.Is(err, repo.ErrInsufficientFunds):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Saldo insuficiente"})
	default:
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "storage unavailable"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
