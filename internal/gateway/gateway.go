package gateway

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	gdto "github.com/Diego23232/daytradeotc-backend/internal/gateway/dto"
	pdto "github.com/Diego23232/daytradeotc-backend/internal/provider/dto"
)

// WebhookDropped conta notificações reconhecidas e descartadas, por motivo.
// Descartar não é erro: o protocolo do provedor exige ack mesmo pra evento
// ignorado, senão ele reentrega pra sempre.
var WebhookDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "webhook_dropped_total",
	Help: "Notificações de webhook descartadas por motivo",
}, []string{"reason"})

// PaymentFetcher consulta o pagamento no provedor. A chamada acontece antes
// de qualquer transação no store — nunca segurando lock de conta.
type PaymentFetcher interface {
	GetPayment(ctx context.Context, paymentID string) (*pdto.Payment, error)
}

// Ledger é a fatia do coordinator que o gateway usa.
type Ledger interface {
	ConfirmDeposit(ctx context.Context, accountID string, amountCents int64, paymentID, externalRef string) (int64, error)
}

// Gateway traduz notificações do provedor em confirmações de depósito,
// deduplicadas pelo payment_id dentro do coordinator/store.
type Gateway struct {
	log      *zap.Logger
	provider PaymentFetcher
	ledger   Ledger
}

func New(log *zap.Logger, provider PaymentFetcher, ledger Ledger) *Gateway {
	return &Gateway{log: log, provider: provider, ledger: ledger}
}

// HandleNotification processa uma notificação inbound. Nunca retorna erro:
// tudo que não vira depósito confirmado é registrado e descartado, e a
// camada HTTP responde 200 de qualquer forma.
func (g *Gateway) HandleNotification(ctx context.Context, n gdto.Notification) {
	if n.Type != "payment" {
		g.drop("not_payment", zap.String("type", n.Type))
		return
	}

	paymentID := string(n.Data.ID)
	if paymentID == "" {
		g.drop("missing_payment_id")
		return
	}

	// Consulta o provedor fora de qualquer lock do ledger
	payment, err := g.provider.GetPayment(ctx, paymentID)
	if err != nil {
		g.drop("provider_lookup_failed", zap.String("paymentId", paymentID), zap.Error(err))
		return
	}

	if payment.Status != pdto.StatusApproved {
		g.drop("not_approved", zap.String("paymentId", paymentID), zap.String("status", payment.Status))
		return
	}

	accountID, _, ok := parseExternalRef(payment.ExternalReference)
	if !ok {
		g.drop("bad_external_ref", zap.String("paymentId", paymentID), zap.String("ref", payment.ExternalReference))
		return
	}

	if payment.AmountCents <= 0 {
		g.drop("bad_amount", zap.String("paymentId", paymentID), zap.Int64("amount_cents", payment.AmountCents))
		return
	}

	if _, err := g.ledger.ConfirmDeposit(ctx, accountID, payment.AmountCents, paymentID, payment.ExternalReference); err != nil {
		// Falha de storage: loga e ainda assim reconhece; a reentrega do
		// provedor tenta de novo e a idempotência torna isso seguro.
		g.log.Error("deposit confirmation failed",
			zap.String("paymentId", paymentID),
			zap.String("accountId", accountID),
			zap.Error(err),
		)
		WebhookDropped.WithLabelValues("storage_error").Inc()
		return
	}
}

func (g *Gateway) drop(reason string, fields ...zap.Field) {
	WebhookDropped.WithLabelValues(reason).Inc()
	g.log.Info("webhook dropped", append([]zap.Field{zap.String("reason", reason)}, fields...)...)
}

// parseExternalRef separa "accountId|token". O token opaco vem da criação
// da cobrança; só o accountId importa aqui.
func parseExternalRef(ref string) (accountID, token string, ok bool) {
	accountID, token, found := strings.Cut(ref, "|")
	if !found || accountID == "" {
		return "", "", false
	}
	return accountID, token, true
}
