package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Diego23232/daytradeotc-backend/internal/ledger/repo"
	"github.com/Diego23232/daytradeotc-backend/pkg/contracts/events"
)

var (
	// ErrInvalidAmount indica valor não positivo; rejeitado antes de qualquer mutação.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidDirection indica direção fora de {up, down}.
	ErrInvalidDirection = errors.New("invalid direction")
)

// Publisher publica lançamentos do ledger após o commit.
type Publisher interface {
	PublishLedgerEntry(ctx context.Context, e events.LedgerEntry) error
}

// Coordinator é o único escritor do Store. Valida antes de mutar, delega a
// atomicidade ao ApplyDelta e publica o lançamento resultante.
type Coordinator struct {
	log   *zap.Logger
	store repo.Store
	publ  Publisher
}

func New(log *zap.Logger, store repo.Store, publ Publisher) *Coordinator {
	return &Coordinator{log: log, store: store, publ: publ}
}

// Balance retorna o saldo atual da conta (0 para conta desconhecida).
func (c *Coordinator) Balance(ctx context.Context, accountID string) (int64, error) {
	return c.store.GetBalance(ctx, accountID)
}

// PlaceBet valida e registra uma aposta, debitando o saldo atomicamente.
// A direção é registrada, não avaliada: não há liquidação de mercado aqui.
func (c *Coordinator) PlaceBet(ctx context.Context, accountID, direction string, amountCents int64) (int64, error) {
	if amountCents <= 0 {
		OpsTotal.WithLabelValues("bet", "invalid").Inc()
		return 0, ErrInvalidAmount
	}
	if direction != repo.DirectionUp && direction != repo.DirectionDown {
		OpsTotal.WithLabelValues("bet", "invalid").Inc()
		return 0, ErrInvalidDirection
	}

	bet := &repo.Bet{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Direction:   direction,
		AmountCents: amountCents,
		CreatedAt:   time.Now().UTC(),
	}

	newBal, err := c.store.ApplyDelta(ctx, accountID, -amountCents, bet)
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientFunds) {
			OpsTotal.WithLabelValues("bet", "insufficient_funds").Inc()
		} else {
			OpsTotal.WithLabelValues("bet", "storage_error").Inc()
		}
		return 0, err
	}

	OpsTotal.WithLabelValues("bet", "applied").Inc()
	c.publish(ctx, events.LedgerEntry{
		EntryID:      bet.ID,
		AccountID:    accountID,
		Kind:         events.KindBetPlaced,
		AmountCents:  amountCents,
		BalanceCents: newBal,
		Ref:          direction,
	})
	c.log.Info("bet placed",
		zap.String("accountId", accountID),
		zap.String("direction", direction),
		zap.Int64("amount_cents", amountCents),
		zap.Int64("balance_cents", newBal),
	)
	return newBal, nil
}

// ConfirmDeposit aplica um depósito confirmado pelo provedor. Idempotente
// por payment_id: reentrega do mesmo pagamento devolve o saldo corrente sem
// segunda aplicação nem segundo registro.
func (c *Coordinator) ConfirmDeposit(ctx context.Context, accountID string, amountCents int64, paymentID, externalRef string) (int64, error) {
	if amountCents <= 0 {
		OpsTotal.WithLabelValues("deposit", "invalid").Inc()
		return 0, ErrInvalidAmount
	}

	dep := &repo.DepositConfirmation{
		PaymentID:   paymentID,
		AccountID:   accountID,
		AmountCents: amountCents,
		ExternalRef: externalRef,
		CreatedAt:   time.Now().UTC(),
	}

	newBal, err := c.store.ApplyDelta(ctx, accountID, amountCents, dep)
	if errors.Is(err, repo.ErrDepositAlreadyApplied) {
		DuplicateDeposits.Inc()
		OpsTotal.WithLabelValues("deposit", "duplicate").Inc()
		c.log.Info("duplicate deposit delivery ignored",
			zap.String("accountId", accountID),
			zap.String("paymentId", paymentID),
		)
		return c.store.GetBalance(ctx, accountID)
	}
	if err != nil {
		OpsTotal.WithLabelValues("deposit", "storage_error").Inc()
		return 0, err
	}

	OpsTotal.WithLabelValues("deposit", "applied").Inc()
	c.publish(ctx, events.LedgerEntry{
		EntryID:      paymentID,
		AccountID:    accountID,
		Kind:         events.KindDepositConfirmed,
		AmountCents:  amountCents,
		BalanceCents: newBal,
		Ref:          paymentID,
	})
	c.log.Info("deposit confirmed",
		zap.String("accountId", accountID),
		zap.String("paymentId", paymentID),
		zap.Int64("amount_cents", amountCents),
		zap.Int64("balance_cents", newBal),
	)
	return newBal, nil
}

// RequestWithdrawal debita o saldo e registra o pedido de saque.
// A liquidação é manual, fora do sistema; o status nasce e morre REQUESTED.
func (c *Coordinator) RequestWithdrawal(ctx context.Context, accountID string, amountCents int64) (int64, error) {
	if amountCents <= 0 {
		OpsTotal.WithLabelValues("withdrawal", "invalid").Inc()
		return 0, ErrInvalidAmount
	}

	wr := &repo.WithdrawalRequest{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		AmountCents: amountCents,
		Status:      repo.WithdrawalStatusRequested,
		CreatedAt:   time.Now().UTC(),
	}

	newBal, err := c.store.ApplyDelta(ctx, accountID, -amountCents, wr)
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientFunds) {
			OpsTotal.WithLabelValues("withdrawal", "insufficient_funds").Inc()
		} else {
			OpsTotal.WithLabelValues("withdrawal", "storage_error").Inc()
		}
		return 0, err
	}

	OpsTotal.WithLabelValues("withdrawal", "applied").Inc()
	c.publish(ctx, events.LedgerEntry{
		EntryID:      wr.ID,
		AccountID:    accountID,
		Kind:         events.KindWithdrawalRequested,
		AmountCents:  amountCents,
		BalanceCents: newBal,
	})
	c.log.Info("withdrawal requested",
		zap.String("accountId", accountID),
		zap.Int64("amount_cents", amountCents),
		zap.Int64("balance_cents", newBal),
	)
	return newBal, nil
}

// publish envia o lançamento pro Kafka em best effort: falha de publicação
// não desfaz uma operação já commitada no store.
func (c *Coordinator) publish(ctx context.Context, e events.LedgerEntry) {
	if c.publ == nil {
		return
	}
	e.TsUnixMs = time.Now().UnixMilli()
	if err := c.publ.PublishLedgerEntry(ctx, e); err != nil {
		c.log.Warn("ledger entry publish failed",
			zap.String("kind", e.Kind),
			zap.String("accountId", e.AccountID),
			zap.Error(err),
		)
	}
}
