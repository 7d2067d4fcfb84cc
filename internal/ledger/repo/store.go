package repo

import (
	"context"
	"errors"
)

var (
	// ErrInsufficientFunds indica que a mutação deixaria o saldo negativo.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDepositAlreadyApplied indica que o payment_id já foi aplicado.
	// Não é falha: o coordinator trata como no-op idempotente.
	ErrDepositAlreadyApplied = errors.New("deposit already applied")
)

// Store é o contrato do armazenamento durável do ledger: saldo por conta
// mais registros append-only de apostas, depósitos e saques.
//
// ApplyDelta executa como unidade atômica: trava a conta, valida que o
// saldo resultante não fica negativo, insere o registro e atualiza o saldo —
// tudo ou nada. Para *DepositConfirmation a unicidade do payment_id é
// verificada dentro da mesma transação; duplicata retorna
// ErrDepositAlreadyApplied sem mutação alguma.
type Store interface {
	GetBalance(ctx context.Context, accountID string) (int64, error)
	ApplyDelta(ctx context.Context, accountID string, deltaCents int64, rec Record) (newBalanceCents int64, err error)
	HasDepositBeenApplied(ctx context.Context, paymentID string) (bool, error)
}
