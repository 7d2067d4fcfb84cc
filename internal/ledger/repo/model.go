package repo

import "time"

// Direções aceitas para uma aposta. Registradas, não liquidadas:
// o simulador não executa contra mercado real.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// Status de um pedido de saque. REQUESTED é terminal aqui: a liquidação
// acontece manualmente fora do sistema.
const WithdrawalStatusRequested = "REQUESTED"

// Bet é o registro imutável de uma aposta aceita.
type Bet struct {
	ID          string
	AccountID   string
	Direction   string // "up" | "down"
	AmountCents int64
	CreatedAt   time.Time
}

// DepositConfirmation é o registro imutável de um depósito PIX confirmado.
// PaymentID é a chave de idempotência atribuída pelo provedor: cada
// payment_id aparece no máximo uma vez no ledger.
type DepositConfirmation struct {
	PaymentID   string
	AccountID   string
	AmountCents int64
	ExternalRef string
	CreatedAt   time.Time
}

// WithdrawalRequest é o registro imutável de um pedido de saque.
type WithdrawalRequest struct {
	ID          string
	AccountID   string
	AmountCents int64
	Status      string
	CreatedAt   time.Time
}

// Record é o registro append-only inserido junto com a mutação de saldo.
// Implementações: *Bet, *DepositConfirmation, *WithdrawalRequest.
type Record interface {
	recordKind() string
}

func (*Bet) recordKind() string                 { return "bet" }
func (*DepositConfirmation) recordKind() string { return "deposit" }
func (*WithdrawalRequest) recordKind() string   { return "withdrawal" }
