package events

// Tipos de lançamento publicados no tópico "ledger_entries"
const (
	KindBetPlaced           = "BET_PLACED"
	KindDepositConfirmed    = "DEPOSIT_CONFIRMED"
	KindWithdrawalRequested = "WITHDRAWAL_REQUESTED"
)

// LedgerEntry é emitido pelo ledger-service após cada mutação aplicada.
// BalanceCents é o saldo resultante da operação.
type LedgerEntry struct {
	EntryID      string `json:"entry_id"`
	AccountID    string `json:"account_id"`
	Kind         string `json:"kind"` // BET_PLACED | DEPOSIT_CONFIRMED | WITHDRAWAL_REQUESTED
	AmountCents  int64  `json:"amount_cents"`
	BalanceCents int64  `json:"balance_cents"`
	Ref          string `json:"ref,omitempty"` // direção da aposta, payment_id do depósito, etc.
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
