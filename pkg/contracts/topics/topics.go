package topics

const (
	// Lançamentos do ledger (apostas, depósitos, saques)
	LedgerEntries = "ledger_entries"

	// DLQ
	LedgerEntriesDLQ = "ledger_entries_dlq"
)
