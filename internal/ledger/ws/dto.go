package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// AccountID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type      string `json:"type"`      // subscribe | unsubscribe | ping
	AccountID string `json:"accountId"` // requerido em subscribe/unsubscribe
}

// BalanceUpdate representa uma atualização de saldo enviada para clientes WebSocket
type BalanceUpdate struct {
	AccountID    string `json:"accountId"`
	BalanceCents int64  `json:"balance_cents"`
	Kind         string `json:"kind"` // lançamento que originou a atualização
}
