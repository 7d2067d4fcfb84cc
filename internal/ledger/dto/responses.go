package dto

type BalanceResponse struct {
	AccountID    string `json:"accountId"`
	BalanceCents int64  `json:"balance_cents"`
}

type OperationResponse struct {
	Message      string `json:"message"`
	BalanceCents int64  `json:"balance_cents"`
}

// CreateDepositResponse devolve o necessário pra pagar a cobrança PIX:
// id do pagamento no provedor, QR code e o txid usado na referência externa.
type CreateDepositResponse struct {
	PaymentID    string `json:"payment_id"`
	TxID         string `json:"txid"`
	QRCodeBase64 string `json:"qr_code_base64"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
