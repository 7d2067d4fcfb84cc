package dto

type PlaceBetRequest struct {
	AccountID   string `json:"accountId,omitempty"` // default: conta "1"
	Direction   string `json:"direction"`           // "up" | "down"
	AmountCents int64  `json:"amount_cents"`
}

type CreateDepositRequest struct {
	AccountID   string `json:"accountId,omitempty"`
	AmountCents int64  `json:"amount_cents"`
}

type WithdrawalRequest struct {
	AccountID   string `json:"accountId,omitempty"`
	AmountCents int64  `json:"amount_cents"`
}
