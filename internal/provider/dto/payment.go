package dto

// Status de pagamento reportados pelo provedor.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type CreatePaymentRequest struct {
	AmountCents       int64  `json:"transaction_amount_cents"`
	Description       string `json:"description"`
	PaymentMethodID   string `json:"payment_method_id"` // sempre "pix"
	ExternalReference string `json:"external_reference"`
}

type CreatePaymentResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	QRCodeBase64 string `json:"qr_code_base64"`
}

// Payment é a visão do pagamento consultada na reconciliação do webhook.
type Payment struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	AmountCents       int64  `json:"transaction_amount_cents"`
	ExternalReference string `json:"external_reference"`
}
