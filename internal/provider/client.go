package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	pdto "github.com/Diego23232/daytradeotc-backend/internal/provider/dto"
)

// Client fala com o provedor de pagamento PIX (pix-simulator em local,
// provedor real em produção — mesma superfície).
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// CreatePayment cria uma cobrança PIX no provedor e retorna o id do
// pagamento e o QR code em base64.
func (c *Client) CreatePayment(ctx context.Context, amountCents int64, description, externalRef string) (*pdto.CreatePaymentResponse, error) {
	body, _ := json.Marshal(pdto.CreatePaymentRequest{
		AmountCents:       amountCents,
		Description:       description,
		PaymentMethodID:   "pix",
		ExternalReference: externalRef,
	})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/payments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("provider create payment http %d", res.StatusCode)
	}

	var out pdto.CreatePaymentResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPayment consulta os detalhes de um pagamento pelo id do provedor.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*pdto.Payment, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/payments/"+paymentID, nil)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("provider get payment http %d", res.StatusCode)
	}

	var out pdto.Payment
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
