package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdto "github.com/Diego23232/daytradeotc-backend/internal/provider/dto"
)

func TestCreatePayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payments", r.URL.Path)

		var req pdto.CreatePaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(2500), req.AmountCents)
		assert.Equal(t, "pix", req.PaymentMethodID)
		assert.Equal(t, "1|txid-1", req.ExternalReference)

		_ = json.NewEncoder(w).Encode(pdto.CreatePaymentResponse{
			ID:           "pix_abc",
			Status:       pdto.StatusPending,
			QRCodeBase64: "cXJjb2Rl",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	out, err := c.CreatePayment(context.Background(), 2500, "Depósito via PIX", "1|txid-1")
	require.NoError(t, err)
	assert.Equal(t, "pix_abc", out.ID)
	assert.Equal(t, "cXJjb2Rl", out.QRCodeBase64)
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/payments/pix_abc", r.URL.Path)

		_ = json.NewEncoder(w).Encode(pdto.Payment{
			ID:                "pix_abc",
			Status:            pdto.StatusApproved,
			AmountCents:       2500,
			ExternalReference: "1|txid-1",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	out, err := c.GetPayment(context.Background(), "pix_abc")
	require.NoError(t, err)
	assert.Equal(t, pdto.StatusApproved, out.Status)
	assert.Equal(t, int64(2500), out.AmountCents)
}

func TestProviderHTTPErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.CreatePayment(context.Background(), 100, "d", "1|t")
	assert.Error(t, err)
	_, err = c.GetPayment(context.Background(), "x")
	assert.Error(t, err)
}
