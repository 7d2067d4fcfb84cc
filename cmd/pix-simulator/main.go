package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	pdto "github.com/Diego23232/daytradeotc-backend/internal/provider/dto"
	"github.com/Diego23232/daytradeotc-backend/internal/shared/config"
	"github.com/Diego23232/daytradeotc-backend/internal/shared/logger"
)

// Métricas Prometheus para monitoramento do simulador
var (
	paymentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pix_sim_payments_created_total",
		Help: "Cobranças PIX criadas",
	})
	webhooksDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pix_sim_webhooks_delivered_total",
		Help: "Webhooks entregues (inclui reentregas)",
	})
)

// quanto tempo depois da criação o pagamento é aprovado
const approveAfter = 2 * time.Second

// store guarda os pagamentos criados em memória
type store struct {
	mu       sync.RWMutex
	payments map[string]*pdto.Payment
}

func newStore() *store { return &store{payments: make(map[string]*pdto.Payment)} }

func (s *store) put(p *pdto.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
}

func (s *store) get(id string) (*pdto.Payment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	return p, ok
}

func (s *store) approve(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.payments[id]; ok {
		p.Status = pdto.StatusApproved
	}
}

type server struct {
	log        *zap.Logger
	st         *store
	webhookURL string
}

// createPayment cria a cobrança e agenda aprovação + entrega do webhook.
// O webhook é entregue DUAS vezes de propósito: o provedor real garante
// no máximo at-least-once, e o ledger precisa aguentar a reentrega.
func (s *server) createPayment(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req pdto.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.AmountCents <= 0 {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	p := &pdto.Payment{
		ID:                "pix_" + uuid.NewString(),
		Status:            pdto.StatusPending,
		AmountCents:       req.AmountCents,
		ExternalReference: req.ExternalReference,
	}
	s.st.put(p)
	paymentsCreated.Inc()
	s.log.Info("payment created",
		zap.String("paymentId", p.ID),
		zap.Int64("amount_cents", p.AmountCents),
		zap.String("external_reference", p.ExternalReference),
	)

	go func(id string) {
		time.Sleep(approveAfter)
		s.st.approve(id)
		s.deliverWebhook(id)
		s.deliverWebhook(id) // reentrega proposital
	}(p.ID)

	qr := base64.StdEncoding.EncodeToString([]byte("PIX|" + p.ID + "|" + fmt.Sprint(req.AmountCents)))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(pdto.CreatePaymentResponse{
		ID:           p.ID,
		Status:       p.Status,
		QRCodeBase64: qr,
	})
}

// getPayment retorna os detalhes de um pagamento (consulta da reconciliação)
func (s *server) getPayment(w http.ResponseWriter, r *http.Request) {
	// path: /payments/{id}
	id := r.URL.Path[len("/payments/"):]
	if id == "" {
		http.Error(w, "payment id required", http.StatusBadRequest)
		return
	}
	p, ok := s.st.get(id)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

// deliverWebhook entrega a notificação no formato do provedor real
func (s *server) deliverWebhook(paymentID string) {
	body, _ := json.Marshal(map[string]any{
		"type": "payment",
		"data": map[string]string{"id": paymentID},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.log.Warn("webhook delivery failed", zap.String("paymentId", paymentID), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	webhooksDelivered.Inc()
	s.log.Info("webhook delivered", zap.String("paymentId", paymentID), zap.Int("status", resp.StatusCode))
}

func main() {
	cfg := config.Load()
	log, err := logger.New("pix-simulator", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(paymentsCreated, webhooksDelivered)

	s := &server{log: log, st: newStore(), webhookURL: cfg.WebhookTargetURL}

	// ==== MUX PÚBLICO (HTTP principal): /payments
	appMux := http.NewServeMux()
	appMux.HandleFunc("/payments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.createPayment(w, r)
	})
	appMux.HandleFunc("/payments/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.getPayment(w, r)
	})

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	go func() {
		metricsAddr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("pix simulator (metrics) running", zap.String("addr", metricsAddr))
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("pix simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("webhook_target", cfg.WebhookTargetURL),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
