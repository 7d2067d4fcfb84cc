package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Diego23232/daytradeotc-backend/internal/gateway"
	"github.com/Diego23232/daytradeotc-backend/internal/ledger/coordinator"
	lhttp "github.com/Diego23232/daytradeotc-backend/internal/ledger/http"
	kpub "github.com/Diego23232/daytradeotc-backend/internal/ledger/producer"
	"github.com/Diego23232/daytradeotc-backend/internal/ledger/repo"
	"github.com/Diego23232/daytradeotc-backend/internal/ledger/ws"
	"github.com/Diego23232/daytradeotc-backend/internal/provider"
	sharedcache "github.com/Diego23232/daytradeotc-backend/internal/shared/cache"
	"github.com/Diego23232/daytradeotc-backend/internal/shared/config"
	"github.com/Diego23232/daytradeotc-backend/internal/shared/db"
	sharedkafka "github.com/Diego23232/daytradeotc-backend/internal/shared/kafka"
	"github.com/Diego23232/daytradeotc-backend/internal/shared/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New("ledger-service", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("storage", cfg.StorageDriver))

	// Store do ledger: Postgres por padrão, memória pra rodar local sem infra
	var store repo.Store
	var pg *sql.DB
	if cfg.StorageDriver == "memory" {
		store = repo.NewMemory()
		log.Warn("using in-memory ledger store; data will not survive restarts")
	} else {
		pg, err = db.ConnectPostgres(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("postgres connect", zap.Error(err))
		}
		defer pg.Close()
		store = repo.NewPostgres(pg)
	}

	// Redis: assinatura do broadcast de saldo pro WS
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer (topic ledger_entries)
	writer := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicLedgerEntries)
	defer writer.Close()
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicLedgerEntries)

	// Núcleo do ledger
	coord := coordinator.New(log, store, publ)

	// Provedor PIX e gateway de reconciliação de webhooks
	pcli := provider.New(cfg.ProviderBaseURL)
	gw := gateway.New(log, pcli, coord)

	// WS hub alimentado pelo Redis Pub/Sub (ledger-events-worker publica)
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws.StartRedisSubscriber(ctx, log, rdb, hub)

	prometheus.MustRegister(coordinator.OpsTotal, coordinator.DuplicateDeposits, gateway.WebhookDropped)

	api := lhttp.NewServer(log, coord, pcli, gw, hub.HandleWS, cfg.DefaultAccountID)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	// Servidor de métricas e health check
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if pg != nil {
			if err := pg.PingContext(r.Context()); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
		}
		if err := rdb.Ping(r.Context()).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	log.Info("ledger-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
