package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Diego23232/daytradeotc-backend/internal/projection"
	sharedcache "github.com/Diego23232/daytradeotc-backend/internal/shared/cache"
	"github.com/Diego23232/daytradeotc-backend/internal/shared/config"
	sharedkafka "github.com/Diego23232/daytradeotc-backend/internal/shared/kafka"
	"github.com/Diego23232/daytradeotc-backend/internal/shared/logger"
	"github.com/Diego23232/daytradeotc-backend/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New("ledger-events-worker", cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Configura o consumer Kafka (consumer group ledger-projection)
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  "ledger-projection",
		Topic:    cfg.TopicLedgerEntries,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// DLQ pra mensagem que não desserializa
	dlqWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicLedgerEntriesDLQ)
	defer dlqWriter.Close()

	// Métricas Prometheus para monitoramento da projeção
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_proj_messages_consumed_total", Help: "mensagens consumidas"})
	projected := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_proj_entries_projected_total", Help: "lançamentos projetados no Redis"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_proj_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, projected, errorsBy)

	proj := &projection.Projector{
		Log:         log,
		Reader:      reader,
		Cache:       projection.NewRedisCache(redisClient),
		Broadcaster: projection.NewRedisBroadcaster(redisClient),
		DLQ:         dlqWriter,

		OnConsumed:  func() { consumed.Inc() },
		OnProjected: func() { projected.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	defer metricsSrv.Close()
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("ledger-events-worker started", zap.String("consume", cfg.TopicLedgerEntries))
	if err := proj.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("projector stopped with error", zap.Error(err))
	}
	log.Info("ledger-events-worker stopped")
}
