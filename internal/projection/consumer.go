package projection

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Diego23232/daytradeotc-backend/pkg/contracts/events"
)

// Projector consome lançamentos do ledger via Kafka e mantém a projeção de
// leitura no Redis. Mensagem que não desserializa vai pra DLQ.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa
type Projector struct {
	Log         *zap.Logger
	Reader      *kafka.Reader
	Cache       *RedisCache
	Broadcaster *RedisBroadcaster
	DLQ         *kafka.Writer // opcional

	OnConsumed  func()       // métricas (counter++)
	OnProjected func()       // métricas
	OnError     func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e projeção dos lançamentos
func (p *Projector) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		var entry events.LedgerEntry
		if err := json.Unmarshal(m.Value, &entry); err != nil {
			p.Log.Warn("invalid ledger entry", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			p.sendToDLQ(ctx, m)
			continue
		}

		// Atualiza saldo projetado e atividade recente
		if err := p.Cache.SetBalance(ctx, entry.AccountID, entry.BalanceCents); err != nil {
			p.Log.Warn("redis set balance failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache_balance")
			}
			continue
		}
		if err := p.Cache.AppendActivity(ctx, entry); err != nil {
			p.Log.Warn("redis append activity failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache_activity")
			}
			// saldo já projetado; segue pro broadcast mesmo assim
		}

		p.broadcast(ctx, entry)

		if p.OnProjected != nil {
			p.OnProjected()
		}
	}
}

// broadcast publica a atualização no Redis Pub/Sub pro WS do ledger-service
func (p *Projector) broadcast(ctx context.Context, entry events.LedgerEntry) {
	if p.Broadcaster == nil {
		return
	}
	msg := WSUpdate{
		AccountID:    entry.AccountID,
		BalanceCents: entry.BalanceCents,
		Kind:         entry.Kind,
	}
	b, _ := json.Marshal(msg)

	cctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := p.Broadcaster.Publish(cctx, ChannelBalanceBroadcast, b); err != nil {
		p.Log.Warn("ws broadcast publish failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("broadcast")
		}
	}
}

func (p *Projector) sendToDLQ(ctx context.Context, m kafka.Message) {
	if p.DLQ == nil {
		return
	}
	if err := p.DLQ.WriteMessages(ctx, kafka.Message{Key: m.Key, Value: m.Value, Time: time.Now()}); err != nil {
		p.Log.Error("dlq write failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("dlq")
		}
	}
}
