package projection

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/Diego23232/daytradeotc-backend/pkg/contracts/events"
)

// quantos lançamentos recentes ficam na lista de atividade por conta
const recentActivityLimit = 50

// RedisCache mantém a projeção de leitura do ledger no Redis:
// último saldo conhecido e lista de atividade recente por conta.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(c *redis.Client) *RedisCache {
	return &RedisCache{Client: c}
}

func balanceKey(accountID string) string { return "ledger:balance:" + accountID }
func recentKey(accountID string) string  { return "ledger:recent:" + accountID }

// SetBalance grava o saldo resultante do último lançamento aplicado.
// Projeção eventualmente consistente: o saldo autoritativo mora no store.
func (r *RedisCache) SetBalance(ctx context.Context, accountID string, balanceCents int64) error {
	return r.Client.Set(ctx, balanceKey(accountID), strconv.FormatInt(balanceCents, 10), 0).Err()
}

// AppendActivity empilha o lançamento na lista de atividade recente da conta
func (r *RedisCache) AppendActivity(ctx context.Context, e events.LedgerEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	pipe := r.Client.TxPipeline()
	pipe.LPush(ctx, recentKey(e.AccountID), b)
	pipe.LTrim(ctx, recentKey(e.AccountID), 0, recentActivityLimit-1)
	_, err = pipe.Exec(ctx)
	return err
}
