package projection

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const ChannelBalanceBroadcast = "ledger_balance_broadcast"

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}

// Payload padrão para o WS do ledger-service
type WSUpdate struct {
	AccountID    string `json:"accountId"`
	BalanceCents int64  `json:"balance_cents"`
	Kind         string `json:"kind"`
}
