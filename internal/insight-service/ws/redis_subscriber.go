package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PubSubChannel é o canal Redis usado pelo movers-worker para o broadcast
// de alertas de steamer.
const PubSubChannel = "steamer_alerts_broadcast"

// StartRedisSubscriber escuta o canal Pub/Sub e repassa cada alerta para
// os clientes WebSocket assinados via Hub.
func StartRedisSubscriber(ctx context.Context, log *zap.Logger, r *redis.Client, hub *Hub) {
	sub := r.Subscribe(ctx, PubSubChannel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var alert SteamerAlert
				if err := json.Unmarshal([]byte(msg.Payload), &alert); err != nil {
					log.Warn("ws subscriber unmarshal failed", zap.Error(err))
					continue
				}
				hub.Broadcast(alert)
			}
		}
	}()
}
