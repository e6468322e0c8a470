package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/odds-ingest/publisher"
	"github.com/radieske/race-insight-platform/pkg/contracts/events"
)

// WSClient consome o feed de preços de um fornecedor via WebSocket e
// publica cada observação num tópico Kafka.
type WSClient struct {
	URL       string                    // URL do endpoint WebSocket do feed
	Log       *zap.Logger               // Logger estruturado
	Publisher *publisher.KafkaPublisher // Publisher Kafka para envio das observações
}

// Start inicia o loop de conexão e escuta do WebSocket.
// Em caso de desconexão, tenta reconectar automaticamente com backoff.
func (c *WSClient) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.Log.Info("context canceled, stopping WS client")
			return
		default:
			if err := c.connectAndListen(ctx); err != nil {
				c.Log.Warn("connection closed", zap.Error(err))
				time.Sleep(3 * time.Second) // aguarda antes de reconectar
			}
		}
	}
}

// connectAndListen estabelece a conexão WebSocket e processa mensagens.
func (c *WSClient) connectAndListen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	c.Log.Info("connected to price feed WS", zap.String("url", c.URL))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, context.Canceled) {
				return nil
			}
			c.Log.Error("read message failed", zap.Error(err))
			return err
		}

		var change events.OddsChange
		if err := json.Unmarshal(message, &change); err != nil {
			c.Log.Warn("invalid message", zap.Error(err))
			continue
		}

		if err := c.Publisher.Publish(ctx, change); err != nil {
			c.Log.Error("failed to publish to Kafka", zap.Error(err))
		}
	}
}
