package consumer

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/insight-service/movers"
	"github.com/radieske/race-insight-platform/internal/movers-worker/cache"
	"github.com/radieske/race-insight-platform/internal/movers-worker/repository"
	"github.com/radieske/race-insight-platform/pkg/contracts/events"
)

// Processor consome observações de odds do Kafka, persiste no log de
// movimentação, atualiza o cache de preço e dispara alertas de steamer.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *repository.PostgresRepo
	Cache  *cache.RedisCache

	OnConsumed func()       // métricas (counter++)
	OnCached   func()       // métricas
	OnPersist  func()       // métricas
	OnSteamer  func()       // métricas: alerta disparado
	OnError    func(string) // métricas por fase

	// OnAfterPersist roda após persistência de um encurtamento acima do
	// limiar do board (candidato a alerta de steamer)
	OnAfterPersist func(ev events.OddsChange)
}

// Run inicia o loop principal de consumo e processamento das mensagens Kafka.
func (p *Processor) Run(ctx context.Context) error {
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

		var ev events.OddsChange
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			p.Log.Warn("invalid message", zap.Error(err))
			if p.OnError != nil {
				p.OnError("decode")
			}
			continue
		}

		// Atualiza cache Redis com o preço corrente
		if err := p.Cache.SetCurrent(ctx, ev); err != nil {
			p.Log.Warn("redis set failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("cache")
			}
			// não bloqueia persistência se falhar o cache
		} else if p.OnCached != nil {
			p.OnCached()
		}

		// Persiste a observação no log append-only
		if err := p.Repo.InsertChange(ctx, ev); err != nil {
			p.Log.Warn("db insert failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("db_insert")
			}
			continue
		}
		if p.OnPersist != nil {
			p.OnPersist()
		}

		// Encurtamento acima do limiar vira candidato a alerta
		if ev.Direction == "in" && math.Abs(ev.ChangePct) >= movers.SteamerThresholdPct {
			if p.OnSteamer != nil {
				p.OnSteamer()
			}
			if p.OnAfterPersist != nil {
				p.OnAfterPersist(ev)
			}
		}
	}
}
