package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/shared/config"
	"github.com/radieske/race-insight-platform/internal/shared/db"
	"github.com/radieske/race-insight-platform/internal/shared/kafka"
	"github.com/radieske/race-insight-platform/internal/shared/logger"
	"github.com/radieske/race-insight-platform/internal/shared/metrics"
	ev "github.com/radieske/race-insight-platform/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres para liquidação das apostas e crédito de retornos
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer: resultados oficializados
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRaceResults, "settlement")
	defer reader.Close()

	// DLQ para mensagens que não liquidam após retries
	var dlqWriter *kafka.Writer
	if cfg.TopicRaceResultsDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRaceResultsDLQ)
		defer dlqWriter.Close()
	}

	// Métricas de liquidação
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_races_settled_total", Help: "corridas liquidadas"})
	won := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_bets_won_total", Help: "apostas marcadas won"})
	lost := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_bets_lost_total", Help: "apostas marcadas lost"})
	dlq := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_dlq_total", Help: "mensagens enviadas para DLQ"})
	prometheus.MustRegister(settled, won, lost, dlq)

	// Servidor HTTP para métricas e healthcheck
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})
	defer metricsSrv.Close()
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	log.Info("settlement-worker started", zap.String("consume", cfg.TopicRaceResults))

	ctx := context.Background()

	// Loop principal: consome resultados e liquida as apostas pendentes
	for {
		_, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var res ev.RaceResult
		if jerr := json.Unmarshal(value, &res); jerr != nil {
			log.Error("unmarshal race_result", zap.Error(jerr))
			continue
		}
		if res.RaceID == "" || res.WinnerHorseID == "" {
			log.Warn("race_result missing race_id/winner_horse_id")
			continue
		}

		nWon, nLost, err := settleRace(ctx, pg, res)
		if err != nil {
			// Retry simples: tenta até 3 vezes antes de enviar para DLQ
			const retries = 3
			for i := 0; i < retries; i++ {
				time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
				if nWon, nLost, err = settleRace(ctx, pg, res); err == nil {
					break
				}
			}
			if err != nil {
				log.Error("settle race failed", zap.String("race_id", res.RaceID), zap.Error(err))
				if dlqWriter != nil {
					_ = kafka.WriteJSON(ctx, dlqWriter, res.RaceID, value)
					dlq.Inc()
				}
				continue
			}
		}

		settled.Inc()
		won.Add(float64(nWon))
		lost.Add(float64(nLost))
		log.Info("race settled",
			zap.String("race_id", res.RaceID),
			zap.String("winner", res.WinnerHorseID),
			zap.Int("won", nWon),
			zap.Int("lost", nLost),
		)
	}
}

// settleRace marca won/lost nas apostas pendentes da corrida e credita o
// retorno potencial dos vencedores no bankroll, tudo numa transação.
func settleRace(ctx context.Context, pg *sql.DB, res ev.RaceResult) (nWon, nLost int, err error) {
	tx, err := pg.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	// Vencedores: marca e coleta os créditos a aplicar
	rows, err := tx.QueryContext(ctx, `
		UPDATE bets SET status='won', settled_at=NOW()
		WHERE race_id=$1 AND horse_id=$2 AND status='pending'
		RETURNING id, user_id, potential_return`, res.RaceID, res.WinnerHorseID)
	if err != nil {
		return 0, 0, err
	}
	type payout struct {
		betID  string
		userID string
		amount float64
	}
	var payouts []payout
	for rows.Next() {
		var p payout
		if err := rows.Scan(&p.betID, &p.userID, &p.amount); err != nil {
			rows.Close()
			return 0, 0, err
		}
		payouts = append(payouts, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}

	// Perdedores
	resLost, err := tx.ExecContext(ctx, `
		UPDATE bets SET status='lost', settled_at=NOW()
		WHERE race_id=$1 AND horse_id<>$2 AND status='pending'`, res.RaceID, res.WinnerHorseID)
	if err != nil {
		return 0, 0, err
	}
	lostN, _ := resLost.RowsAffected()

	// Crédito dos retornos + ledger
	for _, p := range payouts {
		if _, err := tx.ExecContext(ctx, `
			UPDATE bankrolls SET current_amount = current_amount + $1, version = version + 1
			WHERE user_id=$2`, p.amount, p.userID); err != nil {
			return 0, 0, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bankroll_ledger(bankroll_id, operation_type, amount, description)
			SELECT id, 'CREDIT', $1, $2 FROM bankrolls WHERE user_id=$3`,
			p.amount, fmt.Sprintf("settle:%s", p.betID), p.userID); err != nil {
			return 0, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return len(payouts), int(lostN), nil
}
