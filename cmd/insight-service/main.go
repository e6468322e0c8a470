package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/insight-service/auth"
	"github.com/radieske/race-insight-platform/internal/insight-service/betting"
	"github.com/radieske/race-insight-platform/internal/insight-service/commentary"
	ihttp "github.com/radieske/race-insight-platform/internal/insight-service/http"
	"github.com/radieske/race-insight-platform/internal/insight-service/repo"
	"github.com/radieske/race-insight-platform/internal/insight-service/ws"
	sharedcache "github.com/radieske/race-insight-platform/internal/shared/cache"
	"github.com/radieske/race-insight-platform/internal/shared/config"
	"github.com/radieske/race-insight-platform/internal/shared/db"
	"github.com/radieske/race-insight-platform/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	// Redis (pub/sub dos alertas de steamer)
	rdb, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// deps
	store := repo.NewPostgres(pg)
	verifier := auth.New(cfg.AuthURL, cfg.AuthAPIKey)
	bets := betting.New(log, store, cfg.StartingBankroll)
	gen := commentary.New(cfg.OpenAIKey) // nil quando sem API key

	api := ihttp.NewServer(log, store, verifier, bets, gen, cfg.StartingBankroll)

	// WS de movers ao vivo, alimentado pelo Pub/Sub do movers-worker
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ws.StartRedisSubscriber(ctx, log, rdb, hub)
	api.WithLiveMovers(hub.HandleWS)

	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.PingContext(r.Context()); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
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

	log.Info("insight-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
