package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/race-insight-platform/internal/shared/config"
	"github.com/radieske/race-insight-platform/internal/shared/kafka"
	"github.com/radieske/race-insight-platform/internal/shared/logger"
	"github.com/radieske/race-insight-platform/pkg/contracts/events"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Catálogo fixo de corredores simulados para geração de preços
	runnerCatalog = []events.OddsChange{
		{RaceID: "RACE_001", HorseID: "H001", HorseName: "Thunder Bay", Course: "Ascot", OffTime: "2:30", InitialPrice: 5.0},
		{RaceID: "RACE_001", HorseID: "H002", HorseName: "Silver Quay", Course: "Ascot", OffTime: "2:30", InitialPrice: 8.5},
		{RaceID: "RACE_001", HorseID: "H003", HorseName: "Night Runner", Course: "Ascot", OffTime: "2:30", InitialPrice: 3.5},
		{RaceID: "RACE_002", HorseID: "H004", HorseName: "Copper Field", Course: "Goodwood", OffTime: "3:15", InitialPrice: 6.0},
		{RaceID: "RACE_002", HorseID: "H005", HorseName: "Dune Rider", Course: "Goodwood", OffTime: "3:15", InitialPrice: 12.0},
		{RaceID: "RACE_003", HorseID: "H006", HorseName: "Iron Maple", Course: "York", OffTime: "4:10", InitialPrice: 4.33},
		{RaceID: "RACE_003", HorseID: "H007", HorseName: "Gale Force", Course: "York", OffTime: "4:10", InitialPrice: 9.0},
	}

	// Métricas Prometheus para monitoramento de conexões e mensagens
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas",
	})
	resultsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_results_published_total",
		Help: "Resultados de corrida publicados no Kafka",
	})
)

// Representa uma conexão de cliente WebSocket
type clientConn struct {
	id   string
	conn *websocket.Conn
}

// Gerencia os clientes conectados via WebSocket e faz broadcast
// das movimentações de preço para todos eles.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{
		clients: make(map[string]*clientConn),
		log:     log,
	}
}

func (h *hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	wsConnections.Inc()
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

func (h *hub) broadcast(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, c := range h.clients {
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
		} else {
			wsMessagesSent.Inc()
		}
	}
}

// passo aleatório multiplicativo entre min e max
func rnd(min, max float64) float64 {
	return (rand.Float64() * (max - min)) + min
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	rand.Seed(time.Now().UnixNano())

	prometheus.MustRegister(wsConnections, wsMessagesSent, resultsPublished)

	h := newHub(log)

	// Writer de resultados: permite oficializar uma corrida via HTTP
	// e acionar a liquidação downstream.
	resultWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRaceResults)
	defer resultWriter.Close()

	// Preço corrente de cada corredor; começa no preço inicial do catálogo
	current := make([]float64, len(runnerCatalog))
	for i := range runnerCatalog {
		current[i] = runnerCatalog[i].InitialPrice
	}

	// Random walk: a cada 3 segundos um corredor aleatório encurta ou
	// alonga e a movimentação é enviada a todos os clientes conectados.
	go func() {
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			i := rand.Intn(len(runnerCatalog))
			step := rnd(0.80, 1.20)
			next := math.Max(1.10, current[i]*step)

			ev := runnerCatalog[i]
			ev.CurrentPrice = next
			ev.ChangePct = (next - ev.InitialPrice) / ev.InitialPrice * 100
			if next < current[i] {
				ev.Direction = "in"
			} else {
				ev.Direction = "out"
			}
			ev.RecordedAt = time.Now().UTC()
			ev.Source = cfg.ServiceName
			current[i] = next

			h.broadcast(ev)
		}
	}()

	// ==== MUX PÚBLICO: /ws e /races/result
	appMux := http.NewServeMux()

	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := fmt.Sprintf("%d", time.Now().UnixNano())
		c := &clientConn{id: id, conn: conn}
		h.add(c)

		// Mantém a conexão viva e remove o cliente ao desconectar
		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			_ = conn.SetReadDeadline(time.Time{})
			for {
				// Lê e descarta mensagens do cliente para manter o socket limpo
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	// Oficializa o resultado de uma corrida do catálogo e publica no Kafka
	appMux.HandleFunc("/races/result", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		var res events.RaceResult
		if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if res.RaceID == "" || res.WinnerHorseID == "" {
			http.Error(w, "race_id and winner_horse_id are required", http.StatusBadRequest)
			return
		}
		res.OfficialAt = time.Now().UTC()
		res.TsUnixMs = res.OfficialAt.UnixMilli()

		b, _ := json.Marshal(res)
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := kafka.WriteJSON(ctx, resultWriter, res.RaceID, b); err != nil {
			log.Error("publish race result", zap.Error(err))
			http.Error(w, "publish failed", http.StatusBadGateway)
			return
		}
		resultsPublished.Inc()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "published", "race_id": res.RaceID})
	})

	// ==== MUX DE MÉTRICAS (/healthz, /metrics)
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	go func() {
		metricsAddr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("feed simulator (metrics) running",
			zap.String("addr", metricsAddr),
			zap.String("paths", "/healthz,/metrics"),
		)
		if err := http.ListenAndServe(metricsAddr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("feed simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/ws,/races/result"),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
