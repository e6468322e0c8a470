package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ClientMsg é o protocolo de controle do cliente: subscribe/unsubscribe
// por corrida, mais ping.
type ClientMsg struct {
	Type   string `json:"type"` // "subscribe" | "unsubscribe" | "ping"
	RaceID string `json:"race_id"`
}

// SteamerAlert é o payload enviado aos clientes quando um cavalo encurta
// acima do limiar do board.
type SteamerAlert struct {
	RaceID  string      `json:"race_id"`
	Payload interface{} `json:"payload"`
}

// Hub gerencia conexões WebSocket e assinaturas por corrida.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	// raceID -> set of connections
	subs map[string]map[*websocket.Conn]struct{}
}

func NewHub(allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		subs:     make(map[string]map[*websocket.Conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão.
// Cada cliente pode assinar múltiplas corridas.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.RaceID]; !ok {
				h.subs[msg.RaceID] = make(map[*websocket.Conn]struct{})
			}
			h.subs[msg.RaceID][conn] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.RaceID]; ok {
				delete(m, conn)
				if len(m) == 0 {
					delete(h.subs, msg.RaceID)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = conn.WriteJSON(map[string]string{"type": "pong"})
		}
	}
	// remove a conexão de todas as assinaturas ao desconectar
	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, conn)
	}
	h.mu.Unlock()
}

// Broadcast envia um alerta para os clientes assinados na corrida.
func (h *Hub) Broadcast(alert SteamerAlert) {
	h.mu.RLock()
	conns := h.subs[alert.RaceID]
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(alert)
	for c := range conns {
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
