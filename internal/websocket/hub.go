package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"tubelens-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub relays progress events for an analysis to every socket watching it.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*websocket.Conn
	redisClient *redis.Client
	cancelFuncs map[uuid.UUID]context.CancelFunc
	logger      zerolog.Logger
}

// NewHub returns a hub. With a nil client every upgrade is refused.
func NewHub(redisClient *redis.Client, logger zerolog.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*websocket.Conn),
		redisClient: redisClient,
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
		logger:      logger.With().Str("component", "ws_hub").Logger(),
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.redisClient == nil {
		http.Error(w, "Progress updates are not enabled", http.StatusServiceUnavailable)
		return
	}

	analysisID, err := uuid.Parse(r.URL.Query().Get("analysis_id"))
	if err != nil {
		http.Error(w, "analysis_id must be a UUID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.registerConnection(analysisID, conn)

	go func() {
		defer h.unregisterConnection(analysisID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(analysisID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[analysisID] = append(h.connections[analysisID], conn)

	if len(h.connections[analysisID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[analysisID] = cancel
		go h.subscribe(ctx, analysisID)
	}

	h.logger.Debug().
		Str("analysis_id", analysisID.String()).
		Int("watchers", len(h.connections[analysisID])).
		Msg("websocket connected")
}

func (h *Hub) unregisterConnection(analysisID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[analysisID]
	for i, c := range conns {
		if c == conn {
			h.connections[analysisID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[analysisID]) == 0 {
		delete(h.connections, analysisID)
		if cancel, ok := h.cancelFuncs[analysisID]; ok {
			cancel()
			delete(h.cancelFuncs, analysisID)
		}
	}

	h.logger.Debug().Str("analysis_id", analysisID.String()).Msg("websocket disconnected")
}

func (h *Hub) subscribe(ctx context.Context, analysisID uuid.UUID) {
	pubsub := h.redisClient.Subscribe(ctx, services.ProgressChannel(analysisID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(analysisID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(analysisID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[analysisID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug().Err(err).Str("analysis_id", analysisID.String()).Msg("websocket write failed")
		}
	}
}

// Close drops every subscription and socket.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, cancel := range h.cancelFuncs {
		cancel()
		delete(h.cancelFuncs, id)
	}
	for id, conns := range h.connections {
		for _, c := range conns {
			c.Close()
		}
		delete(h.connections, id)
	}
}

// Watchers reports how many sockets follow an analysis.
func (h *Hub) Watchers(analysisID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[analysisID])
}
