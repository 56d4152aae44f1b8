package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub maintains area_id -> set of connections and broadcasts messages.
// Uses Redis pub/sub for horizontal scaling: local broadcast + publish to Redis.
type Hub struct {
	// areaID -> map[clientID]*Client
	areas    map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func() // cancel Redis subscription per area
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishAreaEvent(areaID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to area channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeArea(areaID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		areas:    make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to an area room. Starts Redis subscription for this area if first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.areas[c.AreaID] == nil {
		h.areas[c.AreaID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeArea(c.AreaID, func(event string, payload []byte) {
				h.BroadcastToArea(c.AreaID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.AreaID] = cancel
			}
		}
	}
	h.areas[c.AreaID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined area", zap.String("client_id", c.ID), zap.String("area_id", c.AreaID.String()))
}

// Unregister removes a client from an area room. Cancels Redis subscription when last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.areas[c.AreaID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.areas, c.AreaID)
			if cancel, ok := h.subs[c.AreaID]; ok {
				cancel()
				delete(h.subs, c.AreaID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left area", zap.String("client_id", c.ID), zap.String("area_id", c.AreaID.String()))
}

// BroadcastToArea sends a message to all clients in an area (local only).
func (h *Hub) BroadcastToArea(areaID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.areas[areaID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToAreaAndPublish sends to local clients and publishes to Redis for other instances.
func (h *Hub) BroadcastToAreaAndPublish(areaID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.BroadcastToArea(areaID, event, payload)
	if h.redis != nil {
		_ = h.redis.PublishAreaEvent(areaID, event, data)
	}
}

// PublishToAreaOnly publishes to Redis only (no local broadcast). Used for events like chat_message
// so that the Redis subscriber callback performs the broadcast once for all instances (including this one),
// avoiding duplicate delivery to local clients.
func (h *Hub) PublishToAreaOnly(areaID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		_ = h.redis.PublishAreaEvent(areaID, event, data)
		return
	}
	h.BroadcastToArea(areaID, event, payload)
}

// RoomCount returns the number of connected clients in an area.
func (h *Hub) RoomCount(areaID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.areas[areaID])
}
