package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/escalei/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ChatStore persists chat messages. Save fills the message's ID, UserName and
// CreatedAt.
type ChatStore interface {
	Save(ctx context.Context, msg *models.ChatMessage) error
}

// MembershipChecker guards room access.
type MembershipChecker interface {
	IsMember(ctx context.Context, areaID, userID uuid.UUID) (bool, error)
}

// Client represents a single WebSocket connection in an area room.
type Client struct {
	ID       string
	AreaID   uuid.UUID
	UserID   uuid.UUID
	Role     string
	JoinedAt time.Time
	hub      *Hub
	store    ChatStore
	conn     *websocket.Conn
	send     chan WSMessage
	logger   *zap.Logger
}

// ServeWs handles the WebSocket upgrade and runs the client loop. Platform
// admins may join any room; everyone else must be an area member.
func ServeWs(hub *Hub, logger *zap.Logger, jwtValidate func(token string) (userID, role string, err error), members MembershipChecker, store ChatStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		areaIDStr := c.Query("area_id")
		token := c.Query("token")
		if areaIDStr == "" || token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "area_id and token required"})
			return
		}
		areaID, err := uuid.Parse(areaIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid area_id"})
			return
		}
		userIDStr, role, err := jwtValidate(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		userID, _ := uuid.Parse(userIDStr)

		if role != string(models.UserRoleAdmin) && members != nil {
			ok, err := members.IsMember(c.Request.Context(), areaID, userID)
			if err != nil || !ok {
				c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this area"})
				return
			}
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:       uuid.New().String(),
			AreaID:   areaID,
			UserID:   userID,
			Role:     role,
			JoinedAt: time.Now(),
			hub:      hub,
			store:    store,
			conn:     conn,
			send:     make(chan WSMessage, 256),
			logger:   logger,
		}
		hub.Register(client)
		go client.writePump()
		client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "join":
			c.hub.BroadcastToAreaAndPublish(c.AreaID, "presence", map[string]interface{}{
				"user_id": c.UserID.String(),
				"count":   c.hub.RoomCount(c.AreaID),
			})
		case "chat_message":
			c.handleChatMessage(msg.Data)
		default:
			// ignore
		}
	}
}

func (c *Client) handleChatMessage(data json.RawMessage) {
	var payload struct {
		Body string `json:"body"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Body == "" {
		return
	}

	msg := &models.ChatMessage{
		AreaID: c.AreaID,
		UserID: c.UserID,
		Body:   payload.Body,
	}
	if c.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.store.Save(ctx, msg); err != nil {
			c.logger.Error("chat message save failed", zap.Error(err), zap.String("area_id", c.AreaID.String()))
			return
		}
	}
	// Publish only so the Redis subscriber broadcasts once (avoids duplicate for local clients).
	c.hub.PublishToAreaOnly(c.AreaID, "chat_message", msg)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
