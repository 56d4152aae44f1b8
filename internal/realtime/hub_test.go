package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(hub *Hub, areaID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		AreaID: areaID,
		UserID: uuid.New(),
		hub:    hub,
		send:   make(chan WSMessage, 8),
	}
}

func TestHubBroadcastReachesAllRoomClients(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	areaID := uuid.New()
	otherArea := uuid.New()

	a := newTestClient(hub, areaID)
	b := newTestClient(hub, areaID)
	c := newTestClient(hub, otherArea)
	hub.Register(a)
	hub.Register(b)
	hub.Register(c)

	hub.BroadcastToArea(areaID, "chat_message", map[string]string{"body": "hello"})

	for _, cl := range []*Client{a, b} {
		select {
		case msg := <-cl.send:
			assert.Equal(t, "chat_message", msg.Event)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(msg.Data, &payload))
			assert.Equal(t, "hello", payload["body"])
		default:
			t.Fatalf("client %s received nothing", cl.ID)
		}
	}
	select {
	case <-c.send:
		t.Fatal("client in another area received the message")
	default:
	}
}

func TestHubRoomCountTracksRegistration(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	areaID := uuid.New()

	a := newTestClient(hub, areaID)
	b := newTestClient(hub, areaID)
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 2, hub.RoomCount(areaID))

	hub.Unregister(a)
	assert.Equal(t, 1, hub.RoomCount(areaID))
	hub.Unregister(b)
	assert.Equal(t, 0, hub.RoomCount(areaID))
}

func TestHubPublishOnlyFallsBackToLocalWithoutRedis(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	areaID := uuid.New()

	a := newTestClient(hub, areaID)
	hub.Register(a)

	hub.PublishToAreaOnly(areaID, "chat_message", map[string]string{"body": "hi"})

	select {
	case msg := <-a.send:
		assert.Equal(t, "chat_message", msg.Event)
	default:
		t.Fatal("expected local delivery when no redis publisher is configured")
	}
}
