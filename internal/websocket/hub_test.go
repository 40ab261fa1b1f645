package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func register(t *testing.T, h *Hub, userID uuid.UUID) *Client {
	t.Helper()
	c := NewClient(h, nil, userID)
	h.Register(c)
	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		_, ok := h.clients[c.ID]
		return ok
	}, time.Second, 5*time.Millisecond)
	return c
}

func TestHub_NotifyReachesEveryConnectionOfUser(t *testing.T) {
	h := startHub(t)
	susan := uuid.New()
	john := uuid.New()

	tab1 := register(t, h, susan)
	tab2 := register(t, h, susan)
	other := register(t, h, john)

	require.NoError(t, h.Notify(susan, TypeNotification, map[string]any{"name": "unread_message_count", "data": 3}))

	for _, c := range []*Client{tab1, tab2} {
		select {
		case raw := <-c.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, TypeNotification, msg.Type)
			assert.Equal(t, susan, msg.UserID)
			assert.JSONEq(t, `{"name":"unread_message_count","data":3}`, string(msg.Data))
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
	}

	select {
	case <-other.Send:
		t.Fatal("notification leaked to another user")
	default:
	}
}

func TestHub_Unregister(t *testing.T) {
	h := startHub(t)
	susan := uuid.New()

	c := register(t, h, susan)
	assert.True(t, h.IsOnline(susan))

	h.Unregister(c)
	assert.Eventually(t, func() bool { return !h.IsOnline(susan) }, time.Second, 5*time.Millisecond)

	_, ok := <-c.Send
	assert.False(t, ok, "send channel must be closed")

	// отправка офлайн-пользователю просто теряется
	require.NoError(t, h.Notify(susan, TypeNotification, nil))
}

func TestHub_StopClosesClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	susan := uuid.New()
	c := register(t, h, susan)
	h.Stop()

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.False(t, h.IsOnline(susan))

	// после остановки регистрация не блокируется
	h.Register(NewClient(h, nil, uuid.New()))
}
