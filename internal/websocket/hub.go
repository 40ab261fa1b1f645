package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// MessageType определяет типы сообщений
type MessageType string

const (
	TypePing         MessageType = "ping"
	TypeNotification MessageType = "notification"
)

type Message struct {
	Type      MessageType     `json:"type"`
	UserID    uuid.UUID       `json:"user_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

// Hub рассылает события живым соединениям пользователей.
// Один пользователь может держать несколько соединений (вкладки, устройства).
type Hub struct {
	clients map[uuid.UUID]*Client

	// Клиенты по UserID
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	// Каналы для регистрации/отмены регистрации
	register   chan *Client
	unregister chan *Client

	pingInterval time.Duration

	mu sync.RWMutex

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:      make(map[uuid.UUID]*Client),
		userClients:  make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		pingInterval: 30 * time.Second,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Run запускает hub
func (h *Hub) Run() {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop останавливает hub и закрывает все соединения
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for id, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
		delete(h.clients, id)
	}
	h.userClients = make(map[uuid.UUID]map[uuid.UUID]*Client)
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	slog.Debug("websocket client registered", "client_id", client.ID, "user_id", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	if userClients, ok := h.userClients[client.UserID]; ok {
		delete(userClients, client.ID)
		if len(userClients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)

	slog.Debug("websocket client unregistered", "client_id", client.ID, "user_id", client.UserID)
}

// SendToUser отправляет сообщение во все соединения пользователя.
// Медленные клиенты с переполненной очередью пропускаются.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.userClients[userID] {
		select {
		case client.Send <- message:
		default:
			slog.Warn("websocket send channel full", "client_id", client.ID)
		}
	}
}

// Notify упаковывает data в Message и отправляет пользователю
func (h *Hub) Notify(userID uuid.UUID, msgType MessageType, data any) error {
	msg := Message{
		Type:      msgType,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		msg.Data = raw
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.SendToUser(userID, payload)
	return nil
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Message{
		Type:      TypePing,
		Timestamp: time.Now(),
	}

	if data, err := json.Marshal(msg); err == nil {
		for _, client := range h.clients {
			select {
			case client.Send <- data:
			default:
			}
		}
	}
}

// IsOnline есть ли у пользователя живое соединение
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.userClients[userID]) > 0
}
