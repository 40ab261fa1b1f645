package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	ws "github.com/thereayou/microblog/internal/websocket"
)

// WebSocketHandler управляет WebSocket соединениями
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler создает новый WebSocket handler.
// allowedOrigins пустой значит принимать любой origin (режим разработки).
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, o := range allowedOrigins {
					if o == origin {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleWebSocket поднимает соединение, по которому пользователю приходят уведомления
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := currentUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(h.hub, conn, userID)

	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
