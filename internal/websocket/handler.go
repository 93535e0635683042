package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/middleware"
)

// Handler handles WebSocket connections
type Handler struct {
	hub            *Hub
	prefs          ThemeSetter
	allowedOrigins []string
	upgrader       websocket.Upgrader
	log            *logger.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, prefs ThemeSetter, allowedOrigins []string, log *logger.Logger) *Handler {
	h := &Handler{
		hub:            hub,
		prefs:          prefs,
		allowedOrigins: allowedOrigins,
		log:            log.With("handler", "WebSocketHandler"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts configured origins. Non-browser clients send no
// Origin and still need a valid token.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, pattern := range h.allowedOrigins {
		if matchOrigin(pattern, origin) {
			return true
		}
	}
	return false
}

// HandleWebSocket upgrades an authenticated request. It runs behind
// AuthMiddleware, which reads the token from ?token=.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("failed to upgrade connection", "error", err)
		return
	}

	client := NewClient(h.hub, conn, session.Username, h.prefs, h.log)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// matchOrigin supports exact matches, "*" and wildcard patterns like *.example.com
func matchOrigin(pattern, origin string) bool {
	if pattern == "*" || pattern == origin {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		originHost := origin
		if u, err := url.Parse(origin); err == nil {
			originHost = u.Hostname()
		}
		patHost := strings.TrimPrefix(pattern, "*.")
		if originHost == patHost || strings.HasSuffix(originHost, "."+patHost) {
			return true
		}
	}
	return false
}
