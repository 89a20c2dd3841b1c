package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/controlroom/internal/domain/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 512
)

// Observer receives connection statistics
type Observer interface {
	IncWSConnections()
	DecWSConnections()
	IncWSDropped()
}

type nopObserver struct{}

func (nopObserver) IncWSConnections() {}
func (nopObserver) DecWSConnections() {}
func (nopObserver) IncWSDropped()     {}

// Hub fans events out to connected observers
type Hub struct {
	log      *zap.Logger
	observer Observer
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a hub. observer may be nil.
func NewHub(log *zap.Logger, observer Observer) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Hub{
		log:      log.Named("ws"),
		observer: observer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // local control plane, any UI origin
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Emit queues e for every subscribed observer without blocking
func (h *Hub) Emit(e events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	data, err := sonic.Marshal(e)
	if err != nil {
		h.log.Error("failed to encode event", zap.String("kind", string(e.Kind)), zap.Error(err))
		return
	}

	for c := range h.clients {
		if !c.wants(e.Kind) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.observer.IncWSDropped()
		}
	}
}

// Count returns the number of connected observers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection upgrades the request and serves one observer until it
// disconnects
func (h *Hub) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(uuid.NewString(), conn)
	if !h.register(cl) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	h.log.Debug("observer connected", zap.String("conn", cl.id), zap.String("remote", conn.RemoteAddr().String()))

	go cl.writePump()
	cl.queue(map[string]any{"type": "system", "connId": cl.id, "message": "connected"})
	cl.readPump(h.log)

	h.unregister(cl)
	h.log.Debug("observer disconnected", zap.String("conn", cl.id))
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.observer.IncWSConnections()
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	h.observer.DecWSConnections()
}

// Close disconnects every observer and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
		h.observer.DecWSConnections()
	}
}
