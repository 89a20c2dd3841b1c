package ws

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/controlroom/internal/domain/events"
)

// message is a client request
type message struct {
	Type  string   `json:"type"`
	Kinds []string `json:"kinds,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	mu    sync.RWMutex
	kinds map[events.Kind]struct{}
}

func newClient(id string, conn *websocket.Conn) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *client) wants(kind events.Kind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.kinds) == 0 {
		return true
	}
	_, ok := c.kinds[kind]
	return ok
}

func (c *client) subscribe(kinds []string) {
	set := make(map[events.Kind]struct{}, len(kinds))
	for _, k := range kinds {
		set[events.Kind(k)] = struct{}{}
	}

	c.mu.Lock()
	c.kinds = set
	c.mu.Unlock()
}

// queue sends a control message if there is room
func (c *client) queue(v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// readPump handles client requests until the connection fails
func (c *client) readPump(log *zap.Logger) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read error", zap.String("conn", c.id), zap.Error(err))
			}
			return
		}

		var msg message
		if err := sonic.Unmarshal(data, &msg); err != nil {
			c.queue(map[string]any{"type": "error", "message": "invalid message"})
			continue
		}

		switch msg.Type {
		case "ping":
			c.queue(map[string]any{"type": "pong"})
		case "subscribe":
			c.subscribe(msg.Kinds)
			c.queue(map[string]any{"type": "subscribed", "kinds": msg.Kinds})
		default:
			c.queue(map[string]any{"type": "error", "message": "unknown message type"})
		}
	}
}

// writePump owns all writes to the connection
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}
