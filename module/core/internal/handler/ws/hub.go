package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nandanugg/linewatch/module/core/domain"
)

const sendBuffer = 64

type FrameType string

const (
	FramePosition   FrameType = "position"
	FrameTransition FrameType = "transition"
	FrameAlert      FrameType = "alert"
)

// Frame is the JSON envelope pushed to every connected presentation client.
type Frame struct {
	Type       FrameType               `json:"type"`
	Position   *domain.Position        `json:"position,omitempty"`
	Transition *domain.TransitionEvent `json:"transition,omitempty"`
	Alert      *domain.AlertRequest    `json:"alert,omitempty"`
	Stamp      int64                   `json:"stamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames out to websocket clients. It is the in-app alert sink and
// also streams positions and transitions for the map view.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) Register(r *gin.RouterGroup) {
	r.GET("/ws", h.Handle)
}

func (h *Hub) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("ws: upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	zap.L().Info("ws: client connected", zap.Int("clients", n))

	go func() {
		defer func() { _ = conn.Close() }()
		for msg := range cl.send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	go func() {
		defer h.remove(cl)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	zap.L().Info("ws: client disconnected", zap.Int("clients", n))
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Deliver pushes an in-app alert. Having nobody connected is not an error;
// the alert is simply not seen.
func (h *Hub) Deliver(_ context.Context, req *domain.AlertRequest) error {
	if req.Kind != domain.AlertInApp {
		return eris.Errorf("ws: cannot present %s alert in app", req.Kind)
	}
	return h.broadcast(Frame{Type: FrameAlert, Alert: req})
}

func (h *Hub) OnPosition(_ context.Context, pos domain.Position) {
	if err := h.broadcast(Frame{Type: FramePosition, Position: &pos}); err != nil {
		zap.L().Warn("ws: broadcast position", zap.Error(err))
	}
}

func (h *Hub) OnTransition(_ context.Context, event *domain.TransitionEvent) {
	if err := h.broadcast(Frame{Type: FrameTransition, Transition: event}); err != nil {
		zap.L().Warn("ws: broadcast transition", zap.Error(err))
	}
}

func (h *Hub) broadcast(frame Frame) error {
	frame.Stamp = time.Now().UnixMilli()
	data, err := json.Marshal(frame)
	if err != nil {
		return eris.Wrap(err, "ws: marshal frame")
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			// slow client, drop the frame
		}
	}
	return nil
}
