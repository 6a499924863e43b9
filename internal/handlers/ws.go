package handlers

import (
	"encoding/json"
	"net/http"
	"planboard/internal/events"
	"planboard/internal/logger"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events a subscriber may fall behind before it is dropped.
	sendBuffer = 64
)

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans change events out to websocket subscribers grouped by topic.
type Hub struct {
	connections map[string]map[*subscriber]bool
	mutex       sync.Mutex
	upgrader    websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]map[*subscriber]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

var _ events.Publisher = (*Hub)(nil)

// Publish queues the event for every subscriber of its topic and never waits on the
// network. A subscriber whose queue is full is dropped.
func (h *Hub) Publish(e events.Event) {
	message, err := json.Marshal(e)
	if err != nil {
		logger.Error("WS: failed to marshal event", err, zap.String("event", string(e.Type)))
		return
	}

	topic := e.Topic()
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for sub := range h.connections[topic] {
		select {
		case sub.send <- message:
		default:
			logger.Warn("WS: dropping slow subscriber", zap.String("topic", topic))
			h.removeLocked(topic, sub)
		}
	}
}

func (h *Hub) Subscribers(topic string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.connections[topic])
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for topic, subs := range h.connections {
		for sub := range subs {
			h.removeLocked(topic, sub)
		}
	}
}

func (h *Hub) register(topic string, sub *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.connections[topic] == nil {
		h.connections[topic] = make(map[*subscriber]bool)
	}
	h.connections[topic][sub] = true
}

func (h *Hub) unregister(topic string, sub *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(topic, sub)
}

// removeLocked closes the send queue exactly once; the writer then says goodbye and
// closes the connection.
func (h *Hub) removeLocked(topic string, sub *subscriber) {
	if !h.connections[topic][sub] {
		return
	}
	delete(h.connections[topic], sub)
	if len(h.connections[topic]) == 0 {
		delete(h.connections, topic)
	}
	close(sub.send)
}

// write drains the subscriber's queue onto the connection.
func (h *Hub) write(topic string, sub *subscriber) {
	defer sub.conn.Close()
	for message := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warn("WS: dropping connection", zap.String("topic", topic), zap.Error(err))
			h.unregister(topic, sub)
			return
		}
	}
	sub.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "unsubscribed"),
		time.Now().Add(writeWait))
}

// serve upgrades the request and keeps the connection subscribed until the client leaves.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, topic string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WS: upgrade failed", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		return
	}
	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(topic, sub)
	go h.write(topic, sub)
	logger.Info("WS: subscriber connected", zap.String("topic", topic), zap.String("client_ip", r.RemoteAddr))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(topic, sub)
			logger.Info("WS: subscriber left", zap.String("topic", topic), zap.Error(err))
			return
		}
	}
}

// WebSocket subscribes to a project feed (?project_id=) or to the caller's daily task feed.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	topic := events.UserTopic(userID(r))
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			responseWithError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid project_id")
			return
		}
		if _, err := h.service.GetProject(r.Context(), userID(r), id); err != nil {
			handleError(w, err, "websocket")
			return
		}
		topic = events.ProjectTopic(id.String())
	}
	h.hub.serve(w, r, topic)
}

// SharedWebSocket lets viewers of a share link follow the project feed.
func (h *Handler) SharedWebSocket(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	p, err := h.service.GetSharedProject(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		handleError(w, err, "shared_websocket")
		return
	}
	h.hub.serve(w, r, events.ProjectTopic(p.UUID.String()))
}
