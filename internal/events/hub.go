// Пакет events — рассылка событий изменения данных подключённым
// WebSocket-клиентам. Клиент по событию обновляет открытое представление.
package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Типы событий.
const (
	FileUploaded  = "file.uploaded"
	FileDeleted   = "file.deleted"
	FolderCreated = "folder.created"
	FolderDeleted = "folder.deleted"
)

const (
	// Буфер исходящих событий на клиента; переполнение отключает клиента
	clientBuffer = 64
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 50 * time.Second
)

var (
	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fs_events_clients",
		Help: "Количество подключённых WebSocket-клиентов событий.",
	})
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fs_events_published_total",
		Help: "Количество опубликованных событий (по типу).",
	}, []string{"type"})
	droppedClientsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fs_events_dropped_clients_total",
		Help: "Количество клиентов, отключённых из-за переполнения буфера.",
	})
)

// Event — событие изменения.
type Event struct {
	// Type — тип события (file.uploaded, folder.deleted, ...)
	Type string `json:"type"`
	// ID — UUID затронутого файла или папки
	ID string `json:"id"`
	// FolderID — папка, содержимое которой изменилось; nil — корень
	FolderID *string `json:"folder_id"`
	// Timestamp — время события
	Timestamp time.Time `json:"timestamp"`
}

// Publisher — получатель событий изменения.
type Publisher interface {
	Publish(e Event)
}

// Discard — Publisher, игнорирующий события.
type Discard struct{}

// Publish ничего не делает.
func (Discard) Publish(Event) {}

// Fanout передаёт каждое событие всем получателям по порядку.
type Fanout []Publisher

// Publish реализует Publisher.
func (f Fanout) Publish(e Event) {
	for _, p := range f {
		p.Publish(e)
	}
}

// client — подключение с собственной очередью отправки.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub — реестр WebSocket-клиентов и рассылка событий (pub/sub).
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	closed   bool
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub создаёт Hub. Проверка Origin отключена: сервис без аутентификации.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "events_hub")),
	}
}

// Publish рассылает событие всем клиентам без блокировки.
// Клиент с переполненной очередью отключается.
func (h *Hub) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("Ошибка сериализации события", slog.String("error", err.Error()))
		return
	}
	publishedTotal.WithLabelValues(e.Type).Inc()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			droppedClientsTotal.Inc()
			h.removeLocked(c)
		}
	}
}

// ServeHTTP переводит соединение в WebSocket и регистрирует клиента.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой
		h.logger.Warn("Ошибка WebSocket upgrade", slog.String("error", err.Error()))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"), time.Now().Add(time.Second))
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	connectedClients.Inc()

	h.logger.Debug("WebSocket-клиент подключён", slog.String("remote_addr", r.RemoteAddr))

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Clients возвращает количество подключённых клиентов.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close отключает всех клиентов и перестаёт принимать новых.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

// removeLocked удаляет клиента; вызывается под h.mu.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	connectedClients.Dec()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// writeLoop — единственный писатель в соединение.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// readLoop читает входящие сообщения (игнорируются) до закрытия соединения.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
