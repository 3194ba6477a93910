// Package events streams journal updates to websocket subscribers.
package events

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ecert/internal/adapters/logger"
	"ecert/internal/domain/transaction"
)

const (
	EventTransaction = "transaction"

	sendBuffer     = 32
	broadcastQueue = 64
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
)

// Event is the message written to subscribers.
type Event struct {
	Type        string           `json:"type"`
	Transaction TransactionEvent `json:"transaction"`
}

type TransactionEvent struct {
	Hash        string     `json:"hash"`
	Method      string     `json:"method"`
	Argument    string     `json:"argument"`
	From        string     `json:"from"`
	Status      string     `json:"status"`
	BlockNumber int64      `json:"blockNumber"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans settled transactions out to every connected subscriber. Run must
// be started before subscribers are served.
type Hub struct {
	upgrader   websocket.Upgrader
	logger     *logger.Logger
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	clients    atomic.Int64
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:     log.Named("events"),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastQueue),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every subscriber.
func (h *Hub) Run(ctx context.Context) {
	clients := make(map[*client]struct{})
	defer func() {
		close(h.done)
		for c := range clients {
			close(c.send)
		}
		h.clients.Store(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			clients[c] = struct{}{}
			h.clients.Store(int64(len(clients)))
			h.logger.Debug("subscriber connected", zap.Int("subscribers", len(clients)))
		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.send)
				h.clients.Store(int64(len(clients)))
				h.logger.Debug("subscriber disconnected", zap.Int("subscribers", len(clients)))
			}
		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- msg:
				default:
					// Slow subscriber.
					delete(clients, c)
					close(c.send)
					h.logger.Warn("dropping slow subscriber")
				}
			}
			h.clients.Store(int64(len(clients)))
		}
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

// Publish queues a journal entry for broadcast. It never blocks; entries are
// dropped when the queue is full or the hub has stopped.
func (h *Hub) Publish(tx transaction.Transaction) {
	data, err := json.Marshal(Event{
		Type: EventTransaction,
		Transaction: TransactionEvent{
			Hash:        tx.Hash,
			Method:      tx.Method,
			Argument:    tx.Argument,
			From:        tx.From,
			Status:      string(tx.Status),
			BlockNumber: tx.BlockNumber,
			ConfirmedAt: tx.ConfirmedAt,
		},
	})
	if err != nil {
		h.logger.Error("failed to encode event", zap.Error(err))
		return
	}

	select {
	case <-h.done:
	case h.broadcast <- data:
	default:
		h.logger.Warn("event queue full, dropping event", zap.String("hash", tx.Hash))
	}
}

// ServeHTTP upgrades the request to a websocket subscription.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards inbound messages and unregisters the client once the
// connection fails.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.logger.Debug("subscriber read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
