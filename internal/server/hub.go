package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thruflo/sortviz/internal/array"
	"github.com/thruflo/sortviz/internal/logging"
	"github.com/thruflo/sortviz/internal/run"
	"github.com/thruflo/sortviz/internal/stream"
	"github.com/thruflo/sortviz/internal/tone"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Hub fans stream messages out to websocket clients. It implements
// tone.Sink so the notifier can play tones through it.
type Hub struct {
	ctrl     *run.Controller
	store    *array.Store
	log      *logging.Logger
	upgrader websocket.Upgrader
	seq      stream.Sequencer

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	ready     chan struct{}
	readyOnce sync.Once

	dropped atomic.Uint64
}

var _ tone.Sink = (*Hub)(nil)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

// NewHub creates a hub for ctrl's store. Call Run to start forwarding.
func NewHub(ctrl *run.Controller, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		ctrl:  ctrl,
		store: ctrl.Store(),
		log:   logger.With("component", "hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		clients: make(map[*client]struct{}),
		ready:   make(chan struct{}),
	}
}

// Ready is closed once Run is forwarding updates.
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

// Play broadcasts a tone message.
func (h *Hub) Play(t tone.Tone) {
	h.Broadcast(stream.ToneMessage(t))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many messages were dropped for slow clients.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Broadcast stamps m and queues it for every client. A client whose queue is
// full misses the message. Sequence numbers reach each client in order.
func (h *Hub) Broadcast(m *stream.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}
	b, err := h.seq.Stamp(m).Marshal()
	if err != nil {
		h.log.Error("failed to marshal message", "type", m.Type, "error", err)
		return
	}
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.dropped.Add(1)
		}
	}
}

// Run forwards store updates and run status changes until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	updates, unsubscribe := h.store.Subscribe()
	defer unsubscribe()

	stopStatus := h.ctrl.OnChange(func(info run.Info) {
		h.Broadcast(stream.StatusMessage(info))
	})
	defer stopStatus()

	h.readyOnce.Do(func() { close(h.ready) })
	for {
		select {
		case <-ctx.Done():
			h.Close()
			return nil
		case u, ok := <-updates:
			if !ok {
				h.Close()
				return nil
			}
			h.Broadcast(stream.SnapshotMessage(u))
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.closed = true
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

// ServeWS upgrades the request and registers the client. The client first
// receives the current status and snapshot, then every broadcast.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	for _, m := range []*stream.Message{
		stream.StatusMessage(h.ctrl.Info()),
		stream.SnapshotMessage(h.store.Current()),
	} {
		b, err := h.seq.Stamp(m).Marshal()
		if err == nil {
			c.send <- b
		}
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Debug("client connected", "remote", r.RemoteAddr, "clients", count)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		h.log.Debug("client disconnected", "remote", c.conn.RemoteAddr())
	}
	c.close()
}

// close stops the write pump, which closes the connection.
func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// readPump discards inbound messages and detects disconnects.
func (c *client) readPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer on the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				c.hub.unregister(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.unregister(c)
				return
			}
		}
	}
}
