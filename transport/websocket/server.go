package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-versus/internal/broadcast"
)

const (
	// time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// observers only send control frames.
	maxMessageSize = 512

	sendBufferSize = 256
)

var ErrServerClosed = errors.New("websocket server is closed")

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Server keeps the connected observers and pushes every published event to all of them.
type Server struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clients map[*client]struct{}
	count   atomic.Int64

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
}

func New(logger *slog.Logger) *Server {
	return &Server{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		clients: make(map[*client]struct{}),

		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

// Run - owns the set of clients until ctx is done, then disconnects everyone.
func (that *Server) Run(ctx context.Context) {
	log := that.logger.With("method", "Run")

	defer func() {
		close(that.done)

		for c := range that.clients {
			that.remove(c)
		}
	}()

	for {
		select {
		case c := <-that.register:
			that.clients[c] = struct{}{}
			that.count.Add(1)
			log.Debug("observer connected", "clients", len(that.clients))

		case c := <-that.unregister:
			that.remove(c)
			log.Debug("observer disconnected", "clients", len(that.clients))

		case message := <-that.broadcast:
			for c := range that.clients {
				select {
				case c.send <- message:
				default:
					// slow consumer
					that.remove(c)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

// Publish - queues the event for every connected observer.
func (that *Server) Publish(ctx context.Context, event string, payload any) error {
	message, err := json.Marshal(broadcast.Message{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case that.broadcast <- message:
		return nil
	case <-that.done:
		return ErrServerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clients - the number of connected observers.
func (that *Server) Clients() int {
	return int(that.count.Load())
}

// ServeHTTP - upgrades the request and registers the connection as an observer.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	select {
	case that.register <- c:
	case <-that.done:
		_ = conn.Close()
		return
	}

	go that.writePump(c)
	go that.readPump(c)
}

func (that *Server) remove(c *client) {
	if _, ok := that.clients[c]; !ok {
		return
	}

	delete(that.clients, c)
	that.count.Add(-1)
	close(c.send)
}

// readPump - discards inbound frames, keeps the read deadline fresh and detects disconnects.
func (that *Server) readPump(c *client) {
	defer func() {
		select {
		case that.unregister <- c:
		case <-that.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				that.logger.Warn("observer connection error", "error", err)
			}
			return
		}
	}
}

func (that *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
