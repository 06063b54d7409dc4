package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"

	"siege-ca/internal/session"
)

const (
	writeTimeout = 10 * time.Second
	sendBuffer   = 16
)

type submitter interface {
	Submit(ctx context.Context, cmd session.Command) error
}

// Hub broadcasts frames to every connected spectator and forwards their
// commands to the session.
type Hub struct {
	logger    *slog.Logger
	submitter submitter
	upgrader  ws.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

type client struct {
	conn *ws.Conn
	send chan []byte
}

func NewHub(logger *slog.Logger, submitter submitter) *Hub {
	return &Hub{
		logger:    logger.With("component", "websocket"),
		submitter: submitter,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// NewMux - routes /ws to the hub and /healthz to a liveness probe.
func NewMux(hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Publish fans the frame out without blocking. Clients whose buffer is full
// are disconnected.
func (that *Hub) Publish(frame session.Frame) {
	msg, err := encode(actionFrame, frame)
	if err != nil {
		that.logger.Error("failed to marshal frame", "error", err)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.last = msg
	for c := range that.clients {
		select {
		case c.send <- msg:
		default:
			that.logger.Warn("dropping slow client")
			that.dropLocked(c)
		}
	}
}

// Clients returns the number of connected spectators.
func (that *Hub) Clients() int {
	that.mu.Lock()
	defer that.mu.Unlock()
	return len(that.clients)
}

// Close disconnects every client.
func (that *Hub) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()
	for c := range that.clients {
		that.dropLocked(c)
	}
}

func (that *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	that.register(c)
	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	go that.writeLoop(c)
	that.readLoop(r.Context(), c)
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.clients[c] = struct{}{}
	if that.last != nil {
		c.send <- that.last
	}
}

func (that *Hub) drop(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.dropLocked(c)
}

func (that *Hub) dropLocked(c *client) {
	if _, ok := that.clients[c]; !ok {
		return
	}
	delete(that.clients, c)
	close(c.send)
}

// reply queues a direct response unless the client is already gone.
func (that *Hub) reply(c *client, msg []byte) {
	that.mu.Lock()
	defer that.mu.Unlock()
	if _, ok := that.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
		that.dropLocked(c)
	}
}

func (that *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(ws.TextMessage, msg); err != nil {
			that.logger.Debug("write failed", "error", err)
			that.drop(c)
			return
		}
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = c.conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
}

func (that *Hub) readLoop(ctx context.Context, c *client) {
	log := that.logger.With("method", "readLoop")
	defer that.drop(c)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !ws.IsCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
				log.Debug("connection closed", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendError(c, "", errors.New("malformed message"))
			continue
		}

		if err = that.handle(ctx, &message); err != nil {
			log.Warn("error processing message", "action", message.Action, "error", err)
			that.sendError(c, message.Action, err)
			continue
		}

		if ack, err := encode(actionAck, ResponsePayload{Action: message.Action}); err == nil {
			that.reply(c, ack)
		}
	}
}

func (that *Hub) handle(ctx context.Context, message *Message) error {
	kind, ok := commandActions[message.Action]
	if !ok {
		return fmt.Errorf("%w: %q", session.ErrUnknownCommand, message.Action)
	}

	var payload CommandPayload
	if len(message.Payload) > 0 {
		if err := json.Unmarshal(message.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	return that.submitter.Submit(ctx, session.Command{
		Kind:    kind,
		Player:  payload.Player,
		X:       payload.X,
		Y:       payload.Y,
		Pattern: payload.Pattern,
	})
}

func (that *Hub) sendError(c *client, action string, err error) {
	msg, encErr := encode(actionError, ResponsePayload{Action: action, Error: err.Error()})
	if encErr != nil {
		return
	}
	that.reply(c, msg)
}
