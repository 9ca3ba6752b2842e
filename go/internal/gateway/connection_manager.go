package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/auctionroom/go/internal/auction"
	"github.com/mcdev12/auctionroom/go/internal/auction/events"
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// EventSource is the part of an auction engine a connection streams from
type EventSource interface {
	Watch() (auction.State, <-chan events.Event, func())
	Snapshot() auction.State
}

// Bidder places bids on behalf of websocket clients
type Bidder interface {
	Bid(sessionID, teamID string) (models.Bid, error)
}

// ConnectionManager manages WebSocket connections for auction sessions
type ConnectionManager struct {
	// Connection pools organized by session ID
	sessionConnections map[string]map[*Connection]bool
	mu                 sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	bidder   Bidder
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID        string
	SessionID string
	TeamID    string
	Conn      *websocket.Conn
	Send      chan []byte
	Manager   *ConnectionManager

	ConnectedAt time.Time

	source      EventSource
	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, bidder Bidder) *ConnectionManager {
	if config.SendBuffer <= 0 {
		config.SendBuffer = DefaultConnectionConfig().SendBuffer
	}
	return &ConnectionManager{
		sessionConnections: make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
		bidder: bidder,
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and starts
// streaming the session's events. The first frame is a state snapshot.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request, sessionID, teamID string, source EventSource) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	state, ch, unsubscribe := source.Watch()
	connection := &Connection{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		TeamID:      teamID,
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBuffer),
		Manager:     cm,
		ConnectedAt: time.Now(),
		source:      source,
		unsubscribe: unsubscribe,
		done:        make(chan struct{}),
	}

	cm.registerConnection(connection)
	connection.enqueue(Message{Type: MessageSnapshot, SessionID: sessionID, State: &state})

	go connection.writePump()
	go connection.readPump()
	go connection.eventPump(ch)

	log.Info().
		Str("connection_id", connection.ID).
		Str("session_id", sessionID).
		Str("team_id", teamID).
		Msg("WebSocket connection established")
	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.sessionConnections[conn.SessionID] == nil {
		cm.sessionConnections[conn.SessionID] = make(map[*Connection]bool)
	}
	cm.sessionConnections[conn.SessionID][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("session_id", conn.SessionID).
		Int("total_connections", len(cm.sessionConnections[conn.SessionID])).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	connections, exists := cm.sessionConnections[conn.SessionID]
	if !exists {
		return
	}
	if _, exists := connections[conn]; !exists {
		return
	}
	delete(connections, conn)
	if len(connections) == 0 {
		delete(cm.sessionConnections, conn.SessionID)
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("session_id", conn.SessionID).
		Msg("connection unregistered")
}

// CloseSession disconnects every client watching a session
func (cm *ConnectionManager) CloseSession(sessionID string) {
	cm.mu.RLock()
	var targets []*Connection
	for conn := range cm.sessionConnections[sessionID] {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		conn.close()
	}
}

// ConnectionCount returns the number of open connections for a session,
// or across all sessions when sessionID is empty
func (cm *ConnectionManager) ConnectionCount(sessionID string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if sessionID != "" {
		return len(cm.sessionConnections[sessionID])
	}
	total := 0
	for _, connections := range cm.sessionConnections {
		total += len(connections)
	}
	return total
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() map[string]interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	totalConnections := 0
	sessionCounts := make(map[string]int)
	for sessionID, connections := range cm.sessionConnections {
		totalConnections += len(connections)
		sessionCounts[sessionID] = len(connections)
	}

	return map[string]interface{}{
		"total_connections":   totalConnections,
		"active_sessions":     len(cm.sessionConnections),
		"session_connections": sessionCounts,
	}
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.unsubscribe()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	})
}

// enqueue queues a frame for the writer. A client that cannot keep up is disconnected.
func (c *Connection) enqueue(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to marshal message")
		return
	}

	select {
	case c.Send <- data:
	case <-c.done:
	default:
		log.Warn().
			Str("connection_id", c.ID).
			Str("session_id", c.SessionID).
			Msg("connection send buffer full, closing connection")
		c.close()
	}
}

// eventPump forwards engine events until the engine or the connection ends
func (c *Connection) eventPump(ch <-chan events.Event) {
	for evt := range ch {
		evt := evt
		c.enqueue(Message{Type: MessageEvent, SessionID: c.SessionID, Event: &evt})
	}

	// A nil frame tells the writer to flush and close
	c.enqueue(Message{Type: MessageSessionEnded, SessionID: c.SessionID})
	select {
	case c.Send <- nil:
	case <-c.done:
	}
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if message == nil {
				c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer c.close()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			return
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage processes bid and state requests received from the client
func (c *Connection) handleClientMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.enqueue(Message{Type: MessageError, SessionID: c.SessionID, Error: "invalid message"})
		return
	}

	switch msg.Type {
	case MessageBid:
		teamID := msg.TeamID
		if teamID == "" {
			teamID = c.TeamID
		}
		bid, err := c.Manager.bidder.Bid(c.SessionID, teamID)
		if err != nil {
			if !errors.Is(err, auction.ErrBidRejected) {
				log.Warn().Err(err).Str("connection_id", c.ID).Msg("bid failed")
			}
			c.enqueue(Message{Type: MessageBidRejected, SessionID: c.SessionID, Error: err.Error()})
			return
		}
		c.enqueue(Message{Type: MessageBidAccepted, SessionID: c.SessionID, Bid: &bid})

	case MessageState:
		state := c.source.Snapshot()
		c.enqueue(Message{Type: MessageSnapshot, SessionID: c.SessionID, State: &state})

	default:
		log.Debug().
			Str("connection_id", c.ID).
			RawJSON("message", message).
			Msg("received unknown client message")
		c.enqueue(Message{Type: MessageError, SessionID: c.SessionID, Error: fmt.Sprintf("unknown message type %q", msg.Type)})
	}
}
