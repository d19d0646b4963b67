// Package websocket keeps live dashboard connections grouped by team.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	fws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"screw-inspection/domain/dto"
	"screw-inspection/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// Conn is the part of a websocket connection the manager writes to
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Team   string

	conn Conn
	send chan []byte
	done chan struct{}
}

// Done is closed once the client's writer has stopped
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Manager fans inspection events out to the clients of one team. Each client
// has a single writer goroutine; slow clients are dropped.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
}

func NewManager() *Manager {
	return &Manager{rooms: make(map[string]map[*Client]struct{})}
}

func (m *Manager) Register(conn Conn, userID uuid.UUID, team string) *Client {
	client := &Client{
		ID:     uuid.New(),
		UserID: userID,
		Team:   team,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	room, ok := m.rooms[team]
	if !ok {
		room = make(map[*Client]struct{})
		m.rooms[team] = room
	}
	room[client] = struct{}{}
	m.mu.Unlock()

	go client.writePump()

	logger.WebSocket("client_registered", "Dashboard client registered", map[string]interface{}{
		"client_id": client.ID.String(),
		"user_id":   userID.String(),
		"team":      team,
	})
	return client
}

// Unregister removes the client and stops its writer. Safe to call twice.
func (m *Manager) Unregister(client *Client) {
	m.mu.Lock()
	removed := m.remove(client)
	m.mu.Unlock()

	if removed {
		logger.WebSocket("client_unregistered", "Dashboard client unregistered", map[string]interface{}{
			"client_id": client.ID.String(),
			"team":      client.Team,
		})
	}
}

// remove must be called with mu held
func (m *Manager) remove(client *Client) bool {
	room, ok := m.rooms[client.Team]
	if !ok {
		return false
	}
	if _, ok := room[client]; !ok {
		return false
	}
	delete(room, client)
	if len(room) == 0 {
		delete(m.rooms, client.Team)
	}
	close(client.send)
	return true
}

// BroadcastToTeam queues payload for every client of team and returns how
// many clients accepted it.
func (m *Manager) BroadcastToTeam(team string, payload []byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	delivered := 0
	for client := range m.rooms[team] {
		select {
		case client.send <- payload:
			delivered++
		default:
			m.remove(client)
			logger.Warn(logger.CategoryWebSocket, "client_dropped", "Dropped slow dashboard client", map[string]interface{}{
				"client_id": client.ID.String(),
				"team":      team,
			})
		}
	}
	return delivered
}

func (m *Manager) PublishInspection(_ context.Context, event dto.InspectionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.WebSocketError("marshal_failed", "Failed to encode inspection event", err, nil)
		return
	}
	m.BroadcastToTeam(event.Team, payload)
}

func (m *Manager) ClientCount(team string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[team])
}

// Shutdown disconnects every client
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.rooms {
		for client := range room {
			m.remove(client)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(fws.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(fws.TextMessage, message); err != nil {
				logger.WebSocketError("write_failed", "WebSocket write error", err, map[string]interface{}{
					"client_id": c.ID.String(),
				})
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(fws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
