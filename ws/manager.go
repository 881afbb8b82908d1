package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"agro-collector/entities"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var ErrNotConnected = errors.New("user not connected")

// Message is the envelope pushed to browser clients.
type Message struct {
	Type         string                 `json:"type"` // notification
	Notification *entities.Notification `json:"notification,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex // gorilla connections allow one concurrent writer
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Manager keeps track of active notification websocket connections per user.
// A user may have several tabs open, so each user maps to a set of connections.
type Manager struct {
	mu          sync.RWMutex
	connections map[string]map[*websocket.Conn]*client // userID -> conns
	logger      *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		connections: make(map[string]map[*websocket.Conn]*client),
		logger:      logger,
	}
}

// Register adds a connection for the user.
func (m *Manager) Register(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conns, ok := m.connections[userID]
	if !ok {
		conns = make(map[*websocket.Conn]*client)
		m.connections[userID] = conns
	}
	conns[conn] = &client{conn: conn}
}

// Unregister closes and removes one connection of the user.
func (m *Manager) Unregister(userID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conns, ok := m.connections[userID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; ok {
		_ = conn.Close()
		delete(conns, conn)
	}
	if len(conns) == 0 {
		delete(m.connections, userID)
	}
}

// SendToUser writes payload to every connection of the user and returns how many
// accepted it. Connections that fail the write are dropped.
func (m *Manager) SendToUser(userID string, payload []byte) (int, error) {
	m.mu.RLock()
	targets := make([]*client, 0, len(m.connections[userID]))
	for _, c := range m.connections[userID] {
		targets = append(targets, c)
	}
	m.mu.RUnlock()

	if len(targets) == 0 {
		return 0, ErrNotConnected
	}

	sent := 0
	for _, c := range targets {
		if err := c.write(payload); err != nil {
			m.logger.Warn("dropping notification connection", "user_id", userID, "error", err)
			m.Unregister(userID, c.conn)
			continue
		}
		sent++
	}
	return sent, nil
}

// PublishNotification pushes n to its recipient if they are connected.
func (m *Manager) PublishNotification(n entities.Notification) {
	payload, err := json.Marshal(Message{Type: "notification", Notification: &n})
	if err != nil {
		m.logger.Error("failed to encode notification", "notification_id", n.ID, "error", err)
		return
	}
	if _, err := m.SendToUser(n.UserID, payload); err != nil && !errors.Is(err, ErrNotConnected) {
		m.logger.Warn("failed to push notification", "user_id", n.UserID, "error", err)
	}
}

// IsConnected returns whether the user has at least one open connection.
func (m *Manager) IsConnected(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections[userID]) > 0
}

// List returns a copy of current connected user IDs.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of open connections across all users.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, conns := range m.connections {
		n += len(conns)
	}
	return n
}
