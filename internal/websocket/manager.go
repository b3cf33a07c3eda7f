package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	MediaDeleted   NotificationType = "media_deleted"
	CaptionUpdated NotificationType = "caption_updated"
	HashtagAdded   NotificationType = "hashtag_added"
)

const writeWait = 5 * time.Second

// Notification tells open pages that media changed. Origin is the tab that
// made the edit; that tab is not notified.
type Notification struct {
	Type    NotificationType `json:"type"`
	Subject string           `json:"subject"`
	MediaID string           `json:"media_id,omitempty"`
	Origin  string           `json:"origin,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Client represents a WebSocket client connection
type Client struct {
	Subject string
	Tab     string
	Conn    *websocket.Conn

	writeMu sync.Mutex
}

// NewClient wraps an upgraded connection
func NewClient(subject, tab string, conn *websocket.Conn) *Client {
	return &Client{Subject: subject, Tab: tab, Conn: conn}
}

func (c *Client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Manager handles WebSocket connections and notifications
type Manager struct {
	clients    map[string][]*Client
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
	logger     *zap.Logger
}

// NewManager starts a manager; Close stops it
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
	go m.run()
	return m
}

func (m *Manager) run() {
	for {
		select {
		case <-m.done:
			return
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.Subject] = append(m.clients[client.Subject], client)
			m.mu.Unlock()
		case client := <-m.unregister:
			m.mu.Lock()
			if clients, ok := m.clients[client.Subject]; ok {
				for i, c := range clients {
					if c == client {
						m.clients[client.Subject] = append(clients[:i:i], clients[i+1:]...)
						break
					}
				}
				if len(m.clients[client.Subject]) == 0 {
					delete(m.clients, client.Subject)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Close stops the manager loop
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// RegisterClient registers a new WebSocket client
func (m *Manager) RegisterClient(client *Client) {
	select {
	case m.register <- client:
	case <-m.done:
	}
}

// UnregisterClient unregisters a WebSocket client
func (m *Manager) UnregisterClient(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

// Connected returns how many connections a subject has open
func (m *Manager) Connected(subject string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[subject])
}

// SendNotification sends a notification to every connection of a subject
// except the originating tab
func (m *Manager) SendNotification(subject string, notification *Notification) error {
	m.mu.RLock()
	clients := append([]*Client(nil), m.clients[subject]...)
	m.mu.RUnlock()

	if len(clients) == 0 {
		return nil
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	for _, client := range clients {
		if notification.Origin != "" && client.Tab == notification.Origin {
			continue
		}
		if err := client.write(data); err != nil {
			m.logger.Debug("websocket write failed", zap.String("subject", subject), zap.Error(err))
			continue
		}
	}
	return nil
}

// Notify sends a typed notification about mediaID
func (m *Manager) Notify(subject string, kind NotificationType, mediaID, origin string) {
	err := m.SendNotification(subject, &Notification{
		Type:    kind,
		Subject: subject,
		MediaID: mediaID,
		Origin:  origin,
	})
	if err != nil {
		m.logger.Warn("failed to send notification", zap.String("type", string(kind)), zap.Error(err))
	}
}
