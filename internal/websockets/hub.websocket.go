package websockets

import (
	"context"
	"encoding/json"
	"sync"

	authController "roomcare/internal/controllers/auth"
	"roomcare/internal/events"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Manager tracks connected clients per user and forwards notification
// events from the event bus to whichever of the user's connections are
// live.
type Manager struct {
	auth    authController.AuthControllerInterface
	clients map[uuid.UUID][]*websocket.Conn
	mu      sync.RWMutex
	log     logger.Logger
}

func New(auth authController.AuthControllerInterface, eventBus *events.EventBus) *Manager {
	manager := &Manager{
		auth:    auth,
		clients: make(map[uuid.UUID][]*websocket.Conn),
		log:     logger.New("websockets"),
	}

	eventBus.Subscribe(events.NOTIFICATION_CHANNEL, manager.handleNotificationEvent)

	return manager
}

// HandleWebSocket authenticates the connection from the token query
// parameter and pumps until the client disconnects.
func (m *Manager) HandleWebSocket(conn *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	token := conn.Query("token")
	if token == "" {
		log.Info("websocket connection rejected, missing token")
		_ = conn.Close()
		return
	}

	user, err := m.auth.ValidateToken(context.Background(), token)
	if err != nil {
		log.Info("websocket connection rejected, invalid token")
		_ = conn.Close()
		return
	}

	m.register(user.ID, conn)
	defer m.unregister(user.ID, conn)

	log.Info("websocket client connected", "userID", user.ID)

	for {
		// Clients only receive; reads exist to detect disconnects.
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	log.Info("websocket client disconnected", "userID", user.ID)
}

func (m *Manager) handleNotificationEvent(event events.Event) error {
	if event.UserID == nil {
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"type": event.Type,
		"data": event.Data,
	})
	if err != nil {
		return err
	}

	m.mu.RLock()
	conns := append([]*websocket.Conn(nil), m.clients[*event.UserID]...)
	m.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			m.log.Function("handleNotificationEvent").
				Warn("failed to write to websocket client", "userID", *event.UserID, "error", err)
		}
	}

	return nil
}

func (m *Manager) register(userID uuid.UUID, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[userID] = append(m.clients[userID], conn)
}

func (m *Manager) unregister(userID uuid.UUID, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns := m.clients[userID]
	for i, c := range conns {
		if c == conn {
			m.clients[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(m.clients[userID]) == 0 {
		delete(m.clients, userID)
	}
}
