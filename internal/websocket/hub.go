package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/storefront-backend/pkg/logger"
)

// MessageTypeFavoriteChanged is pushed after a committed favorite mutation
const MessageTypeFavoriteChanged = "favorite_changed"

// FavoriteChanged is the push payload for MessageTypeFavoriteChanged
type FavoriteChanged struct {
	Type      string `json:"type"`
	ProductID uint   `json:"productId"`
	Favorited bool   `json:"favorited"`
}

// Client is one websocket session of a user
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// NewClient builds a session bound to hub
func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Send:   make(chan []byte, 64),
	}
}

// Hub fans messages out to every session of a user (multi-device)
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *userMessage
	done       chan struct{}

	mu sync.RWMutex
}

type userMessage struct {
	UserID  uint
	Message []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *userMessage, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			clientList := h.clients[message.UserID]
			h.mu.RUnlock()
			for _, client := range clientList {
				select {
				case client.Send <- message.Message:
				default:
					// slow consumer
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": message.UserID,
					})
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientList, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	newList := make([]*Client, 0, len(clientList))
	found := false
	for _, c := range clientList {
		if c == client {
			found = true
			continue
		}
		newList = append(newList, c)
	}
	if !found {
		return
	}
	if len(newList) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = newList
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(newList),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clientList := range h.clients {
		for _, c := range clientList {
			close(c.Send)
		}
		delete(h.clients, userID)
	}
}

// Register adds a session. Once the hub has stopped, the session's send
// channel is closed instead so its write pump shuts the connection.
func (h *Hub) Register(client *Client) {
	select {
	case <-h.done:
		close(client.Send)
		return
	default:
	}
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister removes a session. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues message for every session of userID. Messages are
// dropped when the hub is saturated.
func (h *Hub) SendToUser(userID uint, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err)
		return err
	}

	select {
	case h.broadcast <- &userMessage{UserID: userID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"user_id": userID,
		})
	}
	return nil
}

// NotifyFavoriteChanged pushes a favorite_changed message to the user
func (h *Hub) NotifyFavoriteChanged(userID, productID uint, favorited bool) {
	_ = h.SendToUser(userID, FavoriteChanged{
		Type:      MessageTypeFavoriteChanged,
		ProductID: productID,
		Favorited: favorited,
	})
}

func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// SessionCount returns the number of open sessions for userID
func (h *Hub) SessionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
