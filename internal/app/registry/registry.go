package registry

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/joakmannn/SocialMed/internal/core/contracts"
)

// Registry tracks live websocket connections per user so badge and read
// events reach every screen a user has open.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]contracts.Client            // conn_id → client
	user_hub map[string]map[string]contracts.Client // user_id → conn_id → client
}

func NewRegistry() *Registry {
	return &Registry{
		clients:  make(map[string]contracts.Client),
		user_hub: make(map[string]map[string]contracts.Client),
	}
}

func (h *Registry) Register(c contracts.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID := c.UserID()
	connID := c.ConnID()
	if h.user_hub[userID] == nil {
		h.user_hub[userID] = make(map[string]contracts.Client)
	}
	h.user_hub[userID][connID] = c
	h.clients[connID] = c
}

func (h *Registry) Unregister(c contracts.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID := c.UserID()
	connID := c.ConnID()
	delete(h.user_hub[userID], connID)
	delete(h.clients, connID)
	if len(h.user_hub[userID]) == 0 {
		delete(h.user_hub, userID)
	}
}

func (h *Registry) ActiveUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	users := make([]string, 0, len(h.user_hub))
	for id := range h.user_hub {
		users = append(users, id)
	}
	return users
}

func (h *Registry) SendToUser(ctx context.Context, userID string, v any) {
	h.mu.RLock()
	conns := make([]contracts.Client, 0, len(h.user_hub[userID]))
	for _, c := range h.user_hub[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}
	data, _ := json.Marshal(v)
	for _, c := range conns {
		_ = c.Send(ctx, data)
	}
}
