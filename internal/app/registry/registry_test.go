package registry

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
)

type fakeClient struct {
	userID string
	connID string

	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (c *fakeClient) UserID() string { return c.userID }
func (c *fakeClient) ConnID() string { return c.connID }

func (c *fakeClient) Send(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeClient) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func TestSendToUserReachesEveryConnection(t *testing.T) {
	hub := NewRegistry()
	a1 := &fakeClient{userID: "alice", connID: "c1"}
	a2 := &fakeClient{userID: "alice", connID: "c2"}
	b := &fakeClient{userID: "bob", connID: "c3"}
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)

	hub.SendToUser(context.Background(), "alice", map[string]string{"type": "badge"})

	if a1.frameCount() != 1 || a2.frameCount() != 1 {
		t.Fatal("every connection of the user must receive the event")
	}
	if b.frameCount() != 0 {
		t.Fatal("other users must not receive the event")
	}

	var decoded map[string]string
	if err := json.Unmarshal(a1.frames[0], &decoded); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	if decoded["type"] != "badge" {
		t.Fatalf("frame = %v", decoded)
	}
}

func TestSendToUserNoConnections(t *testing.T) {
	hub := NewRegistry()
	// Must not panic or block.
	hub.SendToUser(context.Background(), "ghost", "hello")
}

func TestUnregisterRemovesConnection(t *testing.T) {
	hub := NewRegistry()
	a1 := &fakeClient{userID: "alice", connID: "c1"}
	a2 := &fakeClient{userID: "alice", connID: "c2"}
	hub.Register(a1)
	hub.Register(a2)

	hub.Unregister(a1)
	hub.SendToUser(context.Background(), "alice", "hi")

	if a1.frameCount() != 0 {
		t.Fatal("unregistered connection still receives events")
	}
	if a2.frameCount() != 1 {
		t.Fatal("remaining connection must keep receiving events")
	}
}

func TestActiveUsers(t *testing.T) {
	hub := NewRegistry()
	a1 := &fakeClient{userID: "alice", connID: "c1"}
	a2 := &fakeClient{userID: "alice", connID: "c2"}
	b := &fakeClient{userID: "bob", connID: "c3"}
	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)

	got := hub.ActiveUsers()
	sort.Strings(got)
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Fatalf("active users = %v, want [alice bob]", got)
	}

	hub.Unregister(a1)
	if got := hub.ActiveUsers(); len(got) != 2 {
		t.Fatalf("alice still has a connection, active users = %v", got)
	}
	hub.Unregister(a2)
	got = hub.ActiveUsers()
	if len(got) != 1 || got[0] != "bob" {
		t.Fatalf("active users = %v, want [bob]", got)
	}
}
