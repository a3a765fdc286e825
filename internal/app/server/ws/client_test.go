package ws

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialPair upgrades a test server connection and returns both ends.
func dialPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	serverSide := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { peer.Close() })

	select {
	case conn := <-serverSide:
		return conn, peer
	case <-time.After(2 * time.Second):
		t.Fatal("server side never upgraded")
		return nil, nil
	}
}

func TestClientDeliversQueuedWrites(t *testing.T) {
	conn, peer := dialPair(t)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	client := NewClient(ctx, NewWebSocket(ctx, conn), "u1", "c1")
	defer client.Close()

	if err := client.Send(ctx, []byte("hello")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := peer.ReadMessage()
	if err != nil {
		t.Fatalf("peer read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("peer read = %q, want %q", data, "hello")
	}
}

// A read-loop exit without a close frame reaches the client only through
// the parent context, so cancelling it must stop the write loop and close
// the socket rather than leave both running.
func TestClientStopsOnParentCancel(t *testing.T) {
	conn, peer := dialPair(t)
	ctx, cancel := context.WithCancel(t.Context())
	client := NewClient(ctx, NewWebSocket(ctx, conn), "u1", "c1")

	cancel()

	peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := peer.ReadMessage(); err == nil {
		t.Fatal("peer read succeeded, socket still open after cancel")
	} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
		t.Fatal("peer read timed out, socket never closed after cancel")
	}

	if err := client.Send(context.Background(), []byte("late")); err == nil {
		t.Fatal("Send succeeded after parent cancel")
	}
}
