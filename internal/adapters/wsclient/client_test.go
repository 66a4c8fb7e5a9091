package wsclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newFeed serves a websocket that sends messages and then closes the connection.
func newFeed(t *testing.T, messages ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var connections atomic.Int32
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer func() { _ = conn.Close() }()
		connections.Add(1)
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server, &connections
}

func TestFeedURL(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"http://localhost:8080", "ws://localhost:8080/api/v1/ws", false},
		{"https://monitor.example.com/", "wss://monitor.example.com/api/v1/ws", false},
		{"ws://localhost:8080/api/v1/ws", "ws://localhost:8080/api/v1/ws", false},
		{"ftp://localhost", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FeedURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected an error, got %q", got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Expected %q, got %q (%v)", tt.want, got, err)
			}
		})
	}
}

func TestClient_ReadBeforeConnect(t *testing.T) {
	if _, err := NewClient().ReadMessage(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestWatcher_ReconnectsAndDelivers(t *testing.T) {
	server, connections := newFeed(t, "one", "two")
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	w := NewWatcher(url)
	w.backoffBase = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []string
	stop := errors.New("enough")
	err := w.Run(ctx, func(msg []byte) error {
		got = append(got, string(msg))
		if len(got) == 4 {
			return stop
		}
		return nil
	})

	if !errors.Is(err, stop) {
		t.Fatalf("Expected the handler error, got %v", err)
	}
	if strings.Join(got, ",") != "one,two,one,two" {
		t.Errorf("Expected messages from two connections, got %v", got)
	}
	if connections.Load() < 2 {
		t.Errorf("Expected a reconnect, got %d connections", connections.Load())
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	w := NewWatcher("ws://127.0.0.1:1/api/v1/ws")
	w.backoffBase = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func([]byte) error { return nil }) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil on cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Expected the watcher to stop after cancel")
	}
}
