package wsclient

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ErrNotConnected is returned when reading before Connect succeeded
var ErrNotConnected = errors.New("websocket not connected")

// Client is a minimal wrapper around a websocket connection
type Client struct {
	conn *websocket.Conn
}

func NewClient() *Client { return &Client{} }

func (c *Client) Connect(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

func (c *Client) ReadMessage() ([]byte, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	_, msg, err := c.conn.ReadMessage()
	return msg, err
}

func (c *Client) Close() error {
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// FeedURL turns a server base URL such as http://localhost:8080 into the URL
// of its websocket feed.
func FeedURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New("unsupported scheme " + u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1/ws"
	}
	return u.String(), nil
}

// Watcher reads messages from a websocket feed and reconnects with
// exponential backoff when the connection drops.
type Watcher struct {
	client      *Client
	url         string
	backoffBase time.Duration
	backoffMax  time.Duration
}

func NewWatcher(url string) *Watcher {
	return &Watcher{client: NewClient(), url: url, backoffBase: time.Second, backoffMax: 30 * time.Second}
}

// Run delivers every message to handle until ctx is done. A handle error
// stops the watcher and is returned.
func (w *Watcher) Run(ctx context.Context, handle func([]byte) error) error {
	backoff := w.backoffBase
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := w.client.Connect(ctx, w.url); err != nil {
			log.Error().Err(err).Dur("retry", backoff).Msg("websocket connect failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > w.backoffMax {
				backoff = w.backoffMax
			}
			continue
		}
		backoff = w.backoffBase
		log.Info().Str("url", w.url).Msg("websocket connected")

		// Closing the connection unblocks ReadMessage when ctx ends.
		conn := w.client.conn
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-done:
			}
		}()

		err := w.read(handle)
		close(done)
		_ = w.client.Close()
		if err != nil {
			return err
		}
		if ctx.Err() == nil {
			log.Warn().Msg("websocket disconnected; reconnecting")
		}
	}
}

// read returns nil when the connection ends and the handler's error otherwise
func (w *Watcher) read(handle func([]byte) error) error {
	for {
		msg, err := w.client.ReadMessage()
		if err != nil {
			return nil
		}
		if err := handle(msg); err != nil {
			return err
		}
	}
}
