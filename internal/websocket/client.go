package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	// queueDepth bounds the per-subscriber backlog. A calendar view that
	// falls further behind loses notifications rather than stalling the
	// hub; the view recovers by re-querying its window.
	queueDepth = 16

	keepAliveEvery = 30 * time.Second
)

// Client is one subscribed calendar view: a WebSocket connection plus the
// queue the hub feeds change notifications into.
type Client struct {
	hub   *Hub
	conn  *ws.Conn
	queue chan []byte
}

// NewClient wraps an accepted connection as a hub subscriber.
func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		queue: make(chan []byte, queueDepth),
	}
}

// Run subscribes the client and serves it until the connection drops or ctx
// is cancelled, then unsubscribes.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.flush(ctx)
	c.drainReads(ctx)
}

// drainReads consumes inbound frames and throws them away. The protocol is
// one-way; reading is still required so close frames are processed. Returns
// when the peer goes away.
func (c *Client) drainReads(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// flush writes queued notifications to the connection, pinging between
// messages so half-open connections get torn down. Exits when the hub closes
// the queue or a write fails.
func (c *Client) flush(ctx context.Context) {
	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case data, ok := <-c.queue:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, data); err != nil {
				return
			}
		case <-keepAlive.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
