// Package relay holds live connections and delivers encoded frames to them.
package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/goevery/orderrelay/internal/presence"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendQueueFull    = errors.New("connection send queue is full")
)

type Identity struct {
	UserId string
	Role   presence.Role
}

// Connection is the transport-independent half of a client connection. The
// transport drains Outbox and closes the socket once Done is closed.
type Connection struct {
	Id string

	send chan []byte
	done chan struct{}

	mu       sync.RWMutex
	closed   bool
	drops    int
	identity Identity
}

func NewConnection(id string, bufferSize int) *Connection {
	return &Connection{
		Id:   id,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

func (c *Connection) Outbox() <-chan []byte {
	return c.send
}

func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Deliver queues payload without blocking. A full queue drops the payload and
// counts towards ConsecutiveDrops; a successful enqueue resets the count.
func (c *Connection) Deliver(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- payload:
		c.drops = 0
		return nil
	default:
		c.drops++
		return ErrSendQueueFull
	}
}

func (c *Connection) ConsecutiveDrops() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.drops
}

// Close marks the connection closed and reports whether this call did it.
// The send channel is never closed, so a racing Deliver cannot panic.
func (c *Connection) Close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	c.closed = true
	close(c.done)

	return true
}

func (c *Connection) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closed
}

func (c *Connection) SetIdentity(identity Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.identity = identity
}

// Identity returns the zero Identity until the connection authenticates.
func (c *Connection) Identity() Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.identity
}

type contextKey string

const connectionKey contextKey = "connection"

func WithConnection(ctx context.Context, conn *Connection) context.Context {
	return context.WithValue(ctx, connectionKey, conn)
}

func ConnectionFromContext(ctx context.Context) (*Connection, bool) {
	conn, ok := ctx.Value(connectionKey).(*Connection)

	return conn, ok
}
