package relay

import (
	"errors"
	"hash/fnv"
	"sync"

	"github.com/goevery/orderrelay/internal/event"
	"github.com/goevery/orderrelay/internal/room"
	"go.uber.org/zap"
)

const (
	orderStripes = 64

	// maxConsecutiveDrops is how many frames in a row a connection may miss
	// because its queue is full before it is closed as a slow consumer.
	maxConsecutiveDrops = 16
)

type Publisher interface {
	Broadcast(orderId string, message event.Outbound)
	Unicast(connectionId string, message event.Outbound) bool
}

// Fanout delivers outbound frames to room members or to a single connection.
// Frames for the same order are queued under one stripe lock so every member
// observes them in the same order; table locks are never held while queuing.
type Fanout struct {
	logger    *zap.Logger
	rooms     room.Table
	directory *Directory

	stripes [orderStripes]sync.Mutex
}

func NewFanout(logger *zap.Logger, rooms room.Table, directory *Directory) *Fanout {
	return &Fanout{
		logger:    logger,
		rooms:     rooms,
		directory: directory,
	}
}

func (f *Fanout) Broadcast(orderId string, message event.Outbound) {
	payload, err := message.Encode()
	if err != nil {
		f.logger.Error("failed to encode outbound frame",
			zap.String("event", string(message.Event)),
			zap.Error(err))
		return
	}

	stripe := f.stripe(orderId)
	stripe.Lock()

	var slow []*Connection
	for _, connectionId := range f.rooms.Members(orderId) {
		connection, ok := f.directory.Get(connectionId)
		if !ok {
			continue
		}

		if f.deliver(connection, payload, message.Event) {
			continue
		}

		slow = append(slow, connection)
	}

	stripe.Unlock()

	for _, connection := range slow {
		connection.Close()
	}
}

func (f *Fanout) Unicast(connectionId string, message event.Outbound) bool {
	connection, ok := f.directory.Get(connectionId)
	if !ok {
		return false
	}

	payload, err := message.Encode()
	if err != nil {
		f.logger.Error("failed to encode outbound frame",
			zap.String("event", string(message.Event)),
			zap.Error(err))
		return false
	}

	err = connection.Deliver(payload)
	if err == nil {
		return true
	}

	if !f.keep(connection, err, message.Event) {
		connection.Close()
	}

	return false
}

// deliver reports false only when the connection should be closed as a slow
// consumer. Connections that are already closing are skipped quietly.
func (f *Fanout) deliver(connection *Connection, payload []byte, kind event.Kind) bool {
	err := connection.Deliver(payload)
	if err == nil {
		return true
	}

	return f.keep(connection, err, kind)
}

// keep decides what happens to a connection whose delivery failed. A full
// queue drops only the frame until the connection has missed
// maxConsecutiveDrops frames in a row.
func (f *Fanout) keep(connection *Connection, err error, kind event.Kind) bool {
	if errors.Is(err, ErrConnectionClosed) {
		return true
	}

	drops := connection.ConsecutiveDrops()
	if drops < maxConsecutiveDrops {
		f.logger.Debug("connection send queue is full, dropping frame",
			zap.String("connectionId", connection.Id),
			zap.String("event", string(kind)),
			zap.Int("consecutiveDrops", drops))

		return true
	}

	f.logger.Warn("connection keeps missing frames, closing connection",
		zap.String("connectionId", connection.Id),
		zap.Int("consecutiveDrops", drops))

	return false
}

func (f *Fanout) stripe(orderId string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderId))

	return &f.stripes[h.Sum32()%orderStripes]
}
