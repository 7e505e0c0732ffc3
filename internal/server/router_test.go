package server

import (
	"context"
	"testing"

	"github.com/goevery/orderrelay/internal/event"
	"github.com/goevery/orderrelay/internal/handler"
	"github.com/goevery/orderrelay/internal/presence"
	"github.com/goevery/orderrelay/internal/relay"
	"github.com/goevery/orderrelay/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter() (*Router, *presence.InMemoryRegistry, *room.InMemoryTable, *relay.Directory) {
	logger := zap.NewNop()
	registry := presence.NewInMemoryRegistry(logger)
	rooms := room.NewInMemoryTable()
	directory := relay.NewDirectory()
	fanout := relay.NewFanout(logger, rooms, directory)

	router := NewRouter(
		logger,
		handler.NewAuthenticateHandler(logger, registry, nil),
		handler.NewJoinOrderHandler(logger, rooms),
		handler.NewTrackingHandler(fanout),
		handler.NewAssignHandler(logger, registry, fanout),
	)

	return router, registry, rooms, directory
}

func TestRouter_Route(t *testing.T) {
	t.Run("authenticate and join", func(t *testing.T) {
		router, registry, rooms, directory := newTestRouter()
		connection := relay.NewConnection("c1", 4)
		directory.Add(connection)
		ctx := relay.WithConnection(context.Background(), connection)

		router.Route(ctx, []byte(`{"event":"authenticate","data":{"userId":"m1","role":"merchant"}}`))
		router.Route(ctx, []byte(`{"event":"join-order","data":"order-42"}`))

		connectionId, ok := registry.Resolve("m1")
		assert.True(t, ok)
		assert.Equal(t, "c1", connectionId)
		assert.Equal(t, []string{"c1"}, rooms.Members("order-42"))
	})

	t.Run("events before authenticate are still relayed", func(t *testing.T) {
		router, _, rooms, directory := newTestRouter()
		connection := relay.NewConnection("c1", 4)
		directory.Add(connection)
		ctx := relay.WithConnection(context.Background(), connection)
		rooms.Join("order-42", "c1")

		router.Route(ctx, []byte(`{"event":"delivery:location","data":{"orderId":"order-42","location":{"lat":12.9,"lng":77.6}}}`))

		select {
		case payload := <-connection.Outbox():
			assert.Contains(t, string(payload), `"event":"delivery:location"`)
		default:
			t.Fatal("expected a location frame")
		}
	})

	t.Run("malformed frames mutate nothing", func(t *testing.T) {
		router, registry, rooms, _ := newTestRouter()
		ctx := relay.WithConnection(context.Background(), relay.NewConnection("c1", 4))

		router.Route(ctx, []byte(`{"event":"authenticate","data":{"userId":"u1","role":"admin"}}`))
		router.Route(ctx, []byte(`{"event":"join-order","data":""}`))
		router.Route(ctx, []byte(`{"event":"join-order","data":{"orderId":"order-42"}}`))

		_, ok := registry.Resolve("u1")
		assert.False(t, ok)
		assert.Empty(t, rooms.Members("order-42"))
	})
}

func TestRouter_Handle(t *testing.T) {
	router, _, _, _ := newTestRouter()

	err := router.Handle(context.Background(), event.JoinOrder{OrderId: "order-42"})
	require.Error(t, err, "join without a connection in context")

	err = router.Handle(context.Background(), event.DeliveryAssign{DeliveryId: "d7", OrderId: "order-42"})
	assert.NoError(t, err)
}
