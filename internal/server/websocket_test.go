package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goevery/orderrelay/internal/event"
	"github.com/goevery/orderrelay/internal/handler"
	"github.com/goevery/orderrelay/internal/presence"
	"github.com/goevery/orderrelay/internal/relay"
	"github.com/goevery/orderrelay/internal/room"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type relayFixture struct {
	url       string
	registry  *presence.InMemoryRegistry
	rooms     *room.InMemoryTable
	directory *relay.Directory
}

func newRelayFixture(t *testing.T) relayFixture {
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

	originChecker := NewOriginChecker("http://localhost:3000")
	upgrader := &websocket.Upgrader{CheckOrigin: originChecker.Check}

	wsServer := NewWebSocketServer(logger, upgrader, ConnectionSettings{
		SendBufferSize: 16,
		PingInterval:   25 * time.Second,
	}, directory, registry, rooms, router)

	mainRouter := mux.NewRouter()
	wsServer.Register(mainRouter)

	server := httptest.NewServer(mainRouter)
	t.Cleanup(server.Close)

	u, _ := url.Parse(server.URL)
	u.Scheme = "ws"
	u.Path = "/socket"

	return relayFixture{
		url:       u.String(),
		registry:  registry,
		rooms:     rooms,
		directory: directory,
	}
}

func dial(t *testing.T, rawURL string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(rawURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

type received struct {
	Event event.Kind      `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func receive(t *testing.T, conn *websocket.Conn) received {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var frame received
	require.NoError(t, conn.ReadJSON(&frame))

	return frame
}

func assertSilent(t *testing.T, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))

	_, payload, err := conn.ReadMessage()
	assert.Error(t, err, "unexpected frame: %s", payload)
}

func TestWebSocketServer_OrderScenario(t *testing.T) {
	fixture := newRelayFixture(t)

	customer := dial(t, fixture.url)
	courier := dial(t, fixture.url)

	send(t, customer, `{"event":"authenticate","data":{"userId":"u1","role":"customer"}}`)
	send(t, customer, `{"event":"join-order","data":"order-42"}`)
	send(t, courier, `{"event":"authenticate","data":{"userId":"d7","role":"delivery"}}`)

	assert.Eventually(t, func() bool {
		_, courierOnline := fixture.registry.ResolveCourier("d7")
		return courierOnline && len(fixture.rooms.Members("order-42")) == 1
	}, time.Second, 10*time.Millisecond)

	send(t, customer, `{"event":"delivery:assign","data":{"deliveryId":"d7","orderId":"order-42"}}`)

	assigned := receive(t, courier)
	assert.Equal(t, event.KindDeliveryAssigned, assigned.Event)

	var assignedData event.DeliveryAssigned
	require.NoError(t, json.Unmarshal(assigned.Data, &assignedData))
	assert.Equal(t, "order-42", assignedData.OrderId)
	assert.NotEmpty(t, assignedData.Timestamp)

	send(t, customer, `{"event":"chat:message","data":{"orderId":"order-42","message":"hi","from":"u1"}}`)

	echoed := receive(t, customer)
	assert.Equal(t, event.KindChatMessage, echoed.Event)

	var chat event.ChatRelayed
	require.NoError(t, json.Unmarshal(echoed.Data, &chat))
	assert.Equal(t, "order-42", chat.OrderId)
	assert.Equal(t, "hi", chat.Message)
	assert.Equal(t, "u1", chat.From)

	assertSilent(t, courier)
}

func TestWebSocketServer_OrderUpdateReachesEveryMember(t *testing.T) {
	fixture := newRelayFixture(t)

	customer := dial(t, fixture.url)
	merchant := dial(t, fixture.url)

	send(t, customer, `{"event":"join-order","data":"order-7"}`)
	send(t, merchant, `{"event":"join-order","data":"order-7"}`)

	assert.Eventually(t, func() bool {
		return len(fixture.rooms.Members("order-7")) == 2
	}, time.Second, 10*time.Millisecond)

	send(t, merchant, `{"event":"order:update","data":{"orderId":"order-7","status":"preparing","updatedBy":"m1"}}`)

	for _, conn := range []*websocket.Conn{customer, merchant} {
		frame := receive(t, conn)
		assert.Equal(t, event.KindOrderUpdate, frame.Event)

		var updated event.OrderUpdated
		require.NoError(t, json.Unmarshal(frame.Data, &updated))
		assert.Equal(t, "preparing", updated.Status)
		assert.Equal(t, "m1", updated.UpdatedBy)
	}
}

func TestWebSocketServer_MalformedFramesAreDropped(t *testing.T) {
	fixture := newRelayFixture(t)

	conn := dial(t, fixture.url)

	send(t, conn, `not json`)
	send(t, conn, `{"event":"teleport","data":{}}`)
	send(t, conn, `{"event":"chat:message","data":{"orderId":"order-42"}}`)
	send(t, conn, `{"event":"join-order","data":"order-42"}`)
	send(t, conn, `{"event":"chat:message","data":{"orderId":"order-42","message":"still here","from":"u1"}}`)

	frame := receive(t, conn)
	assert.Equal(t, event.KindChatMessage, frame.Event)

	var chat event.ChatRelayed
	require.NoError(t, json.Unmarshal(frame.Data, &chat))
	assert.Equal(t, "still here", chat.Message)
}

func TestWebSocketServer_DisconnectCleansUp(t *testing.T) {
	fixture := newRelayFixture(t)

	conn := dial(t, fixture.url)

	send(t, conn, `{"event":"authenticate","data":{"userId":"d7","role":"delivery"}}`)
	send(t, conn, `{"event":"join-order","data":"order-42"}`)
	send(t, conn, `{"event":"join-order","data":"order-43"}`)

	assert.Eventually(t, func() bool {
		return len(fixture.rooms.Members("order-43")) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		_, resolvable := fixture.registry.Resolve("d7")
		_, courier := fixture.registry.ResolveCourier("d7")

		return !resolvable && !courier &&
			len(fixture.rooms.Members("order-42")) == 0 &&
			len(fixture.rooms.Members("order-43")) == 0 &&
			fixture.directory.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestWebSocketServer_Origin(t *testing.T) {
	fixture := newRelayFixture(t)

	t.Run("foreign origin is refused", func(t *testing.T) {
		header := http.Header{}
		header.Set("Origin", "http://evil.example")

		_, resp, err := websocket.DefaultDialer.Dial(fixture.url, header)

		assert.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("client origin is accepted", func(t *testing.T) {
		header := http.Header{}
		header.Set("Origin", "http://localhost:3000/")

		conn, _, err := websocket.DefaultDialer.Dial(fixture.url, header)

		require.NoError(t, err)
		_ = conn.Close()
	})
}
