package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goevery/orderrelay/internal/catalog"
	"github.com/goevery/orderrelay/internal/handler"
	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/goevery/orderrelay/internal/order"
	"github.com/goevery/orderrelay/internal/payment"
	"github.com/goevery/orderrelay/internal/presence"
	"github.com/goevery/orderrelay/internal/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRESTTestServer(t *testing.T, store order.Store, users user.Store, shopCatalog catalog.Catalog) *httptest.Server {
	verifier := payment.NewSignatureVerifier("key-secret")

	restServer := NewRESTServer(
		zap.NewNop(),
		handler.NewOrderHandler(store),
		handler.NewPaymentHandler(verifier, store),
		handler.NewUserHandler(users),
		handler.NewCatalogHandler(shopCatalog),
	)

	router := mux.NewRouter()
	restServer.Register(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server
}

func post(t *testing.T, url string, body string) (*http.Response, map[string]any) {
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return resp, decoded
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))

	return resp, decoded
}

func TestRESTServer_Orders(t *testing.T) {
	store := order.NewMockStore(t)
	server := newRESTTestServer(t, store, user.NewMockStore(t), catalog.NewMockCatalog(t))

	t.Run("missing required fields", func(t *testing.T) {
		resp, body := post(t, server.URL+"/api/orders", `{"customer_id":"u1"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Missing required fields", body["error"])
	})

	t.Run("invalid body", func(t *testing.T) {
		resp, body := post(t, server.URL+"/api/orders", `{`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid request body", body["error"])
	})

	t.Run("created", func(t *testing.T) {
		store.On("Create", mock.Anything, mock.MatchedBy(func(o order.NewOrder) bool {
			return o.CustomerId == "u1" && len(o.Items) == 1
		})).Return(order.Order{Id: "order-42", Status: order.StatusPending}, nil).Once()

		resp, body := post(t, server.URL+"/api/orders", `{
			"customer_id":"u1",
			"shop_id":"shop-1",
			"delivery_address":"12 MG Road",
			"payment_method":"cod",
			"total_amount":80,
			"items":[{"product_id":"p1","product_name":"Bread","quantity":2,"price":40}]
		}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		created := body["order"].(map[string]any)
		assert.Equal(t, "order-42", created["id"])
	})

	t.Run("store failure is hidden", func(t *testing.T) {
		store.On("Get", mock.Anything, "order-9").Return(order.Order{}, errors.New("connection reset")).Once()

		resp, body := get(t, server.URL+"/api/orders/order-9")

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal server error", body["error"])
	})

	t.Run("unknown order", func(t *testing.T) {
		store.On("Get", mock.Anything, "order-0").
			Return(order.Order{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("Order not found"))).Once()

		resp, body := get(t, server.URL+"/api/orders/order-0")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Order not found", body["error"])
	})

	t.Run("status change", func(t *testing.T) {
		store.On("UpdateStatus", mock.Anything, "order-42", order.StatusDelivered).
			Return(order.Order{Id: "order-42", Status: order.StatusDelivered}, nil).Once()

		resp, body := post(t, server.URL+"/api/orders/order-42/status", `{"status":"delivered"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "delivered", body["order"].(map[string]any)["status"])
	})
}

func TestRESTServer_VerifyPayment(t *testing.T) {
	store := order.NewMockStore(t)
	server := newRESTTestServer(t, store, user.NewMockStore(t), catalog.NewMockCatalog(t))
	signature := payment.NewSignatureVerifier("key-secret").Sign("order_Gx1", "pay_Hy2")

	t.Run("invalid signature", func(t *testing.T) {
		resp, body := post(t, server.URL+"/api/payment/verify",
			`{"razorpay_order_id":"order_Gx1","razorpay_payment_id":"pay_Hy2","razorpay_signature":"00","order_id":"order-42"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid signature", body["error"])
	})

	t.Run("valid signature", func(t *testing.T) {
		store.On("ConfirmPayment", mock.Anything, order.PaymentConfirmation{
			OrderId:          "order-42",
			GatewayOrderId:   "order_Gx1",
			GatewayPaymentId: "pay_Hy2",
		}).Return(nil).Once()

		resp, body := post(t, server.URL+"/api/payment/verify",
			`{"razorpay_order_id":"order_Gx1","razorpay_payment_id":"pay_Hy2","razorpay_signature":"`+signature+`","order_id":"order-42"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
	})
}

func TestRESTServer_CreateProfile(t *testing.T) {
	users := user.NewMockStore(t)
	server := newRESTTestServer(t, order.NewMockStore(t), users, catalog.NewMockCatalog(t))

	t.Run("invalid role", func(t *testing.T) {
		resp, body := post(t, server.URL+"/api/users", `{"id":"7f9c2d","email":"a@example.com","name":"Admin","role":"admin"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid role", body["error"])
	})

	t.Run("duplicate user", func(t *testing.T) {
		users.On("Create", mock.Anything, mock.Anything).
			Return(user.Profile{}, ierr.New(ierr.ErrorCodeFailedPrecondition, errors.New("User already exists"))).Once()

		resp, body := post(t, server.URL+"/api/users", `{"id":"7f9c2d","email":"d7@example.com","name":"Ravi","role":"delivery"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "User already exists", body["error"])
	})

	t.Run("created", func(t *testing.T) {
		users.On("Create", mock.Anything, user.NewProfile{
			Id:    "7f9c2d",
			Email: "d7@example.com",
			Name:  "Ravi",
			Role:  presence.RoleDelivery,
		}).Return(user.Profile{Id: "7f9c2d", Role: presence.RoleDelivery}, nil).Once()

		resp, body := post(t, server.URL+"/api/users", `{"id":"7f9c2d","email":"d7@example.com","name":"Ravi","role":"delivery"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "delivery", body["user"].(map[string]any)["role"])
	})
}

func TestRESTServer_NearbyShops(t *testing.T) {
	shopCatalog := catalog.NewMockCatalog(t)
	server := newRESTTestServer(t, order.NewMockStore(t), user.NewMockStore(t), shopCatalog)

	t.Run("missing coordinates", func(t *testing.T) {
		resp, body := get(t, server.URL+"/api/location/nearby-shops?lat=12.97")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Missing latitude or longitude", body["error"])
	})

	t.Run("malformed radius", func(t *testing.T) {
		for _, radius := range []string{"abc", "NaN", "Inf"} {
			resp, body := get(t, server.URL+"/api/location/nearby-shops?lat=12.97&lng=77.59&radius="+radius)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, radius)
			assert.Equal(t, "Invalid radius", body["error"], radius)
		}
	})

	t.Run("malformed latitude counts as missing", func(t *testing.T) {
		resp, body := get(t, server.URL+"/api/location/nearby-shops?lat=north&lng=77.59")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Missing latitude or longitude", body["error"])
	})

	t.Run("sorted by distance", func(t *testing.T) {
		shopCatalog.On("ListShops", mock.Anything, catalog.ShopFilter{ActiveOnly: true}).Return([]catalog.Shop{
			{Slug: "mid", IsActive: true, Latitude: 12.99, Longitude: 77.60},
			{Slug: "close", IsActive: true, Latitude: 12.975, Longitude: 77.595},
		}, nil).Once()

		resp, body := get(t, server.URL+"/api/location/nearby-shops?lat=12.9716&lng=77.5946&radius=10")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		shops := body["shops"].([]any)
		require.Len(t, shops, 2)
		assert.Equal(t, "close", shops[0].(map[string]any)["slug"])
		assert.Equal(t, "mid", shops[1].(map[string]any)["slug"])
	})
}

func TestRESTServer_Healthz(t *testing.T) {
	server := newRESTTestServer(t, order.NewMockStore(t), user.NewMockStore(t), catalog.NewMockCatalog(t))

	resp, body := get(t, server.URL+"/healthz")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestOriginChecker_Middleware(t *testing.T) {
	originChecker := NewOriginChecker("http://localhost:3000")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := originChecker.Middleware(next)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("foreign origin gets no cors headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/shops", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
