package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/goevery/orderrelay/internal/handler"
	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RESTServer exposes the order, payment, user profile and catalog endpoints.
// A nil handler leaves its routes unregistered.
type RESTServer struct {
	logger *zap.Logger

	orderHandler   handler.OrderHandlerInterface
	paymentHandler handler.PaymentHandlerInterface
	userHandler    handler.UserHandlerInterface
	catalogHandler handler.CatalogHandlerInterface
}

func NewRESTServer(
	logger *zap.Logger,
	orderHandler handler.OrderHandlerInterface,
	paymentHandler handler.PaymentHandlerInterface,
	userHandler handler.UserHandlerInterface,
	catalogHandler handler.CatalogHandlerInterface,
) *RESTServer {
	return &RESTServer{
		logger,
		orderHandler,
		paymentHandler,
		userHandler,
		catalogHandler,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *RESTServer) Register(router *mux.Router) {
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	if s.orderHandler != nil {
		api.HandleFunc("/orders", s.createOrder).Methods("POST")
		api.HandleFunc("/orders", s.listOrders).Methods("GET")
		api.HandleFunc("/orders/{id}", s.getOrder).Methods("GET")
		api.HandleFunc("/orders/{id}/status", s.updateOrderStatus).Methods("POST")
	}

	if s.paymentHandler != nil {
		api.HandleFunc("/payment/verify", s.verifyPayment).Methods("POST")
	}

	if s.userHandler != nil {
		api.HandleFunc("/users", s.createProfile).Methods("POST")
	}

	if s.catalogHandler != nil {
		api.HandleFunc("/shops", s.listShops).Methods("GET")
		api.HandleFunc("/shops/{slug}", s.getShop).Methods("GET")
		api.HandleFunc("/shops/{slug}/products", s.listShopProducts).Methods("GET")
		api.HandleFunc("/products/{slug}", s.getProduct).Methods("GET")
		api.HandleFunc("/location/nearby-shops", s.nearbyShops).Methods("GET")
	}
}

func (s *RESTServer) createOrder(w http.ResponseWriter, r *http.Request) {
	var req handler.CreateOrderRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	res, err := s.orderHandler.Create(r.Context(), req)
	s.respond(w, res, err)
}

func (s *RESTServer) listOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	res, err := s.orderHandler.List(r.Context(), handler.ListOrdersRequest{
		CustomerId: query.Get("customer_id"),
		DeliveryId: query.Get("delivery_id"),
	})
	s.respond(w, res, err)
}

func (s *RESTServer) getOrder(w http.ResponseWriter, r *http.Request) {
	res, err := s.orderHandler.Get(r.Context(), mux.Vars(r)["id"])
	s.respond(w, res, err)
}

func (s *RESTServer) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req handler.UpdateOrderStatusRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	req.OrderId = mux.Vars(r)["id"]

	res, err := s.orderHandler.UpdateStatus(r.Context(), req)
	s.respond(w, res, err)
}

func (s *RESTServer) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req handler.VerifyPaymentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	res, err := s.paymentHandler.Verify(r.Context(), req)
	s.respond(w, res, err)
}

func (s *RESTServer) createProfile(w http.ResponseWriter, r *http.Request) {
	var req handler.CreateProfileRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	res, err := s.userHandler.CreateProfile(r.Context(), req)
	s.respond(w, res, err)
}

func (s *RESTServer) listShops(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalogHandler.Shops(r.Context(), r.URL.Query().Get("category"))
	s.respond(w, res, err)
}

func (s *RESTServer) getShop(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalogHandler.Shop(r.Context(), mux.Vars(r)["slug"])
	s.respond(w, res, err)
}

func (s *RESTServer) listShopProducts(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalogHandler.ShopProducts(r.Context(), mux.Vars(r)["slug"])
	s.respond(w, res, err)
}

func (s *RESTServer) getProduct(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalogHandler.Product(r.Context(), mux.Vars(r)["slug"])
	s.respond(w, res, err)
}

func (s *RESTServer) nearbyShops(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// Unparsable coordinates count as missing.
	lat, _ := parseFloatParam(query.Get("lat"))
	lng, _ := parseFloatParam(query.Get("lng"))

	radiusKm, err := parseFloatParam(query.Get("radius"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid radius"})
		return
	}

	req := handler.NearbyShopsRequest{
		Lat:      lat,
		Lng:      lng,
		RadiusKm: radiusKm,
	}

	res, err := s.catalogHandler.NearbyShops(r.Context(), req)
	s.respond(w, res, err)
}

func (s *RESTServer) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}

	return true
}

func (s *RESTServer) respond(w http.ResponseWriter, res any, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

// writeError maps caller mistakes to 400 and hides everything else behind a
// generic 500.
func (s *RESTServer) writeError(w http.ResponseWriter, err error) {
	if ierr.IsClientError(err) {
		var coded ierr.Error
		message := err.Error()
		if errors.As(err, &coded) {
			message = coded.Message
		}

		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
		return
	}

	s.logger.Error("error in rest handler", zap.Error(err))
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}

func (s *RESTServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// parseFloatParam returns nil for an absent parameter and an error for one
// that is not a finite number.
func parseFloatParam(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}

	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil, fmt.Errorf("not a finite number: %s", value)
	}

	return &parsed, nil
}
