package handler

import (
	"context"
	"errors"

	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/goevery/orderrelay/internal/order"
)

type CreateOrderItem struct {
	ProductId   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type CreateOrderRequest struct {
	CustomerId      string              `json:"customer_id"`
	ShopId          string              `json:"shop_id"`
	DeliveryAddress string              `json:"delivery_address"`
	DeliveryLat     *float64            `json:"delivery_lat"`
	DeliveryLng     *float64            `json:"delivery_lng"`
	PaymentMethod   order.PaymentMethod `json:"payment_method"`
	TotalAmount     float64             `json:"total_amount"`
	Items           []CreateOrderItem   `json:"items"`
}

type OrderResponse struct {
	Order order.Order `json:"order"`
}

type ListOrdersRequest struct {
	CustomerId string
	DeliveryId string
}

type ListOrdersResponse struct {
	Orders []order.Order `json:"orders"`
}

type UpdateOrderStatusRequest struct {
	OrderId string       `json:"-"`
	Status  order.Status `json:"status"`
}

type OrderHandlerInterface interface {
	Create(ctx context.Context, req CreateOrderRequest) (OrderResponse, error)
	List(ctx context.Context, req ListOrdersRequest) (ListOrdersResponse, error)
	Get(ctx context.Context, orderId string) (OrderResponse, error)
	UpdateStatus(ctx context.Context, req UpdateOrderStatusRequest) (OrderResponse, error)
}

type OrderHandler struct {
	store order.Store
}

func NewOrderHandler(store order.Store) *OrderHandler {
	return &OrderHandler{
		store,
	}
}

func (h *OrderHandler) Create(ctx context.Context, req CreateOrderRequest) (OrderResponse, error) {
	if req.CustomerId == "" || req.ShopId == "" || req.DeliveryAddress == "" {
		return OrderResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Missing required fields"))
	}

	if req.PaymentMethod == "" {
		req.PaymentMethod = order.PaymentMethodCOD
	}

	if !req.PaymentMethod.Valid() {
		return OrderResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Invalid payment method"))
	}

	if req.TotalAmount < 0 {
		return OrderResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Invalid total amount"))
	}

	items := make([]order.NewItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductId == "" || item.Quantity <= 0 {
			return OrderResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Invalid order item"))
		}

		items = append(items, order.NewItem{
			ProductId:   item.ProductId,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	created, err := h.store.Create(ctx, order.NewOrder{
		CustomerId:      req.CustomerId,
		ShopId:          req.ShopId,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryLat:     req.DeliveryLat,
		DeliveryLng:     req.DeliveryLng,
		PaymentMethod:   req.PaymentMethod,
		TotalAmount:     req.TotalAmount,
		Items:           items,
	})
	if err != nil {
		return OrderResponse{}, err
	}

	return OrderResponse{Order: created}, nil
}

func (h *OrderHandler) List(ctx context.Context, req ListOrdersRequest) (ListOrdersResponse, error) {
	orders, err := h.store.List(ctx, order.Filter{
		CustomerId: req.CustomerId,
		DeliveryId: req.DeliveryId,
	})
	if err != nil {
		return ListOrdersResponse{}, err
	}

	return ListOrdersResponse{Orders: orders}, nil
}

func (h *OrderHandler) Get(ctx context.Context, orderId string) (OrderResponse, error) {
	if orderId == "" {
		return OrderResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Missing order id"))
	}

	found, err := h.store.Get(ctx, orderId)
	if err != nil {
		return OrderResponse{}, err
	}

	return OrderResponse{Order: found}, nil
}

func (h *OrderHandler) UpdateStatus(ctx context.Context, req UpdateOrderStatusRequest) (OrderResponse, error) {
	if req.OrderId == "" {
		return OrderResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Missing order id"))
	}

	if !req.Status.Valid() {
		return OrderResponse{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("Invalid status"))
	}

	updated, err := h.store.UpdateStatus(ctx, req.OrderId, req.Status)
	if err != nil {
		return OrderResponse{}, err
	}

	return OrderResponse{Order: updated}, nil
}
