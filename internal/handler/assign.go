package handler

import (
	"context"
	"time"

	"github.com/goevery/orderrelay/internal/event"
	"github.com/goevery/orderrelay/internal/presence"
	"github.com/goevery/orderrelay/internal/relay"
	"go.uber.org/zap"
)

type AssignHandlerInterface interface {
	Handle(ctx context.Context, e event.DeliveryAssign) error
}

type AssignHandler struct {
	logger    *zap.Logger
	registry  presence.Registry
	publisher relay.Publisher
}

func NewAssignHandler(
	logger *zap.Logger,
	registry presence.Registry,
	publisher relay.Publisher,
) *AssignHandler {
	return &AssignHandler{
		logger,
		registry,
		publisher,
	}
}

// Handle notifies the courier's live connection. An offline courier is not an
// error: the assignment is dropped and the assigning party is not told.
func (h *AssignHandler) Handle(ctx context.Context, e event.DeliveryAssign) error {
	connectionId, ok := h.registry.ResolveCourier(e.DeliveryId)
	if !ok {
		h.logger.Debug("courier not connected, dropping assignment",
			zap.String("deliveryId", e.DeliveryId),
			zap.String("orderId", e.OrderId))

		return nil
	}

	delivered := h.publisher.Unicast(connectionId, event.NewDeliveryAssigned(e, time.Now()))
	if delivered {
		h.logger.Info("order assigned to courier",
			zap.String("orderId", e.OrderId),
			zap.String("deliveryId", e.DeliveryId))
	}

	return nil
}
