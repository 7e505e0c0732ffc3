package handler

import (
	"context"
	"errors"

	"github.com/goevery/orderrelay/internal/event"
	"github.com/goevery/orderrelay/internal/relay"
	"github.com/goevery/orderrelay/internal/room"
	"go.uber.org/zap"
)

type JoinOrderHandlerInterface interface {
	Handle(ctx context.Context, e event.JoinOrder) error
}

// JoinOrderHandler subscribes the calling connection to an order room. Knowing
// the order id is the only requirement.
type JoinOrderHandler struct {
	logger *zap.Logger
	rooms  room.Table
}

func NewJoinOrderHandler(logger *zap.Logger, rooms room.Table) *JoinOrderHandler {
	return &JoinOrderHandler{
		logger,
		rooms,
	}
}

func (h *JoinOrderHandler) Handle(ctx context.Context, e event.JoinOrder) error {
	connection, ok := relay.ConnectionFromContext(ctx)
	if !ok {
		return errors.New("connection not found in context")
	}

	h.rooms.Join(e.OrderId, connection.Id)

	h.logger.Debug("connection joined order",
		zap.String("connectionId", connection.Id),
		zap.String("orderId", e.OrderId))

	return nil
}
