package server

import (
	"context"
	"errors"

	"github.com/goevery/orderrelay/internal/event"
	"github.com/goevery/orderrelay/internal/handler"
	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/goevery/orderrelay/internal/relay"
	"go.uber.org/zap"
)

// Router decodes inbound frames and hands each typed event to its handler.
// The protocol has no replies: rejected events are logged and dropped.
type Router struct {
	logger *zap.Logger

	authenticateHandler handler.AuthenticateHandlerInterface
	joinOrderHandler    handler.JoinOrderHandlerInterface
	trackingHandler     handler.TrackingHandlerInterface
	assignHandler       handler.AssignHandlerInterface
}

func NewRouter(
	logger *zap.Logger,
	authenticateHandler handler.AuthenticateHandlerInterface,
	joinOrderHandler handler.JoinOrderHandlerInterface,
	trackingHandler handler.TrackingHandlerInterface,
	assignHandler handler.AssignHandlerInterface,
) *Router {
	return &Router{
		logger,
		authenticateHandler,
		joinOrderHandler,
		trackingHandler,
		assignHandler,
	}
}

func (r *Router) Route(ctx context.Context, frame []byte) {
	e, err := event.Decode(frame)
	if err != nil {
		r.logDropped(ctx, "", err)
		return
	}

	if err := r.Handle(ctx, e); err != nil {
		r.logDropped(ctx, e.Kind(), err)
	}
}

func (r *Router) Handle(ctx context.Context, e event.Event) error {
	switch e := e.(type) {
	case event.Authenticate:
		return r.authenticateHandler.Handle(ctx, e)
	case event.JoinOrder:
		return r.joinOrderHandler.Handle(ctx, e)
	case event.OrderUpdate:
		return r.trackingHandler.HandleOrderUpdate(ctx, e)
	case event.DeliveryLocation:
		return r.trackingHandler.HandleDeliveryLocation(ctx, e)
	case event.ChatMessage:
		return r.trackingHandler.HandleChatMessage(ctx, e)
	case event.DeliveryAssign:
		return r.assignHandler.Handle(ctx, e)
	default:
		return ierr.New(ierr.ErrorCodeNotFound, errors.New("no handler for event: "+string(e.Kind())))
	}
}

func (r *Router) logDropped(ctx context.Context, kind event.Kind, err error) {
	fields := []zap.Field{
		zap.String("event", string(kind)),
		zap.Error(err),
	}

	if connection, ok := relay.ConnectionFromContext(ctx); ok {
		fields = append(fields, zap.String("connectionId", connection.Id))
	}

	if ierr.IsClientError(err) {
		r.logger.Debug("dropping event", fields...)
		return
	}

	r.logger.Error("error in event handler", fields...)
}
