package handler

import (
	"context"
	"time"

	"github.com/goevery/orderrelay/internal/event"
	"github.com/goevery/orderrelay/internal/relay"
)

type TrackingHandlerInterface interface {
	HandleOrderUpdate(ctx context.Context, e event.OrderUpdate) error
	HandleDeliveryLocation(ctx context.Context, e event.DeliveryLocation) error
	HandleChatMessage(ctx context.Context, e event.ChatMessage) error
}

// TrackingHandler relays order room traffic to every member of the room,
// sender included. Nothing is stored and nothing is acknowledged.
type TrackingHandler struct {
	publisher relay.Publisher
}

func NewTrackingHandler(publisher relay.Publisher) *TrackingHandler {
	return &TrackingHandler{
		publisher,
	}
}

func (h *TrackingHandler) HandleOrderUpdate(ctx context.Context, e event.OrderUpdate) error {
	h.publisher.Broadcast(e.OrderId, event.NewOrderUpdated(e, time.Now()))

	return nil
}

// HandleDeliveryLocation fans out every ping; couriers send these
// periodically and none are coalesced.
func (h *TrackingHandler) HandleDeliveryLocation(ctx context.Context, e event.DeliveryLocation) error {
	h.publisher.Broadcast(e.OrderId, event.NewLocationUpdated(e, time.Now()))

	return nil
}

func (h *TrackingHandler) HandleChatMessage(ctx context.Context, e event.ChatMessage) error {
	h.publisher.Broadcast(e.OrderId, event.NewChatRelayed(e, time.Now()))

	return nil
}
