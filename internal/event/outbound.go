package event

import (
	"encoding/json"
	"time"
)

// timestampLayout matches what browsers produce with Date.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Outbound is a server-originated frame. It is encoded once and the same bytes
// are queued on every recipient connection.
type Outbound struct {
	Event Kind `json:"event"`
	Data  any  `json:"data"`
}

func (o Outbound) Encode() ([]byte, error) {
	return json.Marshal(o)
}

type OrderUpdated struct {
	OrderId   string `json:"orderId"`
	Status    string `json:"status"`
	UpdatedBy string `json:"updatedBy"`
	Timestamp string `json:"timestamp"`
}

type LocationPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type LocationUpdated struct {
	OrderId   string        `json:"orderId"`
	Location  LocationPoint `json:"location"`
	Timestamp string        `json:"timestamp"`
}

type ChatRelayed struct {
	OrderId   string `json:"orderId"`
	Message   string `json:"message"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
}

type DeliveryAssigned struct {
	OrderId   string `json:"orderId"`
	Timestamp string `json:"timestamp"`
}

func NewOrderUpdated(e OrderUpdate, now time.Time) Outbound {
	return Outbound{
		Event: KindOrderUpdate,
		Data: OrderUpdated{
			OrderId:   e.OrderId,
			Status:    e.Status,
			UpdatedBy: e.UpdatedBy,
			Timestamp: Timestamp(now),
		},
	}
}

func NewLocationUpdated(e DeliveryLocation, now time.Time) Outbound {
	return Outbound{
		Event: KindDeliveryLocation,
		Data: LocationUpdated{
			OrderId:   e.OrderId,
			Location:  LocationPoint{Lat: *e.Location.Lat, Lng: *e.Location.Lng},
			Timestamp: Timestamp(now),
		},
	}
}

func NewChatRelayed(e ChatMessage, now time.Time) Outbound {
	return Outbound{
		Event: KindChatMessage,
		Data: ChatRelayed{
			OrderId:   e.OrderId,
			Message:   e.Message,
			From:      e.From,
			Timestamp: Timestamp(now),
		},
	}
}

func NewDeliveryAssigned(e DeliveryAssign, now time.Time) Outbound {
	return Outbound{
		Event: KindDeliveryAssigned,
		Data: DeliveryAssigned{
			OrderId:   e.OrderId,
			Timestamp: Timestamp(now),
		},
	}
}
