// Package event defines the frames exchanged over a relay connection. Inbound
// frames are decoded once into one of a closed set of typed events; handlers
// never see raw payloads.
package event

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/goevery/orderrelay/internal/presence"
)

type Kind string

const (
	KindAuthenticate     Kind = "authenticate"
	KindJoinOrder        Kind = "join-order"
	KindOrderUpdate      Kind = "order:update"
	KindDeliveryLocation Kind = "delivery:location"
	KindChatMessage      Kind = "chat:message"
	KindDeliveryAssign   Kind = "delivery:assign"
	KindDeliveryAssigned Kind = "delivery:assigned"
)

// Frame is the envelope of every message on the wire, in both directions.
type Frame struct {
	Event Kind            `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Event interface {
	Kind() Kind
}

type Authenticate struct {
	UserId string        `json:"userId"`
	Role   presence.Role `json:"role"`
	Token  string        `json:"token,omitempty"`
}

type JoinOrder struct {
	OrderId string
}

type OrderUpdate struct {
	OrderId   string `json:"orderId"`
	Status    string `json:"status"`
	UpdatedBy string `json:"updatedBy"`
}

type Location struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type DeliveryLocation struct {
	OrderId  string    `json:"orderId"`
	Location *Location `json:"location"`
}

type ChatMessage struct {
	OrderId string `json:"orderId"`
	Message string `json:"message"`
	From    string `json:"from"`
}

type DeliveryAssign struct {
	DeliveryId string `json:"deliveryId"`
	OrderId    string `json:"orderId"`
}

func (Authenticate) Kind() Kind     { return KindAuthenticate }
func (JoinOrder) Kind() Kind        { return KindJoinOrder }
func (OrderUpdate) Kind() Kind      { return KindOrderUpdate }
func (DeliveryLocation) Kind() Kind { return KindDeliveryLocation }
func (ChatMessage) Kind() Kind      { return KindChatMessage }
func (DeliveryAssign) Kind() Kind   { return KindDeliveryAssign }

// Decode parses one inbound text frame. Every error it returns is an
// ierr.Error with code InvalidArgument or NotFound.
func Decode(raw []byte) (Event, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, ierr.New(ierr.ErrorCodeInvalidArgument, fmt.Errorf("invalid frame: %w", err))
	}

	if frame.Event == "" {
		return nil, ierr.Errorf(ierr.ErrorCodeInvalidArgument, "missing event name")
	}

	if len(frame.Data) == 0 || string(frame.Data) == "null" {
		return nil, ierr.Errorf(ierr.ErrorCodeInvalidArgument, "missing data for "+string(frame.Event))
	}

	switch frame.Event {
	case KindAuthenticate:
		var e Authenticate
		if err := decodeData(frame.Data, &e); err != nil {
			return nil, err
		}
		if e.UserId == "" {
			return nil, missing(frame.Event, "userId")
		}
		if !e.Role.Valid() {
			return nil, ierr.Errorf(ierr.ErrorCodeInvalidArgument, "invalid role: "+string(e.Role))
		}
		return e, nil

	case KindJoinOrder:
		var orderId string
		if err := decodeData(frame.Data, &orderId); err != nil {
			return nil, err
		}
		if orderId == "" {
			return nil, missing(frame.Event, "orderId")
		}
		return JoinOrder{OrderId: orderId}, nil

	case KindOrderUpdate:
		var e OrderUpdate
		if err := decodeData(frame.Data, &e); err != nil {
			return nil, err
		}
		switch {
		case e.OrderId == "":
			return nil, missing(frame.Event, "orderId")
		case e.Status == "":
			return nil, missing(frame.Event, "status")
		case e.UpdatedBy == "":
			return nil, missing(frame.Event, "updatedBy")
		}
		return e, nil

	case KindDeliveryLocation:
		var e DeliveryLocation
		if err := decodeData(frame.Data, &e); err != nil {
			return nil, err
		}
		switch {
		case e.OrderId == "":
			return nil, missing(frame.Event, "orderId")
		case e.Location == nil:
			return nil, missing(frame.Event, "location")
		case e.Location.Lat == nil:
			return nil, missing(frame.Event, "location.lat")
		case e.Location.Lng == nil:
			return nil, missing(frame.Event, "location.lng")
		}
		return e, nil

	case KindChatMessage:
		var e ChatMessage
		if err := decodeData(frame.Data, &e); err != nil {
			return nil, err
		}
		switch {
		case e.OrderId == "":
			return nil, missing(frame.Event, "orderId")
		case e.Message == "":
			return nil, missing(frame.Event, "message")
		case e.From == "":
			return nil, missing(frame.Event, "from")
		}
		return e, nil

	case KindDeliveryAssign:
		var e DeliveryAssign
		if err := decodeData(frame.Data, &e); err != nil {
			return nil, err
		}
		switch {
		case e.DeliveryId == "":
			return nil, missing(frame.Event, "deliveryId")
		case e.OrderId == "":
			return nil, missing(frame.Event, "orderId")
		}
		return e, nil

	default:
		return nil, ierr.New(ierr.ErrorCodeNotFound, errors.New("unknown event: "+string(frame.Event)))
	}
}

func decodeData(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return ierr.New(ierr.ErrorCodeInvalidArgument, fmt.Errorf("invalid data: %w", err))
	}

	return nil
}

func missing(kind Kind, field string) error {
	return ierr.Errorf(ierr.ErrorCodeInvalidArgument, string(kind)+": missing "+field)
}
