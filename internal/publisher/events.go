package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
)

const (
	TopicOrders = "storefront.orders"

	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"

	producerName = "storefront"
)

// Event is one domain event; Key orders events of the same aggregate.
type Event struct {
	Type    string
	Key     string
	Payload any
}

// Publisher delivers events best-effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID       string               `json:"order_id"`
	UserID        string               `json:"user_id"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Status        domain.OrderStatus   `json:"status"`
	ItemCount     int                  `json:"item_count"`
	TotalMinor    domain.Money         `json:"total_minor"`
}

type OrderStatusChangedPayload struct {
	OrderID string             `json:"order_id"`
	UserID  string             `json:"user_id"`
	Status  domain.OrderStatus `json:"status"`
}

func OrderPlaced(o domain.Order) Event {
	return Event{
		Type: EventOrderPlaced,
		Key:  o.ID,
		Payload: OrderPlacedPayload{
			OrderID:       o.ID,
			UserID:        o.UserID,
			PaymentMethod: o.PaymentMethod,
			Status:        o.Status,
			ItemCount:     o.ItemCount(),
			TotalMinor:    o.Total,
		},
	}
}

func OrderStatusChanged(o domain.Order) Event {
	return Event{
		Type:    EventOrderStatusChanged,
		Key:     o.ID,
		Payload: OrderStatusChangedPayload{OrderID: o.ID, UserID: o.UserID, Status: o.Status},
	}
}

func newEnvelope(e Event, now time.Time) (Envelope, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     e.Type,
		EventVersion:  1,
		OccurredAt:    now.UTC(),
		Producer:      producerName,
		CorrelationID: e.Key,
		Payload:       payload,
	}, nil
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
