package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is immutable once created, apart from Status.
type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Items         []CartLine    `json:"items"`
	Address       Address       `json:"address"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentID     string        `json:"paymentId,omitempty"`
	Subtotal      Money         `json:"subtotal"`
	Shipping      Money         `json:"shipping"`
	Tax           Money         `json:"tax"`
	Total         Money         `json:"total"`
	Status        OrderStatus   `json:"status"`
	OrderDate     time.Time     `json:"orderDate"`
}

// NewOrderID returns a time-ordered order id.
func NewOrderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "ORD-" + uuid.NewString()
	}
	return "ORD-" + id.String()
}

// OrderRequest gathers what checkout knows at the moment an order is placed.
type OrderRequest struct {
	UserID  string
	Lines   []CartLine
	Address *Address
	Method  PaymentMethod
	Outcome PaymentOutcome
	Pricing PricingPolicy
	Now     time.Time
}

// CheckOrderPreconditions fails before any gateway or persistence call.
func CheckOrderPreconditions(lines []CartLine, address *Address) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	if address == nil {
		return ErrNoAddressSelected
	}
	return nil
}

// NewOrder snapshots the lines and address and freezes the totals.
// Cash on delivery starts pending; every other method needs a successful
// outcome and starts confirmed.
func NewOrder(req OrderRequest) (Order, error) {
	if err := CheckOrderPreconditions(req.Lines, req.Address); err != nil {
		return Order{}, err
	}

	status := OrderStatusPending
	paymentID := ""
	if req.Method.RequiresGateway() {
		if err := req.Outcome.Err(); err != nil {
			return Order{}, err
		}
		status = OrderStatusConfirmed
		paymentID = req.Outcome.PaymentID
	}

	lines := make([]CartLine, len(req.Lines))
	copy(lines, req.Lines)
	totals := req.Pricing.ComputeTotals(lines)

	return Order{
		ID:            NewOrderID(),
		UserID:        req.UserID,
		Items:         lines,
		Address:       *req.Address,
		PaymentMethod: req.Method,
		PaymentID:     paymentID,
		Subtotal:      totals.Subtotal,
		Shipping:      totals.Shipping,
		Tax:           totals.Tax,
		Total:         totals.Total,
		Status:        status,
		OrderDate:     req.Now.UTC().Truncate(time.Millisecond),
	}, nil
}

func (o Order) Totals() Totals {
	return Totals{Subtotal: o.Subtotal, Shipping: o.Shipping, Tax: o.Tax, Total: o.Total}
}

// ItemCount is the number of units across all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, line := range o.Items {
		n += line.Quantity
	}
	return n
}

// TransitionTo moves the order along the status machine.
func (o *Order) TransitionTo(next OrderStatus) error {
	if !next.Valid() {
		return ErrUnknownStatus
	}
	if !CanTransition(o.Status, next) {
		return &IllegalTransitionError{From: o.Status, To: next}
	}
	o.Status = next
	return nil
}

// OrderHistory is one identity's orders, newest first.
type OrderHistory struct {
	Orders []Order `json:"orders"`
}

func (h *OrderHistory) Prepend(o Order) {
	next := make([]Order, 0, len(h.Orders)+1)
	next = append(next, o)
	h.Orders = append(next, h.Orders...)
}

func (h *OrderHistory) Find(id string) (Order, bool) {
	for _, o := range h.Orders {
		if o.ID == id {
			return o, true
		}
	}
	return Order{}, false
}

func (h *OrderHistory) UpdateStatus(id string, next OrderStatus) (Order, error) {
	for i := range h.Orders {
		if h.Orders[i].ID != id {
			continue
		}
		if err := h.Orders[i].TransitionTo(next); err != nil {
			return Order{}, err
		}
		return h.Orders[i], nil
	}
	return Order{}, ErrOrderNotFound
}
