package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioLines() []CartLine {
	return []CartLine{
		{Product: product(1, 10000), Quantity: 2},
		{Product: product(2, 5000), Quantity: 1},
	}
}

func scenarioAddress() *Address {
	return &Address{ID: "addr-1", FullName: "Asha", Phone: "9876543210", AddressLine1: "12 MG Road",
		City: "Bengaluru", State: "Karnataka", Pincode: "560001", IsDefault: true}
}

func TestNewOrder_COD(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)

	o, err := NewOrder(OrderRequest{
		UserID:  "user-1",
		Lines:   scenarioLines(),
		Address: scenarioAddress(),
		Method:  PaymentMethodCOD,
		Pricing: DefaultPricing(),
		Now:     now,
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(o.ID, "ORD-"))
	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Empty(t, o.PaymentID)
	assert.Equal(t, Money(25000), o.Subtotal)
	assert.Equal(t, Money(4000), o.Shipping)
	assert.Equal(t, Money(4500), o.Tax)
	assert.Equal(t, Money(33500), o.Total)
	assert.Equal(t, 3, o.ItemCount())
	assert.Equal(t, now.Truncate(time.Millisecond), o.OrderDate)
}

func TestNewOrder_GatewaySuccess(t *testing.T) {
	o, err := NewOrder(OrderRequest{
		UserID:  "user-1",
		Lines:   scenarioLines(),
		Address: scenarioAddress(),
		Method:  PaymentMethodUPI,
		Outcome: PaymentSucceeded("pay_123"),
		Pricing: DefaultPricing(),
		Now:     time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, OrderStatusConfirmed, o.Status)
	assert.Equal(t, "pay_123", o.PaymentID)
}

func TestNewOrder_PaymentErrors(t *testing.T) {
	base := OrderRequest{Lines: scenarioLines(), Address: scenarioAddress(), Method: PaymentMethodCard, Pricing: DefaultPricing()}

	base.Outcome = PaymentFailedWith("insufficient funds")
	_, err := NewOrder(base)
	assert.ErrorIs(t, err, ErrPaymentFailed)

	base.Outcome = PaymentCancelledByUser()
	_, err = NewOrder(base)
	assert.ErrorIs(t, err, ErrPaymentCancelled)

	base.Outcome = PaymentOutcome{Status: PaymentStatusSuccess}
	_, err = NewOrder(base)
	assert.ErrorIs(t, err, ErrPaymentFailed)
}

func TestNewOrder_Preconditions(t *testing.T) {
	_, err := NewOrder(OrderRequest{Address: scenarioAddress(), Method: PaymentMethodCOD})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = NewOrder(OrderRequest{Lines: scenarioLines(), Method: PaymentMethodCOD})
	assert.ErrorIs(t, err, ErrNoAddressSelected)
}

func TestNewOrder_SnapshotsLines(t *testing.T) {
	lines := scenarioLines()
	o, err := NewOrder(OrderRequest{Lines: lines, Address: scenarioAddress(), Method: PaymentMethodCOD, Pricing: DefaultPricing()})
	require.NoError(t, err)

	lines[0].Quantity = 20

	assert.Equal(t, 2, o.Items[0].Quantity)
}

func TestNewOrderID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewOrderID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]OrderStatus{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusConfirmed, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]OrderStatus{
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusPending},
		{OrderStatusCancelled, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusPending, OrderStatusPending},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
}

func TestOrderHistory_UpdateStatus(t *testing.T) {
	h := &OrderHistory{}
	h.Prepend(Order{ID: "ORD-1", Status: OrderStatusPending})
	h.Prepend(Order{ID: "ORD-2", Status: OrderStatusConfirmed})
	assert.Equal(t, "ORD-2", h.Orders[0].ID)

	o, err := h.UpdateStatus("ORD-1", OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusConfirmed, o.Status)

	_, err = h.UpdateStatus("ORD-2", OrderStatusDelivered)
	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, OrderStatusConfirmed, illegal.From)

	_, err = h.UpdateStatus("ORD-9", OrderStatusShipped)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, s)

	_, err = ParseOrderStatus("processing")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("netbanking")
	require.NoError(t, err)
	assert.True(t, m.RequiresGateway())

	m, err = ParsePaymentMethod("cod")
	require.NoError(t, err)
	assert.False(t, m.RequiresGateway())

	_, err = ParsePaymentMethod("bitcoin")
	assert.ErrorIs(t, err, ErrUnknownPaymentMethod)
}
