package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrQuantityExceedsMax = fmt.Errorf("quantity exceeds the maximum of %d", MaxQuantity)
	ErrQuantityClamped    = fmt.Errorf("quantity was capped at %d", MaxQuantity)
	ErrItemNotInCart      = errors.New("item not in cart")
	ErrProductNotFound    = errors.New("product not found")

	ErrAddressNotFound = errors.New("address not found")

	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrNoAddressSelected     = errors.New("no shipping address selected")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
	ErrPaymentFailed         = errors.New("payment failed")
	ErrPaymentCancelled      = errors.New("payment cancelled")
	ErrPaymentAmountMismatch = errors.New("payment amount does not match order total")
	ErrPaymentIntentNotFound = errors.New("payment intent not found or already used")
	ErrPaymentMethodMismatch = errors.New("payment method does not match the payment intent")

	ErrOrderNotFound     = errors.New("order not found")
	ErrIllegalTransition = errors.New("illegal transition of order status")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// FieldError names one user-correctable input problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violated field of a submitted form.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FieldNames returns the offending field names in report order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IllegalTransitionError reports a status change the order machine forbids.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrIllegalTransition, e.From, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}
