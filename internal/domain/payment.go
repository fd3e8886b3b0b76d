package domain

import (
	"fmt"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodNetbanking PaymentMethod = "netbanking"
	PaymentMethodWallet     PaymentMethod = "wallet"
	PaymentMethodCOD        PaymentMethod = "cod"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodNetbanking,
		PaymentMethodWallet, PaymentMethodCOD:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
}

// RequiresGateway is false only for cash on delivery.
func (m PaymentMethod) RequiresGateway() bool {
	return m != PaymentMethodCOD
}

func (m PaymentMethod) String() string {
	return string(m)
}

type PaymentStatus string

const (
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailure   PaymentStatus = "failure"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentOutcome is what the gateway reports for one payment attempt.
type PaymentOutcome struct {
	Status    PaymentStatus `json:"status"`
	PaymentID string        `json:"paymentId,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

func PaymentSucceeded(paymentID string) PaymentOutcome {
	return PaymentOutcome{Status: PaymentStatusSuccess, PaymentID: paymentID}
}

func PaymentFailedWith(reason string) PaymentOutcome {
	return PaymentOutcome{Status: PaymentStatusFailure, Reason: reason}
}

func PaymentCancelledByUser() PaymentOutcome {
	return PaymentOutcome{Status: PaymentStatusCancelled}
}

// Err maps a non-successful outcome to ErrPaymentFailed or ErrPaymentCancelled.
func (o PaymentOutcome) Err() error {
	switch o.Status {
	case PaymentStatusSuccess:
		if o.PaymentID == "" {
			return fmt.Errorf("%w: gateway returned no payment id", ErrPaymentFailed)
		}
		return nil
	case PaymentStatusCancelled:
		return ErrPaymentCancelled
	case PaymentStatusFailure:
		if o.Reason != "" {
			return fmt.Errorf("%w: %s", ErrPaymentFailed, o.Reason)
		}
		return ErrPaymentFailed
	}
	return fmt.Errorf("%w: unknown outcome %q", ErrPaymentFailed, o.Status)
}

// PaymentRequest asks the gateway to open a payment for Amount minor units.
type PaymentRequest struct {
	Amount   Money
	Currency string
	Method   PaymentMethod
	Receipt  string
}

// PaymentIntent is an opened payment waiting for the customer to pay.
type PaymentIntent struct {
	ID        string        `json:"id"`
	Amount    Money         `json:"amount"`
	Currency  string        `json:"currency"`
	Method    PaymentMethod `json:"method"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// PaymentConfirmation is the client's report back after the payment step.
// Status is empty or success when the customer paid.
type PaymentConfirmation struct {
	IntentID  string        `json:"intentId"`
	PaymentID string        `json:"paymentId,omitempty"`
	Signature string        `json:"signature,omitempty"`
	Status    PaymentStatus `json:"status,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}
