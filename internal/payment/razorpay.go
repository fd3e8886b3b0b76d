package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/razorpay/razorpay-go"
	"github.com/sony/gobreaker/v2"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// OrderCreator is the part of the Razorpay client used here.
type OrderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Razorpay opens payments as Razorpay orders and verifies the checkout
// signature the client sends back.
type Razorpay struct {
	orders  OrderCreator
	secret  string
	intents *IntentStore
	cb      *gobreaker.CircuitBreaker[map[string]interface{}]
}

func NewRazorpay(keyID, keySecret string, intents *IntentStore) *Razorpay {
	client := razorpay.NewClient(keyID, keySecret)
	return newRazorpay(client.Order, keySecret, intents)
}

func newRazorpay(orders OrderCreator, secret string, intents *IntentStore) *Razorpay {
	return &Razorpay{
		orders:  orders,
		secret:  secret,
		intents: intents,
		cb: gobreaker.NewCircuitBreaker[map[string]interface{}](gobreaker.Settings{
			Name:        "razorpay",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

func (r *Razorpay) Initiate(ctx context.Context, req domain.PaymentRequest) (domain.PaymentIntent, error) {
	if err := ctx.Err(); err != nil {
		return domain.PaymentIntent{}, err
	}

	data := map[string]interface{}{
		"amount":   int64(req.Amount), // paise
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}

	order, err := r.cb.Execute(func() (map[string]interface{}, error) {
		return r.orders.Create(data, nil)
	})
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("%w: create order: %v", ErrGatewayUnavailable, err)
	}

	id, ok := order["id"].(string)
	if !ok || id == "" {
		return domain.PaymentIntent{}, fmt.Errorf("%w: order response without id", ErrGatewayUnavailable)
	}

	return r.intents.Open(id, req), nil
}

func (r *Razorpay) Confirm(_ context.Context, conf domain.PaymentConfirmation) (domain.PaymentOutcome, error) {
	_, expired, err := r.intents.Take(conf.IntentID)
	if err != nil {
		return domain.PaymentOutcome{}, err
	}
	if expired {
		return domain.PaymentCancelledByUser(), nil
	}
	if outcome, reported := clientReported(conf); reported {
		return outcome, nil
	}

	if conf.PaymentID == "" || !r.validSignature(conf.IntentID, conf.PaymentID, conf.Signature) {
		return domain.PaymentFailedWith("invalid payment signature"), nil
	}
	return domain.PaymentSucceeded(conf.PaymentID), nil
}

// Signature computes the checkout signature Razorpay issues for a payment.
func Signature(secret, orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func (r *Razorpay) validSignature(orderID, paymentID, signature string) bool {
	expected := Signature(r.secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
