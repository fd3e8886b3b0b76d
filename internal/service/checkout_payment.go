package service

import (
	"context"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"go.uber.org/zap"
)

// InitiatePayment opens a gateway payment for the current cart total. The
// intent stays pending on the session until PlaceOrder consumes it.
func (s *Session) InitiatePayment(ctx context.Context, method domain.PaymentMethod) (domain.PaymentIntent, error) {
	if err := s.lock(); err != nil {
		return domain.PaymentIntent{}, err
	}
	defer s.mu.Unlock()

	if !method.RequiresGateway() {
		return domain.PaymentIntent{}, ErrPaymentNotRequired
	}
	lines, address := s.checkoutInputs()
	if err := domain.CheckOrderPreconditions(lines, address); err != nil {
		return domain.PaymentIntent{}, err
	}
	totals := s.deps.Pricing.ComputeTotals(lines)

	paymentCtx, cancel := context.WithTimeout(ctx, s.deps.Payment.timeout)
	defer cancel()
	intent, err := s.deps.Payment.gateway.Initiate(paymentCtx, domain.PaymentRequest{
		Amount:   totals.Total,
		Currency: s.deps.Currency,
		Method:   method,
		Receipt:  fmt.Sprintf("rcpt_%d", s.deps.Now().UnixNano()),
	})
	if err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("initiate payment: %w", err)
	}

	s.pending = &intent
	s.logger(ctx).Info("payment initiated",
		zap.String("intent_id", intent.ID),
		zap.String("method", method.String()),
		zap.Int64("amount", int64(intent.Amount)))
	return intent, nil
}

// settledPayment is a gateway payment that succeeded but whose order is not
// stored yet. PlaceOrder retries with the same intent id reuse it.
type settledPayment struct {
	intentID string
	method   domain.PaymentMethod
	amount   domain.Money
	outcome  domain.PaymentOutcome
	orderID  string
}

// confirmPayment settles the pending intent. The intent is consumed whatever
// the outcome; a failed or cancelled payment leaves the cart as it was. An
// intent opened for a different method is rejected without consuming it.
func (s *Session) confirmPayment(ctx context.Context, method domain.PaymentMethod, total domain.Money, conf domain.PaymentConfirmation) (domain.PaymentOutcome, error) {
	if st := s.settled; st != nil && conf.IntentID != "" && conf.IntentID == st.intentID {
		if st.method != method {
			return domain.PaymentOutcome{}, fmt.Errorf("%w: paid with %s", domain.ErrPaymentMethodMismatch, st.method)
		}
		if st.amount != total {
			return domain.PaymentOutcome{}, fmt.Errorf("%w: paid %s, order total %s",
				domain.ErrPaymentAmountMismatch, st.amount, total)
		}
		return st.outcome, nil
	}

	pending := s.pending
	if pending == nil || conf.IntentID == "" || conf.IntentID != pending.ID {
		return domain.PaymentOutcome{}, domain.ErrPaymentIntentNotFound
	}
	if pending.Method != method {
		return domain.PaymentOutcome{}, fmt.Errorf("%w: intent opened for %s", domain.ErrPaymentMethodMismatch, pending.Method)
	}
	s.pending = nil

	if pending.Amount != total {
		return domain.PaymentOutcome{}, fmt.Errorf("%w: paid %s, order total %s",
			domain.ErrPaymentAmountMismatch, pending.Amount, total)
	}

	paymentCtx, cancel := context.WithTimeout(ctx, s.deps.Payment.timeout)
	defer cancel()
	outcome, err := s.deps.Payment.gateway.Confirm(paymentCtx, conf)
	if err != nil {
		return domain.PaymentOutcome{}, fmt.Errorf("confirm payment: %w", err)
	}
	if err := outcome.Err(); err != nil {
		s.logger(ctx).Info("payment not completed",
			zap.String("intent_id", pending.ID),
			zap.String("status", string(outcome.Status)),
			zap.String("reason", outcome.Reason))
		return outcome, err
	}

	s.settled = &settledPayment{
		intentID: pending.ID,
		method:   method,
		amount:   pending.Amount,
		outcome:  outcome,
	}
	return outcome, nil
}

// PendingPayment returns the intent waiting for confirmation, if any.
func (s *Session) PendingPayment() (domain.PaymentIntent, bool, error) {
	if err := s.lock(); err != nil {
		return domain.PaymentIntent{}, false, err
	}
	defer s.mu.Unlock()
	if s.pending == nil {
		return domain.PaymentIntent{}, false, nil
	}
	return *s.pending, true, nil
}

func (s *Session) checkoutInputs() ([]domain.CartLine, *domain.Address) {
	lines := s.cart.Snapshot()
	if a, ok := s.addresses.Selected(); ok {
		return lines, &a
	}
	return lines, nil
}
