package payment

import (
	"context"
	"math/rand"

	"github.com/fjod/storefront/internal/domain"
	"github.com/google/uuid"
)

// Refusal reasons reported by the simulated gateway.
var refusalReasons = []string{
	"insufficient funds",
	"card expired",
	"bank declined",
	"limit exceeded",
	"suspected fraud",
}

// StatusSource decides how a simulated payment ends.
type StatusSource interface {
	GetStatus() (success bool, reason string)
}

// RandomStatus succeeds SuccessRate percent of the time.
type RandomStatus struct {
	SuccessRate int
}

func (r RandomStatus) GetStatus() (bool, string) {
	randomInt := rand.Intn(100)
	return calcStatus(randomInt, r.SuccessRate)
}

func calcStatus(randomInt, successRate int) (bool, string) {
	if randomInt < successRate {
		return true, ""
	}
	otherReason := randomInt - successRate
	if otherReason >= len(refusalReasons) {
		return false, "unknown reason"
	}
	return false, refusalReasons[otherReason]
}

// Simulated is a gateway for development and tests that never leaves the
// process.
type Simulated struct {
	intents *IntentStore
	status  StatusSource
}

func NewSimulated(intents *IntentStore, status StatusSource) *Simulated {
	return &Simulated{intents: intents, status: status}
}

func (s *Simulated) Initiate(_ context.Context, req domain.PaymentRequest) (domain.PaymentIntent, error) {
	return s.intents.Open("sim_order_"+uuid.NewString(), req), nil
}

func (s *Simulated) Confirm(_ context.Context, conf domain.PaymentConfirmation) (domain.PaymentOutcome, error) {
	_, expired, err := s.intents.Take(conf.IntentID)
	if err != nil {
		return domain.PaymentOutcome{}, err
	}
	if expired {
		return domain.PaymentCancelledByUser(), nil
	}
	if outcome, reported := clientReported(conf); reported {
		return outcome, nil
	}

	ok, reason := s.status.GetStatus()
	if !ok {
		return domain.PaymentFailedWith(reason), nil
	}
	return domain.PaymentSucceeded("sim_pay_" + uuid.NewString()), nil
}

// clientReported handles a confirmation in which the client already says the
// customer cancelled or the payment failed.
func clientReported(conf domain.PaymentConfirmation) (domain.PaymentOutcome, bool) {
	switch conf.Status {
	case domain.PaymentStatusCancelled:
		return domain.PaymentCancelledByUser(), true
	case domain.PaymentStatusFailure:
		return domain.PaymentFailedWith(conf.Reason), true
	}
	return domain.PaymentOutcome{}, false
}
