package service

import "errors"

var (
	// ErrPersistence wraps a failed store write or read that the caller must
	// know about; the in-memory state was left unchanged.
	ErrPersistence = errors.New("persistence failed")

	ErrSessionClosed      = errors.New("session closed")
	ErrNoIdentity         = errors.New("no signed-in user")
	ErrPaymentNotRequired = errors.New("cash on delivery needs no payment")
)
