package payment

import "errors"

// Module errors for the payment settlement subsystem.
var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrWebhookEventExists = errors.New("webhook event already processed")
	ErrConcurrentUpdate   = errors.New("payment was modified concurrently")
	ErrValidation         = errors.New("invalid payment request")
)
