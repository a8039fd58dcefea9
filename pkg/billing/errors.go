package billing

import "errors"

var (
	// ErrProviderNotConfigured is returned when a provider is not properly configured
	ErrProviderNotConfigured = errors.New("billing provider not configured")

	// ErrInvalidWebhookSignature is returned when webhook signature validation fails
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

	// ErrInvalidWebhookPayload is returned when webhook payload cannot be parsed
	ErrInvalidWebhookPayload = errors.New("invalid webhook payload")

	// ErrMissingReference is returned when the external reference is absent
	ErrMissingReference = errors.New("missing external reference")

	// ErrInvalidReference is returned when the external reference cannot be parsed
	ErrInvalidReference = errors.New("invalid external reference")
)
