package services

import "errors"

// Validation errors surfaced to the originating connection or request only.
// Handlers map these to HTTP status codes or ws message-error frames.
var (
	ErrReceiverRequired = errors.New("receiver is required")
	ErrEmptyMessage     = errors.New("message must have content or an image")
	ErrUnknownUser      = errors.New("unknown user")
)
