package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrSessionNotFound  = errors.New("chat session not found")
	ErrSessionExpired   = errors.New("chat session expired")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrModelUnavailable = errors.New("model service unavailable")
	ErrSessionBusy      = errors.New("session is processing another message")
	ErrStoreCorruption  = errors.New("session store invariant violated")
)
