package domain

import "errors"

var (
	// ErrUnauthorized is returned when the marketplace rejects the bearer token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidSnapshot is returned when a trade snapshot lacks required fields
	ErrInvalidSnapshot = errors.New("invalid trade snapshot")

	// ErrAccountNotFound is returned when an account name is not configured
	ErrAccountNotFound = errors.New("account not found")

	// ErrNoSelectedAccount is returned when no payment account is selected for an owner and method
	ErrNoSelectedAccount = errors.New("no selected payment account")

	// ErrUnexpectedResponse is returned when the marketplace responds with an unexpected payload
	ErrUnexpectedResponse = errors.New("unexpected marketplace response")

	// ErrNoSinks is returned when an alert could not be delivered to any sink
	ErrNoSinks = errors.New("no alert sink accepted the alert")
)
