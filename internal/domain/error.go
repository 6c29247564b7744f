package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrNotAuthorized      = errors.New("requester does not own this record")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrMalformedResponse  = errors.New("malformed gateway response")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
