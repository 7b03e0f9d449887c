package ledger

import "errors"

var (
	ErrUnauthorized      = errors.New("caller lacks the required role")
	ErrNotFound          = errors.New("entity not found")
	ErrAlreadyExists     = errors.New("entity already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrLimitExceeded     = errors.New("limit exceeded")
	ErrPaused            = errors.New("ledger is paused")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
