package apperror

import "errors"

var (
	ErrInvalidAction      = errors.New("invalid action")
	ErrNoAvailableActions = errors.New("no available actions")
	ErrGameFinished       = errors.New("game is already finished")
	ErrPolicyNotFound     = errors.New("policy not found")
	ErrMalformedPolicy    = errors.New("malformed policy")
	ErrInputClosed        = errors.New("input closed")
	ErrInvalidParams      = errors.New("invalid learning parameters")
)
