package state

import "errors"

// contract violations, surfaced to the caller and never swallowed

var (
	ErrUnknownNode = errors.New("unknown node")
	ErrInvalidNode = errors.New("invalid node name")
	ErrInvalidCost = errors.New("invalid link cost")
	ErrSelfLink    = errors.New("link endpoints must differ")
	ErrUnknownLink = errors.New("unknown link")
	ErrNoOwner     = errors.New("no node owns the address")
)
