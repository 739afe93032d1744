package models

import "errors"

var (
	ErrUnauthenticated = errors.New("no caller identity could be resolved")
	ErrUnauthorized    = errors.New("caller has no permission for this operation")
	ErrNotFound        = errors.New("requested auction or bid does not exist")
	ErrInvalidBid      = errors.New("bid failed structural validation")
	ErrDuplicateBid    = errors.New("provider already has a bid on this auction")
	ErrDeadlinePassed  = errors.New("auction deadline has elapsed")
	ErrInvalidState    = errors.New("operation not permitted in current status")
	ErrAlreadyDecided  = errors.New("winner has already been selected")
	ErrUnavailable     = errors.New("store temporarily unavailable, retry")
)
