package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnsupportedChain = errors.New("chain not supported")
	ErrMissingAPIKey    = errors.New("api key not configured")
	ErrInvalidAddress   = errors.New("invalid address")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrSameTokenPair    = errors.New("sell and buy token are identical")
	ErrNoRoute          = errors.New("no trading route found")
	ErrQuoteSuperseded  = errors.New("quote request superseded")
	ErrRateLimited      = errors.New("rate limited")
)
