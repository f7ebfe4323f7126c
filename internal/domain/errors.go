package domain

import "errors"

var (
	ErrInvalidPolicy = errors.New("invalid replenishment policy")
	ErrUnknownSource = errors.New("unknown snapshot source")
)
