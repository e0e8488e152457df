package order

import "errors"

// Module errors.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPayable = errors.New("order is not in a payable status")
)
