package entities

import "errors"

// ErrInvalidArgument is returned when a query parameter is out of range
var ErrInvalidArgument = errors.New("invalid argument")
