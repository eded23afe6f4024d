package roborock

import "errors"

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrCapacityExceeded = errors.New("too many forbidden markers")
	ErrNotSupported     = errors.New("not supported by this firmware generation")
)
