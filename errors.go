package main

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by every rejection of bad input.
// Operations that return it have not mutated any state.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrPhaseOrder is returned when a phase is requested after decumulation has run
var ErrPhaseOrder = errors.New("phase requested after decumulation has run")

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
