package domain

import "errors"

var (
	// ErrInvalidPlay marks a selection that breaks hand, inventory or line rules.
	// The same decision point stays open and nothing is mutated.
	ErrInvalidPlay = errors.New("invalid play")
	// ErrAlreadyCommitted is returned when committing to a line that is not available.
	ErrAlreadyCommitted = errors.New("line already committed")
	// ErrExecutionFault is returned when a run finds no next line and no halt.
	// The program store is corrupt and the run's effects must not be trusted.
	ErrExecutionFault = errors.New("execution fault: no line to continue from")
	// ErrInvalidCommand is returned for a kind/value pair that cannot form an instruction.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrPileExhausted is returned when both the draw and discard piles are empty.
	ErrPileExhausted = errors.New("draw pile exhausted")
)
