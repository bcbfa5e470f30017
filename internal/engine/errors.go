package engine

import "errors"

var (
	// ErrEmptyPopulation is returned by operations that need at least one member.
	ErrEmptyPopulation = errors.New("population is empty")
	// ErrNotEmpty is returned when seeding a population that already has members.
	ErrNotEmpty = errors.New("population is not empty")
	// ErrInvalidArgument flags an out-of-range size, rate, or operand.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStaleFitness is returned when a state is used before its fitness was recomputed.
	ErrStaleFitness = errors.New("fitness not recomputed since last change")
)
