package automaton

import "errors"

// ErrInvalidReference is returned when an operation names a state or
// transition that does not exist.
var ErrInvalidReference = errors.New("invalid reference")

// ErrInvalidSymbol is returned when a transition edit uses a symbol outside
// the alphabet, or when an alphabet token is empty.
var ErrInvalidSymbol = errors.New("invalid symbol")

// ErrNoStartState is returned when a simulation is attempted without a start state.
var ErrNoStartState = errors.New("no start state")

// ErrMalformedData is returned when persisted data cannot be imported.
var ErrMalformedData = errors.New("malformed data")

// ErrInvalidKind is returned for an unknown automaton kind.
var ErrInvalidKind = errors.New("invalid automaton kind")
