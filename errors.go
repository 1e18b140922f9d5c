package stochsim

import "errors"

// Sentinel errors for configuration failures. All of them surface before any
// trajectory is dispatched; callers match with errors.Is.
var (
	// ErrUnknownNoiseEffect is returned when the noise-effect descriptor
	// contains a character outside the recognized set {A, P, D}.
	ErrUnknownNoiseEffect = errors.New("stochsim: unknown noise operation")

	// ErrInvalidRunCount is returned when the number of stochastic runs is
	// not strictly positive.
	ErrInvalidRunCount = errors.New("stochsim: number of stochastic runs must be larger than 0")

	// ErrFaultyProbabilities is returned when the configured error
	// probabilities cannot form a valid noise channel.
	ErrFaultyProbabilities = errors.New("stochsim: error probabilities are faulty")

	// ErrPropertyOutOfRange is returned when a recorded-property index does
	// not fit the circuit's qubit count.
	ErrPropertyOutOfRange = errors.New("stochsim: recorded property out of range")

	// ErrInvalidProperty is returned when the recorded-properties descriptor
	// cannot be parsed.
	ErrInvalidProperty = errors.New("stochsim: invalid recorded property")

	// ErrEmptyCircuit is returned when the circuit has no qubits or no
	// operations to simulate.
	ErrEmptyCircuit = errors.New("stochsim: circuit is empty")

	// ErrUnknownGate is returned by an engine asked to apply a gate kind it
	// does not implement.
	ErrUnknownGate = errors.New("stochsim: unknown gate kind")
)
