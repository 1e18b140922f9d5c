package stochsim

/*
State is an opaque handle over an engine's internal state representation.
The engine that produced a State is the only component allowed to interpret
it; trajectories just thread handles through the contract below.
*/
type State interface{}

/*
Engine is the operation contract the simulator consumes from the external
decision-diagram package. Every trajectory owns a private Engine instance and
a private State, so implementations need no internal synchronization.

Probability queries normalize internally: noise branches are not unitary, so
a state's raw norm may drift below one between applications.
*/
type Engine interface {
	// ZeroState allocates the all-zero basis state over nqubits qubits.
	ZeroState(nqubits int) State

	// ApplyGate applies a full circuit gate, including two-qubit kinds.
	ApplyGate(s State, g Gate) (State, error)

	// ApplyMatrix applies a 2x2 matrix to one qubit. Used for noise
	// injection; the matrix may be non-unitary.
	ApplyMatrix(s State, m GateMatrix, target int) State

	// OneProbability returns the probability of measuring |1> on the qubit.
	OneProbability(s State, qubit int) float64

	// BasisProbability returns the probability of the full basis state with
	// the given index.
	BasisProbability(s State, basis uint64) float64

	// Project collapses a qubit to the given outcome (0 or 1) and
	// renormalizes.
	Project(s State, qubit, outcome int) State

	// Compact reduces the state toward the target fidelity and reports
	// whether any reduction actually happened.
	Compact(s State, fidelity float64) (State, bool)

	// StateSize returns the engine-specific size scalar of the state (node
	// count for a decision diagram).
	StateSize(s State) int

	// Release frees the state's resources. The handle is dead afterwards.
	Release(s State)
}

// EngineFactory builds one private Engine per trajectory worker.
type EngineFactory func() Engine
