package stochsim

// OpKind enumerates the gate operations the simulator understands. The set
// matches what the engine contract can express: arbitrary single-qubit gates
// plus the common two-qubit primitives.
type OpKind int

const (
	OpI OpKind = iota
	OpH
	OpX
	OpY
	OpZ
	OpS
	OpT
	OpCX
	OpCZ
	OpSwap
)

// Gate is one operation in a circuit. Control is -1 for single-qubit gates.
type Gate struct {
	Kind    OpKind
	Target  int
	Control int
}

// UsedQubits returns the qubits the gate touches, target first.
func (g Gate) UsedQubits() []int {
	if g.Control < 0 {
		return []int{g.Target}
	}
	return []int{g.Target, g.Control}
}

// Matrix returns the 2x2 matrix of a single-qubit gate kind. Two-qubit kinds
// have no single matrix here; the engine applies them directly.
func (g Gate) Matrix() (GateMatrix, bool) {
	switch g.Kind {
	case OpI:
		return MatID, true
	case OpH:
		return MatH, true
	case OpX:
		return MatX, true
	case OpY:
		return MatY, true
	case OpZ:
		return MatZ, true
	case OpS:
		return MatS, true
	case OpT:
		return MatT, true
	}
	return GateMatrix{}, false
}

/*
Circuit is the ordered gate sequence consumed by the simulator. It is shared
read-only by every trajectory for the duration of a simulate call, so build
it fully before handing it over.
*/
type Circuit struct {
	Name   string
	Qubits int
	Gates  []Gate
}

// NewCircuit creates an empty circuit over nqubits qubits.
func NewCircuit(name string, nqubits int) *Circuit {
	return &Circuit{Name: name, Qubits: nqubits}
}

// Append adds a gate and returns the circuit for chaining.
func (c *Circuit) Append(g Gate) *Circuit {
	c.Gates = append(c.Gates, g)
	return c
}

func (c *Circuit) H(q int) *Circuit { return c.Append(Gate{Kind: OpH, Target: q, Control: -1}) }
func (c *Circuit) X(q int) *Circuit { return c.Append(Gate{Kind: OpX, Target: q, Control: -1}) }
func (c *Circuit) Y(q int) *Circuit { return c.Append(Gate{Kind: OpY, Target: q, Control: -1}) }
func (c *Circuit) Z(q int) *Circuit { return c.Append(Gate{Kind: OpZ, Target: q, Control: -1}) }
func (c *Circuit) S(q int) *Circuit { return c.Append(Gate{Kind: OpS, Target: q, Control: -1}) }
func (c *Circuit) T(q int) *Circuit { return c.Append(Gate{Kind: OpT, Target: q, Control: -1}) }

func (c *Circuit) CX(ctrl, tgt int) *Circuit {
	return c.Append(Gate{Kind: OpCX, Target: tgt, Control: ctrl})
}

func (c *Circuit) CZ(ctrl, tgt int) *Circuit {
	return c.Append(Gate{Kind: OpCZ, Target: tgt, Control: ctrl})
}

func (c *Circuit) Swap(a, b int) *Circuit {
	return c.Append(Gate{Kind: OpSwap, Target: b, Control: a})
}

// NumOps returns the number of operations in the circuit.
func (c *Circuit) NumOps() int { return len(c.Gates) }
