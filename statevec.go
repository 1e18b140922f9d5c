package stochsim

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

/*
VectorEngine is a dense state-vector engine satisfying the Engine contract.
It stands in for the external decision-diagram package: same operations, no
node sharing. Amplitudes are kept unnormalized between applications; the
probability queries divide by the current norm, matching how a DD engine
reads probabilities off a trace-decreased state.
*/
type VectorEngine struct{}

func NewVectorEngine() *VectorEngine { return &VectorEngine{} }

type vecState struct {
	amps []complex128
	n    int
}

func (e *VectorEngine) ZeroState(nqubits int) State {
	amps := make([]complex128, 1<<nqubits)
	amps[0] = 1
	return &vecState{amps: amps, n: nqubits}
}

func (e *VectorEngine) ApplyGate(s State, g Gate) (State, error) {
	v := s.(*vecState)
	if m, ok := g.Matrix(); ok {
		applySingle(v, m, g.Target)
		return v, nil
	}

	switch g.Kind {
	case OpCX:
		cbit, tbit := 1<<g.Control, 1<<g.Target
		for i := range v.amps {
			if i&cbit != 0 && i&tbit == 0 {
				j := i | tbit
				v.amps[i], v.amps[j] = v.amps[j], v.amps[i]
			}
		}
	case OpCZ:
		cbit, tbit := 1<<g.Control, 1<<g.Target
		for i := range v.amps {
			if i&cbit != 0 && i&tbit != 0 {
				v.amps[i] = -v.amps[i]
			}
		}
	case OpSwap:
		abit, bbit := 1<<g.Control, 1<<g.Target
		for i := range v.amps {
			if i&abit != 0 && i&bbit == 0 {
				j := (i &^ abit) | bbit
				v.amps[i], v.amps[j] = v.amps[j], v.amps[i]
			}
		}
	default:
		return v, fmt.Errorf("%w: %d", ErrUnknownGate, g.Kind)
	}
	return v, nil
}

func (e *VectorEngine) ApplyMatrix(s State, m GateMatrix, target int) State {
	v := s.(*vecState)
	applySingle(v, m, target)
	return v
}

func applySingle(v *vecState, m GateMatrix, q int) {
	bit := 1 << q
	for i := range v.amps {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := v.amps[i], v.amps[j]
			v.amps[i] = m[0]*a0 + m[1]*a1
			v.amps[j] = m[2]*a0 + m[3]*a1
		}
	}
}

func (v *vecState) norm() float64 {
	total := 0.0
	for _, a := range v.amps {
		total += real(a)*real(a) + imag(a)*imag(a)
	}
	return total
}

func (e *VectorEngine) OneProbability(s State, qubit int) float64 {
	v := s.(*vecState)
	total := v.norm()
	if total == 0 {
		return 0
	}
	bit := 1 << qubit
	p := 0.0
	for i, a := range v.amps {
		if i&bit != 0 {
			p += real(a)*real(a) + imag(a)*imag(a)
		}
	}
	return p / total
}

func (e *VectorEngine) BasisProbability(s State, basis uint64) float64 {
	v := s.(*vecState)
	if basis >= uint64(len(v.amps)) {
		return 0
	}
	total := v.norm()
	if total == 0 {
		return 0
	}
	a := v.amps[basis]
	return (real(a)*real(a) + imag(a)*imag(a)) / total
}

func (e *VectorEngine) Project(s State, qubit, outcome int) State {
	v := s.(*vecState)
	bit := 1 << qubit
	kept := 0.0
	for i, a := range v.amps {
		match := (i&bit != 0) == (outcome == 1)
		if match {
			kept += real(a)*real(a) + imag(a)*imag(a)
		} else {
			v.amps[i] = 0
		}
	}
	if kept > 0 {
		scale := complex(1/math.Sqrt(kept), 0)
		for i := range v.amps {
			v.amps[i] *= scale
		}
	}
	return v
}

func (e *VectorEngine) Compact(s State, fidelity float64) (State, bool) {
	v := s.(*vecState)
	total := v.norm()
	if total == 0 {
		return v, false
	}

	type weighted struct {
		index int
		prob  float64
	}
	nonzero := make([]weighted, 0, len(v.amps))
	for i, a := range v.amps {
		if a != 0 {
			nonzero = append(nonzero, weighted{i, real(a)*real(a) + imag(a)*imag(a)})
		}
	}
	sort.Slice(nonzero, func(i, j int) bool { return nonzero[i].prob < nonzero[j].prob })

	// Drop the smallest contributions while the kept norm stays above the
	// fidelity target. Never drop the last remaining amplitude.
	budget := (1 - fidelity) * total
	dropped := 0.0
	reduced := false
	for i, w := range nonzero {
		if i == len(nonzero)-1 || dropped+w.prob > budget {
			break
		}
		dropped += w.prob
		v.amps[w.index] = 0
		reduced = true
	}
	if !reduced {
		return v, false
	}

	scale := complex(math.Sqrt(total/(total-dropped)), 0)
	for i := range v.amps {
		v.amps[i] *= scale
	}
	return v, true
}

func (e *VectorEngine) StateSize(s State) int {
	v := s.(*vecState)
	count := 0
	for _, a := range v.amps {
		if cmplx.Abs(a) > 0 {
			count++
		}
	}
	return count
}

func (e *VectorEngine) Release(s State) {
	v := s.(*vecState)
	v.amps = nil
}
