package stochsim

import (
	"fmt"
	"time"
)

/*
perfectRun executes the circuit once from the all-zero state with no noise.
It produces the timing baseline for AdditionalStatistics and validates every
recorded-property request against the circuit's qubit count before any
stochastic worker is dispatched.
*/
func perfectRun(eng Engine, c *Circuit, props []RecordedProperty) (time.Duration, error) {
	limit := int64(1) << c.Qubits
	for _, prop := range props {
		if prop.Index >= limit {
			return 0, fmt.Errorf("%w: basis state %d does not fit %d qubits",
				ErrPropertyOutOfRange, prop.Index, c.Qubits)
		}
	}

	start := time.Now()
	state := eng.ZeroState(c.Qubits)
	defer eng.Release(state)

	var err error
	for _, gate := range c.Gates {
		if state, err = eng.ApplyGate(state, gate); err != nil {
			return 0, err
		}
	}
	return time.Since(start), nil
}
