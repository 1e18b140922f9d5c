package stochsim

import (
	"math/rand"
	"time"
)

/*
trajectoryResult is one run's private output slot. Slots are pre-sized by the
scheduler, written by exactly one worker, and read only after the barrier, so
nothing here needs synchronization.
*/
type trajectoryResult struct {
	outcomes       map[string]int
	properties     []float64
	approximations int
	duration       time.Duration
}

/*
runTrajectory executes one stochastic run: apply every gate in order, draw
noise for each touched qubit, compact the state on the configured cadence,
record properties at their operation index, and finally sample one classical
outcome qubit by qubit.

The run owns its engine, state and generator; it never communicates with
another run. localSeed fully determines the run's draws.
*/
func runTrajectory(
	eng Engine,
	c *Circuit,
	cfg *NoiseConfig,
	props []RecordedProperty,
	stepNumber uint,
	stepFidelity float64,
	localSeed int64,
) (trajectoryResult, error) {
	start := time.Now()
	result := trajectoryResult{
		outcomes:   make(map[string]int, 1),
		properties: make([]float64, len(props)),
	}

	generator := rand.New(rand.NewSource(localSeed))
	state := eng.ZeroState(c.Qubits)
	defer eng.Release(state)

	opIndex := 0
	sinceCompaction := uint(0)
	var err error

	for _, gate := range c.Gates {
		if state, err = eng.ApplyGate(state, gate); err != nil {
			return result, err
		}

		used := gate.UsedQubits()
		multiQubit := len(used) > 1
		for _, q := range used {
			state = injectNoise(eng, state, q, multiQubit, cfg, generator)
		}

		opIndex++
		sinceCompaction++
		if stepNumber > 0 && sinceCompaction >= stepNumber {
			var reduced bool
			if state, reduced = eng.Compact(state, stepFidelity); reduced {
				result.approximations++
			}
			sinceCompaction = 0
		}

		for i, prop := range props {
			if prop.OpIndex != opIndex {
				continue
			}
			if prop.Index == PropStateSize {
				result.properties[i] = float64(eng.StateSize(state))
			} else {
				result.properties[i] = eng.BasisProbability(state, uint64(prop.Index))
			}
		}
	}

	bits := make([]byte, c.Qubits)
	for q := 0; q < c.Qubits; q++ {
		outcome := 0
		if generator.Float64() < eng.OneProbability(state, q) {
			outcome = 1
		}
		state = eng.Project(state, q, outcome)
		bits[q] = '0' + byte(outcome)
	}
	result.outcomes[string(bits)]++
	result.duration = time.Since(start)
	return result, nil
}

/*
injectNoise draws noise for one touched qubit. A single uniform draw both
gates the injection (u < p) and selects among the enabled effects by
proportional split of [0, p); the amplitude-damping branch sub-selects
occurred/absent with its own draw against the damping probability, and
depolarizing sub-selects uniformly among X, Y, Z. When the draw does not
fire the identity is still applied, keeping the operation pattern of a run
dependent only on its seed.
*/
func injectNoise(eng Engine, state State, qubit int, multiQubit bool, cfg *NoiseConfig, generator *rand.Rand) State {
	probability := cfg.NoiseProbability
	if multiQubit {
		probability = cfg.NoiseProbabilityMulti
	}

	u := generator.Float64()
	if len(cfg.Effects) == 0 || probability == 0 || u >= probability {
		return eng.ApplyMatrix(state, MatID, qubit)
	}

	selected := int(u / probability * float64(len(cfg.Effects)))
	if selected >= len(cfg.Effects) {
		selected = len(cfg.Effects) - 1
	}

	var m GateMatrix
	switch rune(cfg.Effects[selected]) {
	case EffectAmplitudeDamping:
		damping := cfg.AmplitudeDampingProbability
		occurred, absent := cfg.AmpDampingTrue, cfg.AmpDampingFalse
		if multiQubit {
			damping = cfg.AmplitudeDampingProbabilityMulti
			occurred, absent = cfg.AmpDampingTrueMulti, cfg.AmpDampingFalseMulti
		}
		if generator.Float64() < damping {
			m = occurred
		} else {
			m = absent
		}
	case EffectPhaseFlip:
		m = MatZ
	case EffectDepolarizing:
		switch generator.Intn(3) {
		case 0:
			m = MatX
		case 1:
			m = MatY
		default:
			m = MatZ
		}
	}
	return eng.ApplyMatrix(state, m, qubit)
}
