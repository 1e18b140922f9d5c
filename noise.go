package stochsim

import (
	"fmt"
	"math"
	"strings"
)

// Recognized noise-effect codes. The descriptor string is any combination of
// these, e.g. "APD" or "AP".
const (
	EffectAmplitudeDamping = 'A'
	EffectPhaseFlip        = 'P'
	EffectDepolarizing     = 'D'
)

/*
NoiseConfig holds the validated noise parameters and the four derived
Kraus-branch matrices. It is built once through newNoiseConfig and never
mutated afterwards, so all trajectories share one instance without locking.
*/
type NoiseConfig struct {
	Effects string

	NoiseProbability      float64
	NoiseProbabilityMulti float64

	AmplitudeDampingProbability      float64
	AmplitudeDampingProbabilityMulti float64

	SqrtAmplitudeDampingProbability              complex128
	OneMinusSqrtAmplitudeDampingProbability      complex128
	SqrtAmplitudeDampingProbabilityMulti         complex128
	OneMinusSqrtAmplitudeDampingProbabilityMulti complex128

	AmpDampingTrue       GateMatrix
	AmpDampingTrueMulti  GateMatrix
	AmpDampingFalse      GateMatrix
	AmpDampingFalseMulti GateMatrix

	StochasticRuns int
}

/*
newNoiseConfig validates the noise descriptor and probabilities and derives
the Kraus-branch matrices.

ampDamping < 0 is the "unspecified" sentinel; the amplitude-damping (t1)
probability then defaults to double the general error probability. Both
damping branch pairs are derived from square-root probability weighting so
that |sqrt(x)|^2 + |sqrt(1-x)|^2 == 1 holds for the single- and multi-qubit
variants alike.
*/
func newNoiseConfig(effects string, p, ampDamping, multiFactor float64, runs int) (*NoiseConfig, error) {
	for _, effect := range effects {
		if effect != EffectAmplitudeDamping && effect != EffectPhaseFlip && effect != EffectDepolarizing {
			return nil, fmt.Errorf("%w: '%c'", ErrUnknownNoiseEffect, effect)
		}
	}
	if runs <= 0 {
		return nil, fmt.Errorf("%w, provided value: %d", ErrInvalidRunCount, runs)
	}
	if ampDamping < 0 {
		// The probability of amplitude damping (t1) is commonly double the
		// probability of a phase flip.
		ampDamping = p * 2
	}
	if p < 0 || ampDamping*multiFactor > 1 {
		return nil, fmt.Errorf(
			"%w: single qubit error probability: %g multi qubit error probability: %g, "+
				"single qubit amplitude damping probability: %g multi qubit amplitude damping probability: %g",
			ErrFaultyProbabilities, p, p*multiFactor, ampDamping, ampDamping*multiFactor)
	}

	cfg := &NoiseConfig{
		Effects:                          effects,
		NoiseProbability:                 p,
		NoiseProbabilityMulti:            p * multiFactor,
		AmplitudeDampingProbability:      ampDamping,
		AmplitudeDampingProbabilityMulti: ampDamping * multiFactor,
		StochasticRuns:                   runs,
	}

	cfg.SqrtAmplitudeDampingProbability = complex(math.Sqrt(ampDamping), 0)
	cfg.OneMinusSqrtAmplitudeDampingProbability = complex(math.Sqrt(1-ampDamping), 0)
	cfg.SqrtAmplitudeDampingProbabilityMulti = complex(math.Sqrt(ampDamping*multiFactor), 0)
	cfg.OneMinusSqrtAmplitudeDampingProbabilityMulti = complex(math.Sqrt(1-ampDamping*multiFactor), 0)

	cfg.AmpDampingTrue = GateMatrix{0, cfg.SqrtAmplitudeDampingProbability, 0, 0}
	cfg.AmpDampingTrueMulti = GateMatrix{0, cfg.SqrtAmplitudeDampingProbabilityMulti, 0, 0}
	cfg.AmpDampingFalse = GateMatrix{1, 0, 0, cfg.OneMinusSqrtAmplitudeDampingProbability}
	cfg.AmpDampingFalseMulti = GateMatrix{1, 0, 0, cfg.OneMinusSqrtAmplitudeDampingProbabilityMulti}

	return cfg, nil
}

// HasEffect reports whether the given effect code is enabled.
func (n *NoiseConfig) HasEffect(effect rune) bool {
	return strings.ContainsRune(n.Effects, effect)
}
