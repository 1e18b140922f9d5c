package stochsim

import (
	"fmt"
	"strconv"
	"time"
)

/*
StochasticSimulator estimates the output distribution of a circuit executed
on noisy hardware by Monte-Carlo trajectory simulation: many independent
stochastic runs, each probabilistically injecting decoherence events at gate
boundaries, aggregated into an approximate measurement distribution and
per-property estimates.

All configuration is validated at construction; after New returns, the
simulator is immutable except for the statistics of the most recent call.
*/
type StochasticSimulator struct {
	circuit    *Circuit
	noise      *NoiseConfig
	properties []RecordedProperty

	stepNumber   uint
	stepFidelity float64

	masterSeed uint64
	sequential bool
	policy     SchedulingPolicy

	engineFactory EngineFactory

	stats AggregateStatistics
}

// Option configures a StochasticSimulator during construction.
type Option func(*simulatorConfig)

type simulatorConfig struct {
	effects      string
	noiseProb    float64
	ampDamping   float64
	multiFactor  float64
	runs         int
	stepNumber   uint
	stepFidelity float64
	recorded     string
	masterSeed   uint64
	seeded       bool
	sequential   bool
	policy       SchedulingPolicy
	factory      EngineFactory
}

// WithNoiseEffects sets the enabled noise-effect descriptor, any combination
// of 'A' (amplitude damping), 'P' (phase flip) and 'D' (depolarizing).
func WithNoiseEffects(effects string) Option {
	return func(c *simulatorConfig) { c.effects = effects }
}

// WithNoiseProbability sets the single-qubit gate error probability.
func WithNoiseProbability(p float64) Option {
	return func(c *simulatorConfig) { c.noiseProb = p }
}

// WithAmplitudeDampingProbability overrides the amplitude-damping
// probability, which otherwise defaults to double the gate error
// probability.
func WithAmplitudeDampingProbability(p float64) Option {
	return func(c *simulatorConfig) { c.ampDamping = p }
}

// WithMultiQubitGateFactor sets the multi-qubit error scale factor
// (default 2).
func WithMultiQubitGateFactor(factor float64) Option {
	return func(c *simulatorConfig) { c.multiFactor = factor }
}

// WithStochasticRuns sets the number of trajectories per simulate call.
func WithStochasticRuns(runs int) Option {
	return func(c *simulatorConfig) { c.runs = runs }
}

// WithApproximation sets the compaction cadence: every stepNumber operations
// the state is compacted toward stepFidelity. stepNumber 0 disables
// compaction.
func WithApproximation(stepNumber uint, stepFidelity float64) Option {
	return func(c *simulatorConfig) {
		c.stepNumber = stepNumber
		c.stepFidelity = stepFidelity
	}
}

// WithRecordedProperties sets the recorded-properties descriptor. Without it
// every basis state of the register is recorded.
func WithRecordedProperties(descriptor string) Option {
	return func(c *simulatorConfig) { c.recorded = descriptor }
}

// WithSeed fixes the master seed. Two simulators with the same seed, run
// count and configuration produce identical aggregates regardless of worker
// count.
func WithSeed(seed uint64) Option {
	return func(c *simulatorConfig) {
		c.masterSeed = seed
		c.seeded = true
	}
}

// WithSequentialNoise forces all runs onto a single worker. Debug mode, used
// to validate results against the parallel path.
func WithSequentialNoise() Option {
	return func(c *simulatorConfig) { c.sequential = true }
}

// WithSchedulingPolicy injects the worker-count policy.
func WithSchedulingPolicy(policy SchedulingPolicy) Option {
	return func(c *simulatorConfig) { c.policy = policy }
}

// WithEngineFactory injects the engine constructor invoked once per worker.
func WithEngineFactory(factory EngineFactory) Option {
	return func(c *simulatorConfig) { c.factory = factory }
}

/*
New builds a simulator over the circuit. Configuration errors (unknown noise
effect, non-positive run count, faulty probability combination, unparsable
recorded-properties descriptor, empty circuit) surface here; out-of-range
recorded properties surface from the perfect-run pass of the first simulate
call, still before any worker is dispatched.
*/
func New(circuit *Circuit, opts ...Option) (*StochasticSimulator, error) {
	if circuit == nil || circuit.Qubits <= 0 || len(circuit.Gates) == 0 {
		return nil, ErrEmptyCircuit
	}

	cfg := &simulatorConfig{
		effects:      "APD",
		noiseProb:    0.01,
		ampDamping:   -1, // sentinel: default to 2 * noiseProb
		multiFactor:  2,
		runs:         30000,
		stepFidelity: 1.0,
		policy:       reservedCoresPolicy{},
		factory:      func() Engine { return NewVectorEngine() },
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.seeded {
		cfg.masterSeed = uint64(time.Now().UnixNano())
	}

	noise, err := newNoiseConfig(cfg.effects, cfg.noiseProb, cfg.ampDamping, cfg.multiFactor, cfg.runs)
	if err != nil {
		return nil, err
	}

	var properties []RecordedProperty
	if cfg.recorded == "" {
		properties = allBasisProperties(circuit.Qubits, circuit.NumOps())
	} else {
		if properties, err = parseRecordedProperties(cfg.recorded, circuit.Qubits, circuit.NumOps()); err != nil {
			return nil, err
		}
	}

	return &StochasticSimulator{
		circuit:       circuit,
		noise:         noise,
		properties:    properties,
		stepNumber:    cfg.stepNumber,
		stepFidelity:  cfg.stepFidelity,
		masterSeed:    cfg.masterSeed,
		sequential:    cfg.sequential,
		policy:        cfg.policy,
		engineFactory: cfg.factory,
	}, nil
}

// run executes the full pipeline: one perfect pass, then all stochastic runs
// behind the scheduler's barrier. Statistics are rebuilt per call.
func (s *StochasticSimulator) run() ([]trajectoryResult, error) {
	s.stats = AggregateStatistics{}

	perfectTime, err := perfectRun(s.engineFactory(), s.circuit, s.properties)
	if err != nil {
		return nil, err
	}
	s.stats.PerfectRunTime = perfectTime

	slots, workers, wallTime, err := s.dispatch()
	if err != nil {
		return nil, err
	}
	s.stats.ParallelInstances = workers
	s.stats.StochWallTime = wallTime
	mergeTimings(slots, &s.stats)
	return slots, nil
}

/*
Simulate runs the configured trajectories and returns the measurement
distribution rescaled to integer counts summing exactly to shots.
*/
func (s *StochasticSimulator) Simulate(shots uint64) (map[string]uint64, error) {
	slots, err := s.run()
	if err != nil {
		return nil, err
	}
	return rescaleToShots(mergeOutcomes(slots), shots), nil
}

/*
StochSimulate runs the configured trajectories and returns the mean of every
recorded property across runs: probability estimates for basis-state
requests (bitstring keys), engine scalars for sentinel requests. Values are
raw per-trajectory estimates, not resampled shots.
*/
func (s *StochasticSimulator) StochSimulate() (map[string]float64, error) {
	slots, err := s.run()
	if err != nil {
		return nil, err
	}
	return mergeProperties(slots, s.properties), nil
}

// AdditionalStatistics reports the timing and approximation summary of the
// most recent simulate call.
func (s *StochasticSimulator) AdditionalStatistics() map[string]string {
	return map[string]string{
		"step_fidelity":       strconv.FormatFloat(s.stepFidelity, 'f', -1, 64),
		"approximation_runs":  strconv.Itoa(s.stats.ApproximationRuns),
		"perfect_run_time":    strconv.FormatFloat(s.stats.PerfectRunTime.Seconds(), 'f', -1, 64),
		"stoch_wall_time":     strconv.FormatFloat(s.stats.StochWallTime.Seconds(), 'f', -1, 64),
		"mean_stoch_run_time": strconv.FormatFloat(s.stats.MeanStochRunTime.Seconds(), 'f', -1, 64),
		"parallel_instances":  strconv.Itoa(s.stats.ParallelInstances),
	}
}

// NumQubits returns the circuit's qubit count.
func (s *StochasticSimulator) NumQubits() int { return s.circuit.Qubits }

// NumOps returns the circuit's operation count.
func (s *StochasticSimulator) NumOps() int { return s.circuit.NumOps() }

// Name returns the simulator display name, incorporating the enabled
// noise-effect codes and the circuit name.
func (s *StochasticSimulator) Name() string {
	return "stoch_" + s.noise.Effects + "_" + s.circuit.Name
}

// NoiseConfiguration exposes the validated, immutable noise parameters.
func (s *StochasticSimulator) NoiseConfiguration() *NoiseConfig { return s.noise }

// Example demonstrates simulating a noisy Bell preparation.
func Example() {
	bell := NewCircuit("bell", 2).H(0).CX(0, 1)

	sim, err := New(bell,
		WithNoiseEffects("APD"),
		WithNoiseProbability(0.01),
		WithStochasticRuns(1000),
		WithSeed(42),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	counts, err := sim.Simulate(1000)
	if err != nil {
		fmt.Println(err)
		return
	}
	for bitstring, count := range counts {
		fmt.Printf("%s: %d\n", bitstring, count)
	}
}
