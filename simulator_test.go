package stochsim

import (
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/montanaflynn/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func bellCircuit() *Circuit {
	return NewCircuit("bell", 2).H(0).CX(0, 1)
}

func TestStochasticSimulator(t *testing.T) {
	Convey("Given a Bell preparation circuit", t, func() {
		Convey("When simulating without noise", func() {
			sim, err := New(bellCircuit(),
				WithNoiseProbability(0),
				WithAmplitudeDampingProbability(0),
				WithStochasticRuns(50),
				WithSeed(1),
			)
			So(err, ShouldBeNil)

			result, err := sim.StochSimulate()
			So(err, ShouldBeNil)

			// Every trajectory reaches the same state, so the estimates
			// carry no noise-event variance at all.
			So(result["00"], ShouldAlmostEqual, 0.5)
			So(result["11"], ShouldAlmostEqual, 0.5)
			So(result["01"], ShouldEqual, 0)
			So(result["10"], ShouldEqual, 0)
		})

		Convey("When requesting shot counts", func() {
			sim, err := New(bellCircuit(),
				WithStochasticRuns(300),
				WithSeed(2),
			)
			So(err, ShouldBeNil)

			counts, err := sim.Simulate(1000)
			So(err, ShouldBeNil)

			total := uint64(0)
			for _, count := range counts {
				total += count
			}
			So(total, ShouldEqual, uint64(1000))
		})

		Convey("When running the same seed under different worker counts", func() {
			build := func(opts ...Option) map[string]float64 {
				base := []Option{
					WithNoiseProbability(0.05),
					WithStochasticRuns(200),
					WithSeed(99),
				}
				sim, err := New(bellCircuit(), append(base, opts...)...)
				So(err, ShouldBeNil)
				result, err := sim.StochSimulate()
				So(err, ShouldBeNil)
				return result
			}

			single := build(WithSchedulingPolicy(FixedWorkers(1)))
			parallel := build(WithSchedulingPolicy(FixedWorkers(8)))
			sequential := build(WithSequentialNoise())

			So(reflect.DeepEqual(single, parallel), ShouldBeTrue)
			So(reflect.DeepEqual(single, sequential), ShouldBeTrue)
		})

		Convey("When simulating the documented noisy scenario", func() {
			sim, err := New(bellCircuit(),
				WithNoiseEffects("APD"),
				WithNoiseProbability(0.1),
				WithStochasticRuns(2000),
				WithSeed(7),
			)
			So(err, ShouldBeNil)

			result, err := sim.StochSimulate()
			So(err, ShouldBeNil)

			// Mass stays concentrated on the Bell outcomes; leakage into the
			// anti-correlated strings is bounded by a multiple of p.
			So(result["00"]+result["11"], ShouldBeGreaterThan, 0.6)
			So(result["01"]+result["10"], ShouldBeLessThan, 0.3)
		})

		Convey("When increasing the number of stochastic runs", func() {
			estimate := func(runs int, seed uint64) float64 {
				sim, err := New(bellCircuit(),
					WithNoiseProbability(0),
					WithAmplitudeDampingProbability(0),
					WithStochasticRuns(runs),
					WithSeed(seed),
				)
				So(err, ShouldBeNil)
				counts, err := sim.Simulate(uint64(runs))
				So(err, ShouldBeNil)
				return float64(counts["00"]) / float64(runs)
			}

			standardError := func(runs int) float64 {
				estimates := make([]float64, 0, 8)
				for trial := uint64(0); trial < 8; trial++ {
					estimates = append(estimates, estimate(runs, 1000+trial))
				}
				deviation, err := stats.StandardDeviation(estimates)
				So(err, ShouldBeNil)
				return deviation
			}

			So(standardError(100), ShouldBeGreaterThan, standardError(10000))
		})

		Convey("When compaction fires on every operation", func() {
			sim, err := New(bellCircuit(),
				WithNoiseProbability(0),
				WithAmplitudeDampingProbability(0),
				WithStochasticRuns(10),
				WithApproximation(1, 0.4),
				WithSeed(3),
				WithSchedulingPolicy(FixedWorkers(1)),
			)
			So(err, ShouldBeNil)

			_, err = sim.Simulate(10)
			So(err, ShouldBeNil)

			// The superposition after the Hadamard is compacted once per
			// run; the resulting basis state has nothing left to drop.
			So(sim.AdditionalStatistics()["approximation_runs"], ShouldEqual, "10")
		})

		Convey("When reading accessors and statistics", func() {
			sim, err := New(bellCircuit(),
				WithNoiseEffects("AP"),
				WithStochasticRuns(20),
				WithSeed(4),
				WithSchedulingPolicy(FixedWorkers(2)),
			)
			So(err, ShouldBeNil)
			So(sim.Name(), ShouldEqual, "stoch_AP_bell")
			So(sim.NumQubits(), ShouldEqual, 2)
			So(sim.NumOps(), ShouldEqual, 2)

			_, err = sim.Simulate(100)
			So(err, ShouldBeNil)

			statistics := sim.AdditionalStatistics()
			for _, key := range []string{
				"step_fidelity", "approximation_runs", "perfect_run_time",
				"stoch_wall_time", "mean_stoch_run_time", "parallel_instances",
			} {
				So(statistics, ShouldContainKey, key)
			}
			So(statistics["parallel_instances"], ShouldEqual, "2")
		})

		Convey("When recording the whole-state sentinel", func() {
			sim, err := New(bellCircuit(),
				WithNoiseProbability(0),
				WithAmplitudeDampingProbability(0),
				WithStochasticRuns(5),
				WithRecordedProperties("-1,0,3"),
				WithSeed(5),
			)
			So(err, ShouldBeNil)

			result, err := sim.StochSimulate()
			So(err, ShouldBeNil)
			So(result["state_size"], ShouldEqual, 2)
			So(result["00"], ShouldAlmostEqual, 0.5)
			So(result["11"], ShouldAlmostEqual, 0.5)
		})
	})
}

func TestConfigurationFailures(t *testing.T) {
	Convey("Given invalid configurations", t, func() {
		Convey("An empty circuit is rejected", func() {
			_, err := New(NewCircuit("empty", 2))
			So(err, ShouldWrap, ErrEmptyCircuit)

			_, err = New(nil)
			So(err, ShouldWrap, ErrEmptyCircuit)
		})

		Convey("An unknown noise effect is rejected", func() {
			_, err := New(bellCircuit(), WithNoiseEffects("APX"))
			So(err, ShouldWrap, ErrUnknownNoiseEffect)
		})

		Convey("A non-positive run count is rejected", func() {
			_, err := New(bellCircuit(), WithStochasticRuns(0))
			So(err, ShouldWrap, ErrInvalidRunCount)
		})

		Convey("An out-of-range recorded property fails before dispatch", func() {
			sim, err := New(bellCircuit(),
				WithStochasticRuns(10),
				WithRecordedProperties("5"),
				WithSeed(6),
			)
			So(err, ShouldBeNil)

			_, err = sim.StochSimulate()
			So(err, ShouldWrap, ErrPropertyOutOfRange)
			So(err.Error(), ShouldContainSubstring, "5")
		})
	})
}

// faultyEngine fails gate application after a configurable number of engine
// instances have been built, letting tests reach the parallel phase first.
type faultyEngine struct {
	*VectorEngine
	fail bool
}

func (f *faultyEngine) ApplyGate(s State, g Gate) (State, error) {
	if f.fail {
		return s, ErrUnknownGate
	}
	return f.VectorEngine.ApplyGate(s, g)
}

func TestWorkerFailure(t *testing.T) {
	Convey("Given an engine that fails inside the parallel phase", t, func() {
		var instances atomic.Int64
		factory := func() Engine {
			// The first instance serves the perfect run and stays healthy.
			n := instances.Add(1)
			return &faultyEngine{VectorEngine: NewVectorEngine(), fail: n > 1}
		}

		sim, err := New(bellCircuit(),
			WithStochasticRuns(10),
			WithEngineFactory(factory),
			WithSeed(8),
		)
		So(err, ShouldBeNil)

		Convey("The whole simulate call fails, no partial result", func() {
			result, err := sim.Simulate(100)
			So(err, ShouldNotBeNil)
			So(result, ShouldBeNil)
		})
	})
}
