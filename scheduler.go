package stochsim

import (
	"runtime"
	"time"

	"github.com/theapemachine/errnie"
	"golang.org/x/sync/errgroup"
)

/*
SchedulingPolicy decides how many workers the stochastic phase may use. The
default reserves a few cores for the rest of the process; tests inject
FixedWorkers to pin the pool size. The aggregate result never depends on the
policy, only the wall time does.
*/
type SchedulingPolicy interface {
	Workers() int
}

// reservedCores is how many cores the default policy leaves to the process
// hosting the simulation.
const reservedCores = 4

type reservedCoresPolicy struct{}

func (reservedCoresPolicy) Workers() int {
	if n := runtime.NumCPU() - reservedCores; n > 1 {
		return n
	}
	return 1
}

// FixedWorkers is a SchedulingPolicy that always uses n workers (floored at
// one).
type FixedWorkers int

func (f FixedWorkers) Workers() int {
	if f < 1 {
		return 1
	}
	return int(f)
}

/*
runSeed derives the deterministic seed of one run from the master seed and
the run index via a SplitMix64 step. Every run's draws depend only on this
pair, so the aggregate is reproducible regardless of worker count or
completion order.
*/
func runSeed(masterSeed uint64, run int) int64 {
	z := masterSeed + (uint64(run)+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

/*
dispatch partitions the configured runs across a bounded worker pool, each
run writing into its own pre-sized slot, and blocks until every worker has
finished. It returns the slots, the worker count used and the wall time of
the whole stochastic phase. An engine failure in any run aborts the call.
*/
func (s *StochasticSimulator) dispatch() ([]trajectoryResult, int, time.Duration, error) {
	workers := s.policy.Workers()
	if s.sequential {
		workers = 1
	}
	runs := s.noise.StochasticRuns

	errnie.Info("dispatching %d stochastic runs over %d workers", runs, workers)
	start := time.Now()

	slots := make([]trajectoryResult, runs)
	var group errgroup.Group
	group.SetLimit(workers)
	for i := 0; i < runs; i++ {
		group.Go(func() error {
			eng := s.engineFactory()
			result, err := runTrajectory(
				eng, s.circuit, s.noise, s.properties,
				s.stepNumber, s.stepFidelity, runSeed(s.masterSeed, i))
			if err != nil {
				return err
			}
			slots[i] = result
			return nil
		})
	}

	// Full barrier: no partial or streaming results are observable.
	if err := group.Wait(); err != nil {
		errnie.Info("stochastic phase aborted: %v", err)
		return nil, workers, time.Since(start), err
	}
	return slots, workers, time.Since(start), nil
}
