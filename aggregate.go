package stochsim

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

/*
AggregateStatistics is the timing and approximation summary of one simulate
call. A fresh value is produced per call and finalized once all workers have
joined.
*/
type AggregateStatistics struct {
	ApproximationRuns int
	PerfectRunTime    time.Duration
	StochWallTime     time.Duration
	MeanStochRunTime  time.Duration
	ParallelInstances int
}

// mergeOutcomes sums the per-run classical outcome maps into one mapping
// from bitstring to total occurrence count.
func mergeOutcomes(slots []trajectoryResult) map[string]int {
	merged := make(map[string]int)
	for _, slot := range slots {
		for bitstring, count := range slot.outcomes {
			merged[bitstring] += count
		}
	}
	return merged
}

// mergeProperties averages the per-run property samples, each run weighted
// 1/stochasticRuns, keyed by the request labels.
func mergeProperties(slots []trajectoryResult, props []RecordedProperty) map[string]float64 {
	merged := make(map[string]float64, len(props))
	samples := make([]float64, len(slots))
	for i, prop := range props {
		for run, slot := range slots {
			samples[run] = slot.properties[i]
		}
		merged[prop.Label] = stat.Mean(samples, nil)
	}
	return merged
}

// mergeTimings folds the per-run slots into the call's statistics.
func mergeTimings(slots []trajectoryResult, agg *AggregateStatistics) {
	if len(slots) == 0 {
		return
	}
	durations := make([]float64, len(slots))
	for i, slot := range slots {
		durations[i] = slot.duration.Seconds()
		agg.ApproximationRuns += slot.approximations
	}
	mean, err := stats.Mean(durations)
	if err != nil {
		return
	}
	agg.MeanStochRunTime = time.Duration(mean * float64(time.Second))
}

/*
rescaleToShots turns the aggregated classical counts into integer counts
summing exactly to shots, by largest-remainder apportionment of the observed
frequencies. Deterministic: ties break on the bitstring.
*/
func rescaleToShots(merged map[string]int, shots uint64) map[string]uint64 {
	total := 0
	for _, count := range merged {
		total += count
	}
	result := make(map[string]uint64, len(merged))
	if total == 0 || shots == 0 {
		return result
	}

	type remainder struct {
		bitstring string
		fraction  float64
	}
	assigned := uint64(0)
	remainders := make([]remainder, 0, len(merged))
	for bitstring, count := range merged {
		exact := float64(shots) * float64(count) / float64(total)
		whole := uint64(exact)
		result[bitstring] = whole
		assigned += whole
		remainders = append(remainders, remainder{bitstring, exact - float64(whole)})
	}

	sort.Slice(remainders, func(i, j int) bool {
		if remainders[i].fraction != remainders[j].fraction {
			return remainders[i].fraction > remainders[j].fraction
		}
		return remainders[i].bitstring < remainders[j].bitstring
	})
	for i := 0; assigned < shots; i++ {
		result[remainders[i%len(remainders)].bitstring]++
		assigned++
	}

	for bitstring, count := range result {
		if count == 0 {
			delete(result, bitstring)
		}
	}
	return result
}
