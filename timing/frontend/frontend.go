// Package frontend models the fetch-stage consumption of the branch
// prediction unit: every branch is probed at fetch, its predicted target
// resolved, and the unit trained with the ground-truth outcome, with
// misprediction penalties accounted in cycles.
package frontend

import (
	"github.com/rvsimlab/rvsim/timing/bpu"
	"github.com/rvsimlab/rvsim/trace"
)

// Config holds frontend timing parameters.
type Config struct {
	// BranchLatency is the base cost of one branch in cycles.
	// Default: 1 cycle.
	BranchLatency uint64
	// MispredictPenalty is the additional cycles lost on a branch
	// misprediction. Default: 12 cycles.
	MispredictPenalty uint64
}

// DefaultConfig returns the default frontend timing parameters.
func DefaultConfig() Config {
	return Config{
		BranchLatency:     1,
		MispredictPenalty: 12,
	}
}

// Stats holds frontend performance statistics.
type Stats struct {
	// Cycles is the total number of cycles accounted.
	Cycles uint64
	// Branches is the number of branches replayed.
	Branches uint64
	// Correct is the number of correct predictions.
	Correct uint64
	// Mispredictions is the number of incorrect predictions.
	Mispredictions uint64
	// PenaltyCycles is the number of cycles lost to mispredictions.
	PenaltyCycles uint64
}

// Accuracy returns the prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Branches) * 100
}

// MispredictionRate returns the misprediction rate as a percentage.
func (s Stats) MispredictionRate() float64 {
	if s.Branches == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Branches) * 100
}

// FrontEnd drives a branch prediction unit with resolved branch outcomes.
// It owns the per-privilege statistics array the unit increments into.
type FrontEnd struct {
	unit   *bpu.Unit
	config Config

	stats     Stats
	privStats [bpu.NumPrivLevels]bpu.Stats
}

// New creates a frontend around a fresh branch prediction unit.
func New(unitConfig bpu.Config, config Config) *FrontEnd {
	fe := &FrontEnd{config: config}
	fe.unit = bpu.New(unitConfig, &fe.privStats)
	return fe
}

// Unit returns the underlying branch prediction unit.
func (fe *FrontEnd) Unit() *bpu.Unit {
	return fe.unit
}

// OnBranch replays one resolved branch: probe, predict, compare against the
// ground truth, then train. A prediction is correct when the predicted
// direction matches and, for taken branches, the predicted target matches
// the actual one.
func (fe *FrontEnd) OnBranch(pc, target uint64, kind bpu.BranchKind, taken bool, priv bpu.Priv) {
	result := fe.unit.Probe(pc, priv)

	predicted := bpu.NoPrediction
	if result.Hit && result.Entry != nil {
		predicted = fe.unit.TargetFor(pc, result.Entry)
	}
	predictedTaken := predicted != bpu.NoPrediction

	fe.stats.Branches++
	fe.stats.Cycles += fe.config.BranchLatency

	correct := predictedTaken == taken
	if taken && predicted != target {
		correct = false
	}
	if correct {
		fe.stats.Correct++
	} else {
		fe.stats.Mispredictions++
		fe.stats.PenaltyCycles += fe.config.MispredictPenalty
		fe.stats.Cycles += fe.config.MispredictPenalty
	}

	fe.unit.Add(pc, kind, result, priv)
	fe.unit.Update(pc, target, taken, kind, result, priv)
}

// Run replays a whole trace and returns the resulting statistics.
func (fe *FrontEnd) Run(tr *trace.Trace) Stats {
	for _, r := range tr.Records {
		fe.OnBranch(r.PC, r.Target, r.Kind, r.Taken, r.Priv)
	}
	return fe.stats
}

// Stats returns the frontend statistics.
func (fe *FrontEnd) Stats() Stats {
	return fe.stats
}

// PrivStats returns the per-privilege BTB statistics array.
func (fe *FrontEnd) PrivStats() *[bpu.NumPrivLevels]bpu.Stats {
	return &fe.privStats
}

// Reset flushes the prediction unit and clears all statistics. The unit
// never clears statistics itself; the frontend owns them and may.
func (fe *FrontEnd) Reset() {
	fe.unit.Flush()
	fe.stats = Stats{}
	fe.privStats = [bpu.NumPrivLevels]bpu.Stats{}
}
