// Package bpu models the branch prediction unit of a cycle-level CPU
// simulator: a set-associative Branch Target Buffer, an optional two-level
// adaptive direction predictor, and the coordinator that adjudicates
// between them for every fetched and resolved branch.
package bpu

import "fmt"

// NoPrediction is returned by TargetFor when the branch is predicted
// not-taken. The value 0 is reserved and never a legitimate branch target.
const NoPrediction uint64 = 0

// ProbeResult is the outcome of probing the unit for one PC. It is consumed
// by TargetFor, Add, and Update within the same fetch-resolve window and
// must not be retained beyond it.
type ProbeResult struct {
	// BTBHit reports whether the BTB holds an entry for the PC.
	BTBHit bool
	// SecondLevelHit reports whether the second-level predictor tracks
	// the PC. It is vacuously true in bimodal mode and whenever the BTB
	// hit on a non-conditional branch.
	SecondLevelHit bool
	// Hit is BTBHit && SecondLevelHit.
	Hit bool
	// Entry is a borrowed pointer to the hit BTB entry, nil on a BTB
	// miss. It is invalidated by the next Add or Flush.
	Entry *BTBEntry
}

// Unit is the branch prediction unit. It owns one BTB and one second-level
// predictor and holds a non-owning reference to the simulator's per-privilege
// statistics array. All operations are single-threaded by contract.
type Unit struct {
	config Config
	btb    *BTB
	second SecondLevelPredictor
	stats  *[NumPrivLevels]Stats
}

// New creates a unit from config, binding the caller-owned statistics
// array. The BTB is always built; the adaptive predictor only in
// ModeAdaptive, otherwise the bimodal fallback is installed.
func New(config Config, stats *[NumPrivLevels]Stats) *Unit {
	config = config.withDefaults()

	u := &Unit{
		config: config,
		btb:    newBTB(config.BTBSets, config.BTBWays),
		stats:  stats,
	}

	if config.Mode == ModeBimodal {
		u.second = bimodalFallback{}
	} else {
		u.second = NewAdaptivePredictor(config)
	}

	return u
}

// Config returns the unit's configuration.
func (u *Unit) Config() Config {
	return u.config
}

// Probe looks up pc in the BTB and, when relevant, the second-level
// predictor. Its only side effects are statistics increments: Probes on
// every call, Hits on a BTB hit. The second level is consulted only when
// the BTB missed or the hit entry is a conditional branch.
func (u *Unit) Probe(pc uint64, priv Priv) ProbeResult {
	result := ProbeResult{SecondLevelHit: true}

	result.Entry, result.BTBHit = u.btb.Probe(pc)
	u.stats[priv].Probes++
	if result.BTBHit {
		u.stats[priv].Hits++
	}

	if !result.BTBHit || result.Entry.Kind == BranchConditional {
		result.SecondLevelHit = u.second.Probe(pc)
	}

	result.Hit = result.BTBHit && result.SecondLevelHit
	return result
}

// TargetFor resolves the prediction to act on for a hit entry. Unconditional
// branches always yield the stored target. Conditional branches yield the
// target when the governing direction predictor says taken, NoPrediction
// otherwise. Any other branch kind is a caller bug.
func (u *Unit) TargetFor(pc uint64, entry *BTBEntry) uint64 {
	switch entry.Kind {
	case BranchUnconditional:
		// Unconditional branches are taken by construction.
		return entry.Target

	case BranchConditional:
		if u.second.Direction(pc, entry) {
			return entry.Target
		}
		// BTB hit, but prediction is not-taken.
		return NoPrediction

	default:
		panic(fmt.Sprintf("bpu: invalid branch kind %d for pc 0x%x", entry.Kind, pc))
	}
}

// Add allocates predictor state for a branch whose identity became known
// after the given probe missed. The BTB entry is allocated only on a prior
// BTB miss; second-level tracking only for conditional branches on a prior
// second-level miss. Unconditional branches never touch the second level.
func (u *Unit) Add(pc uint64, kind BranchKind, result ProbeResult, priv Priv) {
	if !result.BTBHit {
		u.btb.Add(pc, kind)
		u.stats[priv].Inserts++
	}

	if kind == BranchConditional && !result.SecondLevelHit {
		u.second.Add(pc)
	}
}

// Update records a branch's resolved outcome. The BTB entry is refreshed
// only if the prior probe hit (a missing entry is Add's responsibility and
// gets trained on a later resolution); the second level only for
// conditional branches whose tracking state already existed.
func (u *Unit) Update(pc uint64, target uint64, taken bool, kind BranchKind, result ProbeResult, priv Priv) {
	if result.BTBHit {
		u.btb.Update(result.Entry, target, taken, kind)
		u.stats[priv].Updates++
	}

	if kind == BranchConditional && result.SecondLevelHit {
		u.second.Update(pc, taken)
	}
}

// Flush resets the BTB and the second-level predictor to their empty
// initial state. Statistics are untouched. Flushing an empty unit is a
// no-op observationally.
func (u *Unit) Flush() {
	u.btb.Flush()
	u.second.Flush()
}
