package bpu

// SecondLevelPredictor is the direction-prediction capability consulted for
// conditional branches. Two variants exist: the two-level adaptive predictor
// and a fallback that defers to the BTB entry's own counter (bimodal mode).
// The fallback reports a vacuous hit on Probe and no-ops all training, so
// the coordinator carries no presence checks.
type SecondLevelPredictor interface {
	// Probe reports whether tracking state exists for pc. The fallback
	// always reports true.
	Probe(pc uint64) bool
	// Direction returns the predicted taken/not-taken verdict for a
	// conditional branch. entry is the hit BTB entry for pc.
	Direction(pc uint64, entry *BTBEntry) bool
	// Add allocates tracking state for a conditional branch at pc.
	Add(pc uint64)
	// Update feeds the resolved outcome of the branch at pc into the
	// predictor's history and counters.
	Update(pc uint64, taken bool)
	// Flush resets all tracking state to its empty initial values.
	Flush()
}

// bimodalFallback implements SecondLevelPredictor when no adaptive predictor
// is configured. Direction comes from the BTB entry's saturating counter;
// everything else is vacuous.
type bimodalFallback struct{}

func (bimodalFallback) Probe(uint64) bool { return true }

func (bimodalFallback) Direction(_ uint64, entry *BTBEntry) bool {
	return counterTaken(entry.counter)
}

func (bimodalFallback) Add(uint64) {}

func (bimodalFallback) Update(uint64, bool) {}

func (bimodalFallback) Flush() {}
