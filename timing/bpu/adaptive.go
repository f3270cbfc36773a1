package bpu

// AdaptivePredictor is a two-level adaptive direction predictor. The first
// level is a direct-mapped, PC-tagged branch history table (BHT) holding one
// history register per tracked branch. The second level is a shared pattern
// history table (PHT) of 2-bit saturating counters indexed by mixing the
// branch's history with its PC bits.
type AdaptivePredictor struct {
	// BHT: one slot per index, tagged by the owning PC.
	tags    []uint64
	valid   []bool
	history []uint32

	pht []uint8

	bhtSize     uint32
	phtSize     uint32
	historyBits uint32
	mix         HistoryMix
}

// NewAdaptivePredictor creates an adaptive predictor from the relevant
// fields of config.
func NewAdaptivePredictor(config Config) *AdaptivePredictor {
	config = config.withDefaults()

	ap := &AdaptivePredictor{
		tags:        make([]uint64, config.BHTSize),
		valid:       make([]bool, config.BHTSize),
		history:     make([]uint32, config.BHTSize),
		pht:         make([]uint8, config.PHTSize),
		bhtSize:     config.BHTSize,
		phtSize:     config.PHTSize,
		historyBits: config.HistoryBits,
		mix:         config.Mix,
	}
	ap.Flush()

	return ap
}

// bhtIndex computes the BHT slot for a given PC.
func (ap *AdaptivePredictor) bhtIndex(pc uint64) uint32 {
	// Use lower bits of PC (excluding alignment bits)
	return uint32((pc >> 2) & uint64(ap.bhtSize-1))
}

// phtIndex mixes the history register with PC bits to index the PHT.
func (ap *AdaptivePredictor) phtIndex(pc uint64, history uint32) uint32 {
	pcBits := uint32(pc >> 2)
	var idx uint32
	switch ap.mix {
	case MixXor:
		idx = history ^ pcBits
	case MixAnd:
		idx = history & pcBits
	case MixNone:
		idx = history
	}
	return idx & (ap.phtSize - 1)
}

// Probe reports whether pc currently owns its BHT slot.
func (ap *AdaptivePredictor) Probe(pc uint64) bool {
	idx := ap.bhtIndex(pc)
	return ap.valid[idx] && ap.tags[idx] == pc
}

// Add claims the BHT slot for pc with an empty history register. An earlier
// occupant of the slot is simply displaced; its PHT counters remain and age
// out through normal updates.
func (ap *AdaptivePredictor) Add(pc uint64) {
	idx := ap.bhtIndex(pc)
	ap.tags[idx] = pc
	ap.valid[idx] = true
	ap.history[idx] = 0
}

// Direction returns the PHT verdict for pc under its current history. The
// BTB entry is not consulted; direction state lives entirely in this
// predictor.
func (ap *AdaptivePredictor) Direction(pc uint64, _ *BTBEntry) bool {
	idx := ap.bhtIndex(pc)
	return counterTaken(ap.pht[ap.phtIndex(pc, ap.history[idx])])
}

// Update steps the PHT counter selected by the current history, then shifts
// the outcome into the history register.
func (ap *AdaptivePredictor) Update(pc uint64, taken bool) {
	idx := ap.bhtIndex(pc)

	phtIdx := ap.phtIndex(pc, ap.history[idx])
	ap.pht[phtIdx] = counterStep(ap.pht[phtIdx], taken)

	ap.history[idx] = ap.shiftHistory(ap.history[idx], taken)
}

// shiftHistory shifts an outcome bit into a history register, keeping it
// within historyBits.
func (ap *AdaptivePredictor) shiftHistory(history uint32, taken bool) uint32 {
	history <<= 1
	if taken {
		history |= 1
	}
	return history & ((1 << ap.historyBits) - 1)
}

// Flush resets all histories, tags, and counters to their initial state.
// Counters reset to weakly not-taken.
func (ap *AdaptivePredictor) Flush() {
	for i := range ap.tags {
		ap.tags[i] = 0
		ap.valid[i] = false
		ap.history[i] = 0
	}
	for i := range ap.pht {
		ap.pht[i] = 1
	}
}
