package bpu

import "fmt"

// PredictorMode selects which predictor governs conditional-branch direction.
type PredictorMode int

const (
	// ModeBimodal uses the 2-bit saturating counter stored in each BTB
	// entry. No second-level structure is built.
	ModeBimodal PredictorMode = iota
	// ModeAdaptive uses a two-level adaptive predictor for conditional
	// branches. The BTB still supplies targets and branch kinds.
	ModeAdaptive
)

// HistoryMix selects how the adaptive predictor combines the branch history
// register with PC bits to index its pattern history table.
type HistoryMix int

const (
	// MixXor XORs history with PC bits (gshare).
	MixXor HistoryMix = iota
	// MixAnd ANDs history with PC bits.
	MixAnd
	// MixNone uses the history register alone (GAg).
	MixNone
)

// Config holds configuration for the branch prediction unit.
type Config struct {
	// Mode selects bimodal or adaptive conditional-branch prediction.
	Mode PredictorMode
	// BTBSets is the number of sets in the Branch Target Buffer.
	// Must be a power of 2. Default is 64.
	BTBSets int
	// BTBWays is the BTB associativity. Default is 4.
	BTBWays int
	// BHTSize is the number of entries in the adaptive predictor's
	// branch history table. Must be a power of 2. Default is 1024.
	BHTSize uint32
	// PHTSize is the number of counters in the adaptive predictor's
	// pattern history table. Must be a power of 2. Default is 1024.
	PHTSize uint32
	// HistoryBits is the length of the branch history register.
	// Default is 10.
	HistoryBits uint32
	// Mix selects the history/PC index mixing function. Default is MixXor.
	Mix HistoryMix
}

// DefaultConfig returns a default configuration (adaptive gshare over a
// 64x4 BTB).
func DefaultConfig() Config {
	return Config{
		Mode:        ModeAdaptive,
		BTBSets:     64,
		BTBWays:     4,
		BHTSize:     1024,
		PHTSize:     1024,
		HistoryBits: 10,
		Mix:         MixXor,
	}
}

// Validate checks that all structure sizes are usable.
func (c Config) Validate() error {
	if c.BTBSets <= 0 || c.BTBSets&(c.BTBSets-1) != 0 {
		return fmt.Errorf("btb sets must be a power of 2, got %d", c.BTBSets)
	}
	if c.BTBWays <= 0 {
		return fmt.Errorf("btb ways must be > 0, got %d", c.BTBWays)
	}
	if c.Mode == ModeBimodal {
		return nil
	}
	if c.BHTSize == 0 || c.BHTSize&(c.BHTSize-1) != 0 {
		return fmt.Errorf("bht size must be a power of 2, got %d", c.BHTSize)
	}
	if c.PHTSize == 0 || c.PHTSize&(c.PHTSize-1) != 0 {
		return fmt.Errorf("pht size must be a power of 2, got %d", c.PHTSize)
	}
	if c.HistoryBits == 0 || c.HistoryBits > 32 {
		return fmt.Errorf("history bits must be in [1,32], got %d", c.HistoryBits)
	}
	return nil
}

// withDefaults fills zero-valued sizing fields, mirroring how callers may
// leave parts of the config unset.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BTBSets == 0 {
		c.BTBSets = d.BTBSets
	}
	if c.BTBWays == 0 {
		c.BTBWays = d.BTBWays
	}
	if c.BHTSize == 0 {
		c.BHTSize = d.BHTSize
	}
	if c.PHTSize == 0 {
		c.PHTSize = d.PHTSize
	}
	if c.HistoryBits == 0 {
		c.HistoryBits = d.HistoryBits
	}
	return c
}
