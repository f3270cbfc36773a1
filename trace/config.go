package trace

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rvsimlab/rvsim/timing/bpu"
)

// SimConfig is the on-disk simulation configuration: predictor structure
// sizes, mode, and the misprediction penalty.
type SimConfig struct {
	// PredictorMode is "bimodal" or "adaptive". Default: "adaptive".
	PredictorMode string `json:"predictor_mode"`

	// BTBSets is the number of BTB sets. Default: 64.
	BTBSets int `json:"btb_sets"`

	// BTBWays is the BTB associativity. Default: 4.
	BTBWays int `json:"btb_ways"`

	// BHTSize is the adaptive predictor's history table size.
	// Default: 1024.
	BHTSize uint32 `json:"bht_size"`

	// PHTSize is the adaptive predictor's pattern table size.
	// Default: 1024.
	PHTSize uint32 `json:"pht_size"`

	// HistoryBits is the branch history register length. Default: 10.
	HistoryBits uint32 `json:"history_bits"`

	// HistoryMix is "xor", "and", or "none". Default: "xor".
	HistoryMix string `json:"history_mix"`

	// MispredictPenalty is the cycles lost per misprediction.
	// Default: 12.
	MispredictPenalty uint64 `json:"mispredict_penalty"`
}

// DefaultSimConfig returns a SimConfig with default values.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		PredictorMode:     "adaptive",
		BTBSets:           64,
		BTBWays:           4,
		BHTSize:           1024,
		PHTSize:           1024,
		HistoryBits:       10,
		HistoryMix:        "xor",
		MispredictPenalty: 12,
	}
}

// LoadSimConfig loads a SimConfig from a JSON file. Fields absent from the
// file keep their default values.
func LoadSimConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sim config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse sim config: %w", err)
	}

	return config, nil
}

// SaveSimConfig writes the SimConfig to a JSON file.
func (c *SimConfig) SaveSimConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize sim config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sim config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for usable values.
func (c *SimConfig) Validate() error {
	if _, err := c.mode(); err != nil {
		return err
	}
	if _, err := c.mix(); err != nil {
		return err
	}
	if c.MispredictPenalty == 0 {
		return fmt.Errorf("mispredict_penalty must be > 0")
	}

	unitConfig, err := c.BPUConfig()
	if err != nil {
		return err
	}
	return unitConfig.Validate()
}

func (c *SimConfig) mode() (bpu.PredictorMode, error) {
	switch c.PredictorMode {
	case "bimodal":
		return bpu.ModeBimodal, nil
	case "adaptive":
		return bpu.ModeAdaptive, nil
	default:
		return 0, fmt.Errorf("unknown predictor mode %q", c.PredictorMode)
	}
}

func (c *SimConfig) mix() (bpu.HistoryMix, error) {
	switch c.HistoryMix {
	case "xor":
		return bpu.MixXor, nil
	case "and":
		return bpu.MixAnd, nil
	case "none":
		return bpu.MixNone, nil
	default:
		return 0, fmt.Errorf("unknown history mix %q", c.HistoryMix)
	}
}

// BPUConfig converts the on-disk form to a bpu.Config.
func (c *SimConfig) BPUConfig() (bpu.Config, error) {
	mode, err := c.mode()
	if err != nil {
		return bpu.Config{}, err
	}
	mix, err := c.mix()
	if err != nil {
		return bpu.Config{}, err
	}

	return bpu.Config{
		Mode:        mode,
		BTBSets:     c.BTBSets,
		BTBWays:     c.BTBWays,
		BHTSize:     c.BHTSize,
		PHTSize:     c.PHTSize,
		HistoryBits: c.HistoryBits,
		Mix:         mix,
	}, nil
}
