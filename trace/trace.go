// Package trace provides loading of resolved-branch traces and simulation
// configuration files.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rvsimlab/rvsim/timing/bpu"
)

// Record is one resolved branch from a trace.
type Record struct {
	// PC is the address of the branch instruction.
	PC uint64
	// Target is the actual target address of the branch.
	Target uint64
	// Kind is the branch kind.
	Kind bpu.BranchKind
	// Taken is the resolved direction.
	Taken bool
	// Priv is the privilege level the branch executed at.
	Priv bpu.Priv
}

// Trace is a loaded branch trace.
type Trace struct {
	// Records are the resolved branches in program order.
	Records []Record
}

// jsonRecord is the on-disk form of a Record (one JSON object per line).
type jsonRecord struct {
	PC     uint64 `json:"pc"`
	Target uint64 `json:"target"`
	Kind   string `json:"kind"`
	Taken  bool   `json:"taken"`
	Priv   int    `json:"priv"`
}

// parseKind maps the on-disk kind tag to a BranchKind.
func parseKind(kind string) (bpu.BranchKind, error) {
	switch kind {
	case "uncond":
		return bpu.BranchUnconditional, nil
	case "cond":
		return bpu.BranchConditional, nil
	default:
		return 0, fmt.Errorf("unknown branch kind %q", kind)
	}
}

// Load reads a JSON-lines branch trace. Blank lines and lines starting with
// '#' are skipped.
func Load(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer func() { _ = f.Close() }()

	tr := &Trace{}
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var raw jsonRecord
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse trace line %d: %w", lineNum, err)
		}

		kind, err := parseKind(raw.Kind)
		if err != nil {
			return nil, fmt.Errorf("trace line %d: %w", lineNum, err)
		}
		if raw.Priv < 0 || raw.Priv >= bpu.NumPrivLevels {
			return nil, fmt.Errorf("trace line %d: privilege level %d out of range [0,%d)",
				lineNum, raw.Priv, bpu.NumPrivLevels)
		}

		tr.Records = append(tr.Records, Record{
			PC:     raw.PC,
			Target: raw.Target,
			Kind:   kind,
			Taken:  raw.Taken,
			Priv:   bpu.Priv(raw.Priv),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}

	return tr, nil
}
