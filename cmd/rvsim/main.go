// Package main provides the entry point for rvsim.
// rvsim replays a resolved-branch trace through a cycle-level branch
// prediction unit and reports prediction accuracy.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/rvsimlab/rvsim/timing/bpu"
	"github.com/rvsimlab/rvsim/timing/frontend"
	"github.com/rvsimlab/rvsim/trace"
)

var (
	configPath  = flag.String("config", "", "Path to simulation configuration JSON file")
	mode        = flag.String("mode", "", "Override predictor mode (bimodal|adaptive)")
	btbSets     = flag.Int("btb-sets", 0, "Override number of BTB sets (power of 2)")
	btbWays     = flag.Int("btb-ways", 0, "Override BTB associativity")
	historyBits = flag.Uint("history-bits", 0, "Override branch history register length")
	penalty     = flag.Uint64("penalty", 0, "Override misprediction penalty in cycles")
	verbose     = flag.Bool("v", false, "Verbose output (per-privilege BTB statistics)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvsim [options] <trace.jsonl>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	tracePath := flag.Arg(0)

	config, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	tr, err := trace.Load(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading trace: %v\n", err)
		os.Exit(1)
	}

	unitConfig, err := config.BPUConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fe := frontend.New(unitConfig, frontend.Config{
		BranchLatency:     1,
		MispredictPenalty: config.MispredictPenalty,
	})

	stats := fe.Run(tr)

	// Ensure the report is emitted even if an exit handler terminates the
	// process first.
	atexit.Register(func() { report(tracePath, stats, fe) })
	atexit.Exit(0)
}

// loadConfig assembles the simulation config from the config file and flag
// overrides.
func loadConfig() (*trace.SimConfig, error) {
	var config *trace.SimConfig
	if *configPath != "" {
		var err error
		config, err = trace.LoadSimConfig(*configPath)
		if err != nil {
			return nil, err
		}
	} else {
		config = trace.DefaultSimConfig()
	}

	if *mode != "" {
		config.PredictorMode = *mode
	}
	if *btbSets != 0 {
		config.BTBSets = *btbSets
	}
	if *btbWays != 0 {
		config.BTBWays = *btbWays
	}
	if *historyBits != 0 {
		config.HistoryBits = uint32(*historyBits)
	}
	if *penalty != 0 {
		config.MispredictPenalty = *penalty
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// report prints the simulation summary.
func report(tracePath string, stats frontend.Stats, fe *frontend.FrontEnd) {
	fmt.Printf("Trace: %s\n", tracePath)
	fmt.Printf("Branches: %d\n", stats.Branches)
	fmt.Printf("Cycles: %d\n", stats.Cycles)
	fmt.Printf("Correct predictions: %d\n", stats.Correct)
	fmt.Printf("Mispredictions: %d\n", stats.Mispredictions)
	fmt.Printf("Accuracy: %.2f%%\n", stats.Accuracy())
	fmt.Printf("Penalty cycles: %d\n", stats.PenaltyCycles)

	if !*verbose {
		return
	}

	privNames := [bpu.NumPrivLevels]string{"U", "S", "H", "M"}
	for i, s := range fe.PrivStats() {
		if s.Probes == 0 {
			continue
		}
		fmt.Printf("[%s] probes=%d hits=%d inserts=%d updates=%d hit-rate=%.2f%%\n",
			privNames[i], s.Probes, s.Hits, s.Inserts, s.Updates, s.HitRate())
	}
}
