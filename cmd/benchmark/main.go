// Command benchmark runs the oosim trace microbenchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv     Output results in CSV format (default: human-readable)
//	-json    Output results in JSON format
//	-config  Simulator configuration JSON file
//	-width   Pipeline width
//	-sched   Scheduling policy (in-order, out-of-order)
//	-mem     Memory model (fixed, cache, hierarchy)
//	-exceptions  Enable the precise exception model
//
// Example:
//
//	# Compare scheduling policies on a 4-wide core
//	go run ./cmd/benchmark -width 4 -sched in-order -csv > inorder.csv
//	go run ./cmd/benchmark -width 4 -sched out-of-order -csv > ooo.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/oosim/benchmarks"
	"github.com/sarchlab/oosim/timing/core"
	"github.com/sarchlab/oosim/timing/pipeline"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results in JSON format")
	configPath := flag.String("config", "", "Simulator configuration JSON file")
	width := flag.Int("width", 0, "Pipeline width (overrides config)")
	sched := flag.String("sched", "", "Scheduling policy (overrides config)")
	memory := flag.String("mem", "", "Memory model: fixed, cache or hierarchy (overrides config)")
	exceptions := flag.Bool("exceptions", false, "Enable the precise exception model")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	if *configPath != "" {
		c, err := core.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			atexit.Exit(1)
		}
		config.Core = c
	}
	if *width != 0 {
		config.Core.Pipeline.Width = *width
	}
	if *sched != "" {
		policy, err := pipeline.ParseSchedPolicy(*sched)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			atexit.Exit(1)
		}
		config.Core.Pipeline.SchedPolicy = policy
	}
	if *memory != "" {
		config.Core.Memory = *memory
	}
	if *exceptions {
		config.Core.Pipeline.Exceptions = true
	}
	if err := config.Core.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())

	if !*csvOutput && !*jsonOutput {
		fmt.Println("oosim Timing Benchmark Harness")
		fmt.Println("==============================")
		fmt.Printf("Width: %d\n", config.Core.Pipeline.Width)
		fmt.Printf("Sched: %s\n", config.Core.Pipeline.SchedPolicy)
		fmt.Printf("Memory: %s\n", config.Core.Memory)
		fmt.Printf("Exceptions: %v\n", config.Core.Pipeline.Exceptions)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			atexit.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)
	}

	atexit.Exit(0)
}
